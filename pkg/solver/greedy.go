package solver

import (
	"context"
	"sort"
	"time"

	"github.com/banci/banci/pkg/logger"
	"github.com/banci/banci/pkg/model"
	"github.com/banci/banci/pkg/timegrid"
)

// DemandKey 残余需求键：时段起点 × 区域
type DemandKey struct {
	StartMinute int        `json:"start_minute"`
	Zone        model.Zone `json:"zone"`
}

// UnmetConstraint 求解结束后仍未满足的需求
type UnmetConstraint struct {
	StartMinute int        `json:"start_minute"`
	Zone        model.Zone `json:"zone"`
	Remaining   int        `json:"remaining"`
}

// Solution 求解结果。残余需求未清零不是失败：未满足的键
// 在 Unmet 中逐一报告。
type Solution struct {
	Selected   []CandidateShift  `json:"selected"`
	Unmet      []UnmetConstraint `json:"unmet"`
	Objective  float64           `json:"objective"`
	Iterations int               `json:"iterations"`
	Duration   time.Duration     `json:"duration"`
}

// Strategy 候选计价策略。默认实现为固定基价加超时惩罚，
// 替换实现可接入精确求解的计价模型。
type Strategy interface {
	// Cost 返回选中候选的成本，必须为正
	Cost(c CandidateShift) float64

	// Name 返回策略名称
	Name() string
}

// BaseCostStrategy 默认计价：既有班次 1、新班次 5，
// 超过 8 小时的部分每 15 分钟加 0.1
type BaseCostStrategy struct{}

// Name 返回策略名称
func (BaseCostStrategy) Name() string { return "base_cost" }

// Cost 计算候选成本
func (BaseCostStrategy) Cost(c CandidateShift) float64 {
	cost := 5.0
	if c.Existing {
		cost = 1.0
	}
	if overtime := c.Shift.DurationMinutes() - 480; overtime > 0 {
		cost += 0.1 * float64(overtime/timegrid.StepMinutes)
	}
	return cost
}

// Solver 贪心候选求解器
type Solver struct {
	strategy Strategy
	log      *logger.EngineLogger
}

// New 创建求解器，strategy 为 nil 时使用默认计价
func New(strategy Strategy) *Solver {
	if strategy == nil {
		strategy = BaseCostStrategy{}
	}
	return &Solver{
		strategy: strategy,
		log:      logger.NewEngineLogger("solver"),
	}
}

// BuildDemand 从覆盖时间轴提取残余需求：每个 时段 × 区域 取
// max(0, 需求 - 在班)
func BuildDemand(timeline []model.CoverageInterval) map[DemandKey]int {
	demand := make(map[DemandKey]int)
	for _, ci := range timeline {
		for _, zone := range model.AllZones() {
			if d := ci.Required(zone) - ci.Operational(zone); d > 0 {
				demand[DemandKey{StartMinute: ci.StartMinute, Zone: zone}] = d
			}
		}
	}
	return demand
}

// Solve 反复选取 收益/成本 最高的候选，直到需求清零或再无
// 正收益候选。收益 = 候选覆盖的各键 min(1, 残余需求) 之和；
// 同分时优先既有班次，再取时长较短者，最后保持输入顺序。
func (s *Solver) Solve(ctx context.Context, dayType model.DayType, timeline []model.CoverageInterval, candidates []CandidateShift) (*Solution, error) {
	startTime := time.Now()

	demand := BuildDemand(timeline)

	solution := &Solution{
		Selected: make([]CandidateShift, 0),
		Unmet:    make([]UnmetConstraint, 0),
	}

	remaining := make([]CandidateShift, len(candidates))
	copy(remaining, candidates)

	for len(demand) > 0 && len(remaining) > 0 {
		if err := ctx.Err(); err != nil {
			return solution, err
		}
		solution.Iterations++

		bestIdx := -1
		var bestRatio, bestCost float64

		for i, c := range remaining {
			gain := coverageGain(c, demand)
			if gain == 0 {
				continue
			}
			cost := s.strategy.Cost(c)
			ratio := float64(gain) / cost

			if bestIdx == -1 || ratio > bestRatio || (ratio == bestRatio && preferred(c, remaining[bestIdx])) {
				bestIdx, bestRatio, bestCost = i, ratio, cost
			}
		}

		// 再无正收益候选：剩余需求转入 Unmet
		if bestIdx == -1 {
			break
		}

		chosen := remaining[bestIdx]
		solution.Selected = append(solution.Selected, chosen)
		solution.Objective += bestCost
		applyCandidate(chosen, demand)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	solution.Unmet = unmetOf(demand)
	solution.Duration = time.Since(startTime)

	s.log.SolveComplete(string(dayType), len(solution.Selected), len(solution.Unmet), solution.Objective, solution.Duration)
	return solution, nil
}

// coverageGain 候选覆盖的各键 min(1, 残余需求) 之和
func coverageGain(c CandidateShift, demand map[DemandKey]int) int {
	gain := 0
	for key, d := range demand {
		if d <= 0 {
			continue
		}
		if c.Shift.Zone == key.Zone && c.Shift.Covers(key.StartMinute) && !c.Shift.OnBreakAt(key.StartMinute) {
			gain++
		}
	}
	return gain
}

// applyCandidate 选中候选后扣减其覆盖键的残余需求，清零的键移除
func applyCandidate(c CandidateShift, demand map[DemandKey]int) {
	for key, d := range demand {
		if c.Shift.Zone == key.Zone && c.Shift.Covers(key.StartMinute) && !c.Shift.OnBreakAt(key.StartMinute) {
			if d <= 1 {
				delete(demand, key)
			} else {
				demand[key] = d - 1
			}
		}
	}
}

// preferred 同分决胜：既有班次优先，再取时长较短者
func preferred(a, b CandidateShift) bool {
	if a.Existing != b.Existing {
		return a.Existing
	}
	return a.Shift.DurationMinutes() < b.Shift.DurationMinutes()
}

// unmetOf 把残余需求整理为稳定有序的未满足清单
func unmetOf(demand map[DemandKey]int) []UnmetConstraint {
	unmet := make([]UnmetConstraint, 0, len(demand))
	for key, d := range demand {
		unmet = append(unmet, UnmetConstraint{StartMinute: key.StartMinute, Zone: key.Zone, Remaining: d})
	}
	sort.Slice(unmet, func(i, j int) bool {
		if unmet[i].StartMinute != unmet[j].StartMinute {
			return unmet[i].StartMinute < unmet[j].StartMinute
		}
		return unmet[i].Zone < unmet[j].Zone
	})
	return unmet
}
