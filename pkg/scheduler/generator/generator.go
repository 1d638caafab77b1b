// Package generator 提供基于需求曲线的班次自动生成
//
// 算法按 日类型 × 区域 独立执行：按时段起点顺序扫描需求曲线，
// 用"档位"（rank，匿名的并发在岗席位，0 起编号）跟踪同时在岗的班次数，
// 贪心地开、关档位得到一组覆盖全部需求的班次。
package generator

import (
	"fmt"
	"sort"
	"time"

	"github.com/banci/banci/pkg/compliance"
	"github.com/banci/banci/pkg/logger"
	"github.com/banci/banci/pkg/model"
	"github.com/banci/banci/pkg/rules"
	"github.com/banci/banci/pkg/timegrid"
)

// Warning 生成过程中的合规警告（不阻断生成）
type Warning struct {
	ShiftCode string          `json:"shift_code"`
	Violation model.Violation `json:"violation"`
}

// Result 生成结果
type Result struct {
	Shifts      []*model.Shift              `json:"shifts"`
	Operational []model.OperationalInterval `json:"operational"`
	Warnings    []Warning                   `json:"warnings"`
	Duration    time.Duration               `json:"duration"`
}

// Generator 班次自动生成器
type Generator struct {
	acc *rules.Accessor
	log *logger.EngineLogger
}

// New 创建班次生成器
func New(acc *rules.Accessor) *Generator {
	return &Generator{
		acc: acc,
		log: logger.NewEngineLogger("generator"),
	}
}

// rank 在建班次的档位
type rank struct {
	index   int // 档位编号（0 起）
	start   int // 班次起点（分钟）
	lastEnd int // 已覆盖到的终点（分钟）
}

// Generate 由需求时间轴生成一组合规班次。
// 每个产出班次都带有新鲜的合规检查结果；违规以警告返回，
// 生成本身从不中断——引擎总是交付完整覆盖。
func (g *Generator) Generate(requirements []model.RequirementInterval) *Result {
	startTime := time.Now()

	result := &Result{
		Shifts:   make([]*model.Shift, 0),
		Warnings: make([]Warning, 0),
	}

	// 按日类型分组
	byDay := make(map[model.DayType][]model.RequirementInterval)
	for _, r := range requirements {
		byDay[r.DayType] = append(byDay[r.DayType], r)
	}

	for _, dayType := range model.AllDayTypes() {
		dayReqs := byDay[dayType]
		if len(dayReqs) == 0 {
			continue
		}
		sort.Slice(dayReqs, func(i, j int) bool {
			return dayReqs[i].StartMinute < dayReqs[j].StartMinute
		})
		g.log.StartGeneration(string(dayType), len(dayReqs))

		for _, zone := range model.AllZones() {
			shifts := g.generateZone(dayType, zone, dayReqs)
			result.Shifts = append(result.Shifts, shifts...)
		}
	}

	// 合规检查与警告收集
	for _, s := range result.Shifts {
		compliance.Apply(s, g.acc)
		for _, v := range s.Violations {
			result.Warnings = append(result.Warnings, Warning{ShiftCode: s.Code, Violation: v})
			g.log.ComplianceWarning(s.Code, v.RuleName, v.Message)
		}
	}

	result.Operational = BuildOperational(result.Shifts)
	result.Duration = time.Since(startTime)

	for _, dayType := range model.AllDayTypes() {
		count, warns := 0, 0
		for _, s := range result.Shifts {
			if s.DayType == dayType {
				count++
				warns += len(s.Violations)
			}
		}
		if count > 0 {
			g.log.GenerationComplete(string(dayType), count, warns, result.Duration)
		}
	}

	return result
}

// generateZone 为单个 日类型 × 区域 生成班次
func (g *Generator) generateZone(dayType model.DayType, zone model.Zone, dayReqs []model.RequirementInterval) []*model.Shift {
	minMinutes := int(g.acc.MinShiftHours() * 60)
	maxMinutes := int(g.acc.MaxShiftHours() * 60)

	var shifts []*model.Shift
	var active []*rank
	seq := 0

	finalize := func(r *rank, end int) {
		// 不足下限时向后延伸补足，夹到运营日窗口内
		if end-r.start < minMinutes {
			end = r.start + minMinutes
			if end > timegrid.DayEnd {
				end = timegrid.DayEnd
			}
		}
		seq++
		shifts = append(shifts, g.newShift(dayType, zone, seq, r.start, end))
	}

	for _, req := range dayReqs {
		s := req.StartMinute
		required := req.Required(zone)

		// 1. 在岗档位多于需求：从最高档位起关闭多余档位；
		//    关闭后不足下限的档位保持在岗继续延伸
		for i := len(active) - 1; i >= 0 && len(active) > required; i-- {
			r := active[i]
			if r.lastEnd-r.start < minMinutes {
				continue
			}
			finalize(r, r.lastEnd)
			active = append(active[:i], active[i+1:]...)
		}

		// 2. 需求未满：开启新档位（使用最小空闲编号）
		for len(active) < required {
			used := make(map[int]bool, len(active))
			for _, r := range active {
				used[r.index] = true
			}
			idx := 0
			for used[idx] {
				idx++
			}
			active = append(active, &rank{index: idx, start: s, lastEnd: s})
			sort.Slice(active, func(i, j int) bool { return active[i].index < active[j].index })
		}

		// 3. 推进所有在岗档位；越过上限的档位就地关断并开新档位接续覆盖
		for i := range active {
			r := active[i]
			newEnd := s + timegrid.StepMinutes
			if newEnd-r.start > maxMinutes {
				finalize(r, r.lastEnd)
				active[i] = &rank{index: r.index, start: s, lastEnd: newEnd}
			} else {
				r.lastEnd = newEnd
			}
		}
	}

	// 4. 末时段强制收班
	for i := len(active) - 1; i >= 0; i-- {
		finalize(active[i], active[i].lastEnd)
	}

	return shifts
}

// newShift 构造班次并按需安排休息窗口
func (g *Generator) newShift(dayType model.DayType, zone model.Zone, seq, start, end int) *model.Shift {
	s := &model.Shift{
		BaseModel:    model.NewBaseModel(),
		Code:         fmt.Sprintf("AUTO-%s-%s%d", dayType.Short(), zone.Letter(), seq),
		Zone:         zone,
		DayType:      dayType,
		StartMinute:  start,
		EndMinute:    end,
		TotalHours:   float64(end-start) / 60.0,
		Origin:       model.OriginOptimized,
		VehicleCount: 1,
	}
	s.Break = PlaceBreak(start, end, g.acc)
	return s
}

// BuildOperational 由班次集合还原运营时间轴（用于回灌覆盖计算）
func BuildOperational(shifts []*model.Shift) []model.OperationalInterval {
	type key struct {
		day   model.DayType
		start int
	}
	index := make(map[key]*model.OperationalInterval)

	for _, s := range shifts {
		for m := s.StartMinute; m < s.EndMinute; m += timegrid.StepMinutes {
			k := key{day: s.DayType, start: m}
			oi := index[k]
			if oi == nil {
				oi = &model.OperationalInterval{DayType: s.DayType, StartMinute: m}
				index[k] = oi
			}
			switch s.Zone {
			case model.ZoneNorth:
				oi.North += s.VehicleCount
			case model.ZoneSouth:
				oi.South += s.VehicleCount
			case model.ZoneFloater:
				oi.Floater += s.VehicleCount
			}
			if s.OnBreakAt(m) {
				oi.OnBreak++
			}
		}
	}

	out := make([]model.OperationalInterval, 0, len(index))
	for _, oi := range index {
		out = append(out, *oi)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayType != out[j].DayType {
			return out[i].DayType < out[j].DayType
		}
		return out[i].StartMinute < out[j].StartMinute
	})
	return out
}
