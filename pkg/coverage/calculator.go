// Package coverage 提供需求与运营时间轴的覆盖计算
package coverage

import (
	"sort"

	"github.com/banci/banci/pkg/model"
)

// Result 覆盖计算结果
type Result struct {
	// Timeline 各日类型的覆盖时间轴（按时段起点升序）
	Timeline map[model.DayType][]model.CoverageInterval `json:"timeline"`

	// ScaleRange 对称色阶范围，供展示层渲染
	ScaleRange model.ScaleRange `json:"scale_range"`
}

// Calculator 覆盖计算器
type Calculator struct{}

// NewCalculator 创建覆盖计算器
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Compute 合并需求与运营时间轴，得出各时段的盈亏。
//
// 机动人力分配不变式：先补北区缺口，再补南区缺口；
// 补完剩余的机动人力计入机动区自身的盈亏。
// TotalExcess 包含机动区盈亏（三区盈亏之和）。
func (c *Calculator) Compute(requirements []model.RequirementInterval, operationals []model.OperationalInterval) *Result {
	result := &Result{
		Timeline: make(map[model.DayType][]model.CoverageInterval),
	}

	// 按日类型+时段索引
	reqIndex := make(map[model.DayType]map[int]*model.RequirementInterval)
	for i := range requirements {
		r := &requirements[i]
		if reqIndex[r.DayType] == nil {
			reqIndex[r.DayType] = make(map[int]*model.RequirementInterval)
		}
		reqIndex[r.DayType][r.StartMinute] = r
	}
	opIndex := make(map[model.DayType]map[int]*model.OperationalInterval)
	for i := range operationals {
		o := &operationals[i]
		if opIndex[o.DayType] == nil {
			opIndex[o.DayType] = make(map[int]*model.OperationalInterval)
		}
		opIndex[o.DayType][o.StartMinute] = o
	}

	// 全局盈亏极值（用于色阶）
	globalMin, globalMax := 0, 0
	track := func(v int) {
		if v < globalMin {
			globalMin = v
		}
		if v > globalMax {
			globalMax = v
		}
	}

	for _, dayType := range model.AllDayTypes() {
		keys := unionKeys(reqIndex[dayType], opIndex[dayType])
		if len(keys) == 0 {
			continue
		}

		intervals := make([]model.CoverageInterval, 0, len(keys))
		for _, start := range keys {
			ci := computeInterval(dayType, start, reqIndex[dayType][start], opIndex[dayType][start])
			track(ci.NorthExcess)
			track(ci.SouthExcess)
			track(ci.FloaterExcess)
			track(ci.TotalExcess)
			intervals = append(intervals, ci)
		}
		result.Timeline[dayType] = intervals
	}

	// 对称色阶
	mag := globalMax
	if -globalMin > mag {
		mag = -globalMin
	}
	result.ScaleRange = model.ScaleRange{Min: -mag, Max: mag}

	return result
}

// computeInterval 计算单个时段的覆盖
func computeInterval(dayType model.DayType, start int, req *model.RequirementInterval, op *model.OperationalInterval) model.CoverageInterval {
	ci := model.CoverageInterval{
		DayType:     dayType,
		StartMinute: start,
	}
	if req != nil {
		ci.RequiredNorth = req.North
		ci.RequiredSouth = req.South
		ci.RequiredFloater = req.Floater
	}
	if op != nil {
		ci.OperationalNorth = op.North
		ci.OperationalSouth = op.South
		ci.OperationalFloater = op.Floater
	}

	northDeficit := max0(ci.RequiredNorth - ci.OperationalNorth)
	southDeficit := max0(ci.RequiredSouth - ci.OperationalSouth)

	// 先北后南
	ci.FloaterToNorth = minInt(northDeficit, ci.OperationalFloater)
	pool := ci.OperationalFloater - ci.FloaterToNorth
	ci.FloaterToSouth = minInt(southDeficit, pool)
	pool -= ci.FloaterToSouth

	ci.NorthExcess = ci.OperationalNorth + ci.FloaterToNorth - ci.RequiredNorth
	ci.SouthExcess = ci.OperationalSouth + ci.FloaterToSouth - ci.RequiredSouth
	ci.FloaterExcess = pool - ci.RequiredFloater
	ci.TotalExcess = ci.NorthExcess + ci.SouthExcess + ci.FloaterExcess

	switch {
	case ci.TotalExcess < 0:
		ci.Status = model.StatusDeficit
	case ci.TotalExcess > 0:
		ci.Status = model.StatusExcess
	default:
		ci.Status = model.StatusBalanced
	}

	return ci
}

// unionKeys 返回两侧时段键的并集（升序）
func unionKeys(req map[int]*model.RequirementInterval, op map[int]*model.OperationalInterval) []int {
	set := make(map[int]struct{}, len(req)+len(op))
	for k := range req {
		set[k] = struct{}{}
	}
	for k := range op {
		set[k] = struct{}{}
	}
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// CloneTimeline 返回覆盖时间轴的拷贝（供预览在副本上重算）
func CloneTimeline(timeline []model.CoverageInterval) []model.CoverageInterval {
	cp := make([]model.CoverageInterval, len(timeline))
	copy(cp, timeline)
	return cp
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
