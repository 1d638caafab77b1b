// Package trimmer 提供班次边界收缩：剪除超出需求的盈余时段
package trimmer

import (
	"time"

	"github.com/banci/banci/pkg/compliance"
	"github.com/banci/banci/pkg/logger"
	"github.com/banci/banci/pkg/model"
	"github.com/banci/banci/pkg/rules"
	"github.com/banci/banci/pkg/timegrid"
)

// Summary 修剪汇总
type Summary struct {
	HoursRemoved   float64 `json:"hours_removed"`
	ShiftsModified int     `json:"shifts_modified"`
}

// Result 修剪结果
type Result struct {
	Shifts   []*model.Shift `json:"shifts"`
	Summary  Summary        `json:"summary"`
	Duration time.Duration  `json:"duration"`
}

// Trimmer 班次修剪器
type Trimmer struct {
	acc *rules.Accessor
	log *logger.EngineLogger
}

// New 创建班次修剪器
func New(acc *rules.Accessor) *Trimmer {
	return &Trimmer{
		acc: acc,
		log: logger.NewEngineLogger("trimmer"),
	}
}

// surplusKey 按 日类型 × 时段 × 区域 索引剩余盈余
type surplusKey struct {
	day   model.DayType
	start int
	zone  model.Zone
}

// Trim 按覆盖盈余收缩班次边界。
// 以 15 分钟为步长从首尾向内收缩，条件：被剪时段盈余仍为正，
// 且收缩后不低于最短班次时长。多个班次共享同一盈余池，
// 先剪者消耗盈余，后剪者据此让步。
func (t *Trimmer) Trim(shifts []*model.Shift, timeline map[model.DayType][]model.CoverageInterval) *Result {
	startTime := time.Now()

	// 可变盈余池
	surplus := make(map[surplusKey]int)
	for day, intervals := range timeline {
		for _, ci := range intervals {
			for _, zone := range model.AllZones() {
				surplus[surplusKey{day: day, start: ci.StartMinute, zone: zone}] = ci.Excess(zone)
			}
		}
	}

	minMinutes := int(t.acc.MinShiftHours() * 60)
	summary := Summary{}

	for _, s := range shifts {
		if s.VehicleCount < 1 {
			continue
		}
		removed := 0

		// 首端收缩：被剪时段的盈余必须足以吸收整个车辆倍率，
		// 否则收缩会把该时段翻成缺口
		for s.DurationMinutes()-timegrid.StepMinutes >= minMinutes {
			k := surplusKey{day: s.DayType, start: s.StartMinute, zone: s.Zone}
			if surplus[k] < s.VehicleCount {
				break
			}
			surplus[k] -= s.VehicleCount
			s.StartMinute += timegrid.StepMinutes
			removed += timegrid.StepMinutes
		}

		// 尾端收缩
		for s.DurationMinutes()-timegrid.StepMinutes >= minMinutes {
			k := surplusKey{day: s.DayType, start: s.EndMinute - timegrid.StepMinutes, zone: s.Zone}
			if surplus[k] < s.VehicleCount {
				break
			}
			surplus[k] -= s.VehicleCount
			s.EndMinute -= timegrid.StepMinutes
			removed += timegrid.StepMinutes
		}

		if removed > 0 {
			s.TotalHours = s.DurationHours()
			s.Break = reclampWindow(s.Break, s.StartMinute, s.EndMinute)
			s.MealBreak = reclampWindow(s.MealBreak, s.StartMinute, s.EndMinute)
			compliance.Apply(s, t.acc)

			summary.HoursRemoved += float64(removed) / 60.0
			summary.ShiftsModified++
		}
	}

	return &Result{
		Shifts:   shifts,
		Summary:  summary,
		Duration: time.Since(startTime),
	}
}

// reclampWindow 把休息窗口重新夹进新边界，两侧各留至少一个时段的余量。
// 放不下的窗口直接丢弃，不留下越界窗口。
func reclampWindow(w *model.BreakWindow, start, end int) *model.BreakWindow {
	if w == nil {
		return nil
	}

	lo := start + timegrid.StepMinutes
	hi := end - timegrid.StepMinutes

	if w.DurationMinutes > hi-lo {
		return nil
	}

	bs := w.StartMinute
	if bs < lo {
		bs = lo
	}
	if bs+w.DurationMinutes > hi {
		bs = hi - w.DurationMinutes
	}

	return &model.BreakWindow{
		StartMinute:     bs,
		EndMinute:       bs + w.DurationMinutes,
		DurationMinutes: w.DurationMinutes,
	}
}
