package trimmer

import (
	"math"
	"testing"

	"github.com/banci/banci/pkg/model"
	"github.com/banci/banci/pkg/rules"
)

func newTrimmer() *Trimmer {
	return New(rules.NewAccessor(nil, rules.StandardDefaults()))
}

// timelineWith 构造北区盈余恒为 excess 的覆盖时间轴
func timelineWith(dayType model.DayType, startMin, endMin, northExcess int) map[model.DayType][]model.CoverageInterval {
	var intervals []model.CoverageInterval
	for m := startMin; m < endMin; m += 15 {
		intervals = append(intervals, model.CoverageInterval{
			DayType:     dayType,
			StartMinute: m,
			NorthExcess: northExcess,
		})
	}
	return map[model.DayType][]model.CoverageInterval{dayType: intervals}
}

func makeShift(start, end int) *model.Shift {
	return &model.Shift{
		Zone:         model.ZoneNorth,
		DayType:      model.DayWeekday,
		StartMinute:  start,
		EndMinute:    end,
		TotalHours:   float64(end-start) / 60.0,
		Origin:       model.OriginOptimized,
		VehicleCount: 1,
	}
}

func TestTrim_LeadingSurplus(t *testing.T) {
	// 班次 06:00-14:00，首端 2 个时段盈余
	tl := timelineWith(model.DayWeekday, 360, 390, 1)
	s := makeShift(360, 840)

	result := newTrimmer().Trim([]*model.Shift{s}, tl)
	if s.StartMinute != 390 {
		t.Errorf("首端应收缩到 390, 实际 %d", s.StartMinute)
	}
	if s.EndMinute != 840 {
		t.Errorf("尾端不应变化, 实际 %d", s.EndMinute)
	}
	if result.Summary.ShiftsModified != 1 {
		t.Errorf("ShiftsModified = %d, 期望 1", result.Summary.ShiftsModified)
	}
	if math.Abs(result.Summary.HoursRemoved-0.5) > 1e-9 {
		t.Errorf("HoursRemoved = %v, 期望 0.5", result.Summary.HoursRemoved)
	}
}

func TestTrim_TrailingSurplus(t *testing.T) {
	tl := timelineWith(model.DayWeekday, 810, 840, 1)
	s := makeShift(360, 840)

	newTrimmer().Trim([]*model.Shift{s}, tl)
	if s.EndMinute != 810 {
		t.Errorf("尾端应收缩到 810, 实际 %d", s.EndMinute)
	}
}

func TestTrim_NeverBelowMinimum(t *testing.T) {
	// 全程盈余，但 5 小时班次不可再收缩
	tl := timelineWith(model.DayWeekday, 360, 660, 3)
	s := makeShift(360, 660)

	result := newTrimmer().Trim([]*model.Shift{s}, tl)
	if s.DurationHours() < 5 {
		t.Errorf("时长 %.2f 低于下限 5", s.DurationHours())
	}
	if result.Summary.ShiftsModified != 0 {
		t.Errorf("不可收缩时 ShiftsModified = %d, 期望 0", result.Summary.ShiftsModified)
	}
}

func TestTrim_StopsWhenSurplusExhausted(t *testing.T) {
	// 首端仅 1 个时段盈余为 1：只收缩一步
	tl := timelineWith(model.DayWeekday, 360, 375, 1)
	s := makeShift(360, 840)

	newTrimmer().Trim([]*model.Shift{s}, tl)
	if s.StartMinute != 375 {
		t.Errorf("应只收缩一步到 375, 实际 %d", s.StartMinute)
	}
}

func TestTrim_SharedSurplusPool(t *testing.T) {
	// 两个班次共享首端 1 人份盈余：只有先处理的班次收缩
	tl := timelineWith(model.DayWeekday, 360, 375, 1)
	a := makeShift(360, 840)
	b := makeShift(360, 840)

	result := newTrimmer().Trim([]*model.Shift{a, b}, tl)
	if a.StartMinute != 375 {
		t.Errorf("班次 a 应收缩到 375, 实际 %d", a.StartMinute)
	}
	if b.StartMinute != 360 {
		t.Errorf("班次 b 不应收缩, 实际 %d", b.StartMinute)
	}
	if result.Summary.ShiftsModified != 1 {
		t.Errorf("ShiftsModified = %d, 期望 1", result.Summary.ShiftsModified)
	}
}

func TestTrim_BreakReclamped(t *testing.T) {
	// 尾端收缩后休息窗口重新夹进边界
	tl := timelineWith(model.DayWeekday, 780, 840, 1)
	s := makeShift(300, 840)
	s.Break = &model.BreakWindow{StartMinute: 760, EndMinute: 800, DurationMinutes: 40}

	newTrimmer().Trim([]*model.Shift{s}, tl)
	if s.EndMinute != 780 {
		t.Fatalf("尾端应收缩到 780, 实际 %d", s.EndMinute)
	}
	if s.Break == nil {
		t.Fatal("休息窗口可以放下，不应丢弃")
	}
	if s.Break.EndMinute > s.EndMinute-15 {
		t.Errorf("休息终点 %d 应留出尾端余量", s.Break.EndMinute)
	}
	if s.Break.DurationMinutes != 40 {
		t.Errorf("休息时长不应改变, 实际 %d", s.Break.DurationMinutes)
	}
}

func TestTrim_BreakDroppedWhenUnfit(t *testing.T) {
	// 收缩后放不下的窗口被丢弃而不是越界保留
	tl := timelineWith(model.DayWeekday, 660, 840, 2)
	s := makeShift(360, 840)
	s.Break = &model.BreakWindow{StartMinute: 700, EndMinute: 1000, DurationMinutes: 300}

	newTrimmer().Trim([]*model.Shift{s}, tl)
	if s.Break != nil {
		t.Errorf("放不下的休息窗口应被丢弃: %+v", s.Break)
	}
}

func TestTrim_HoursRemovedAccounting(t *testing.T) {
	tl := timelineWith(model.DayWeekday, 360, 900, 1)
	a := makeShift(360, 840) // 8 小时，可剪到 5 小时
	result := newTrimmer().Trim([]*model.Shift{a}, tl)

	clipped := 8.0 - a.DurationHours()
	if math.Abs(result.Summary.HoursRemoved-clipped) > 1e-9 {
		t.Errorf("HoursRemoved = %v, 期望 %v", result.Summary.HoursRemoved, clipped)
	}
}

func TestTrim_ComplianceRefreshed(t *testing.T) {
	tl := timelineWith(model.DayWeekday, 360, 390, 1)
	s := makeShift(360, 840)

	newTrimmer().Trim([]*model.Shift{s}, tl)
	if s.Violations == nil {
		t.Error("修剪后的班次应携带新鲜合规检查结果")
	}
}

func TestTrim_MultiVehicleKeepsDeficitFree(t *testing.T) {
	// 双车班次覆盖需求 1：每时段盈余 1，不足以吸收 2 辆车的收缩
	tl := timelineWith(model.DayWeekday, 360, 720, 1)
	s := makeShift(360, 720)
	s.VehicleCount = 2

	result := newTrimmer().Trim([]*model.Shift{s}, tl)
	if s.StartMinute != 360 || s.EndMinute != 720 {
		t.Errorf("盈余 1 不足以收缩双车班次, 实际 [%d, %d)", s.StartMinute, s.EndMinute)
	}
	if result.Summary.ShiftsModified != 0 {
		t.Errorf("ShiftsModified = %d, 期望 0", result.Summary.ShiftsModified)
	}
}

func TestTrim_MultiVehicleConsumesMatchingSurplus(t *testing.T) {
	// 尾部两个时段盈余 2，恰好吸收双车班次各收缩一步
	var intervals []model.CoverageInterval
	for m := 360; m < 720; m += 15 {
		excess := 1
		if m >= 690 {
			excess = 2
		}
		intervals = append(intervals, model.CoverageInterval{
			DayType:     model.DayWeekday,
			StartMinute: m,
			NorthExcess: excess,
		})
	}
	tl := map[model.DayType][]model.CoverageInterval{model.DayWeekday: intervals}

	s := makeShift(360, 720)
	s.VehicleCount = 2

	result := newTrimmer().Trim([]*model.Shift{s}, tl)
	if s.EndMinute != 690 {
		t.Errorf("尾端应收缩到 690, 实际 %d", s.EndMinute)
	}
	if s.StartMinute != 360 {
		t.Errorf("首端不应变化, 实际 %d", s.StartMinute)
	}
	if math.Abs(result.Summary.HoursRemoved-0.5) > 1e-9 {
		t.Errorf("HoursRemoved = %v, 期望 0.5", result.Summary.HoursRemoved)
	}
}
