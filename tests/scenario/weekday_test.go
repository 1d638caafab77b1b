// Package scenario 提供场景测试
package scenario

import (
	"testing"

	"github.com/banci/banci/pkg/coverage"
	"github.com/banci/banci/pkg/model"
	"github.com/banci/banci/pkg/rules"
	"github.com/banci/banci/pkg/scheduler/generator"
	"github.com/banci/banci/pkg/scheduler/trimmer"
	"github.com/banci/banci/pkg/timegrid"
)

// makeRequirements 按 15 分钟步长展开 [from, to) 的需求时段
func makeRequirements(dayType model.DayType, from, to, north, south, floater int) []model.RequirementInterval {
	var reqs []model.RequirementInterval
	for m := from; m < to; m += timegrid.StepMinutes {
		reqs = append(reqs, model.RequirementInterval{
			DayType:     dayType,
			StartMinute: m,
			North:       north,
			South:       south,
			Floater:     floater,
		})
	}
	return reqs
}

func stdAccessor() *rules.Accessor {
	return rules.NewAccessor(nil, rules.StandardDefaults())
}

// TestWeekdayFullPipeline 工作日全流程：需求 → 生成 → 覆盖 → 修剪
func TestWeekdayFullPipeline(t *testing.T) {
	acc := stdAccessor()

	// 早晚高峰 2 班、平峰 1 班的北区曲线，南区全天 1 班
	var reqs []model.RequirementInterval
	reqs = append(reqs, makeRequirements(model.DayWeekday, 360, 600, 2, 1, 0)...)
	reqs = append(reqs, makeRequirements(model.DayWeekday, 600, 840, 1, 1, 0)...)
	reqs = append(reqs, makeRequirements(model.DayWeekday, 840, 1080, 2, 1, 0)...)

	gen := generator.New(acc)
	result := gen.Generate(reqs)

	if len(result.Shifts) != 6 {
		t.Fatalf("期望生成 6 个班次, 实际 %d", len(result.Shifts))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("生成不应产生合规警告, 实际 %d 条", len(result.Warnings))
		for _, w := range result.Warnings {
			t.Logf("  警告: %s - %s", w.ShiftCode, w.Violation.Message)
		}
	}

	// 北区应为两个满上限班次 + 两个下限补足班次
	windows := map[[2]int]int{}
	for _, s := range result.Shifts {
		if s.Zone == model.ZoneNorth {
			windows[[2]int{s.StartMinute, s.EndMinute}]++
		}
	}
	if windows[[2]int{360, 945}] != 2 || windows[[2]int{945, 1245}] != 2 {
		t.Errorf("北区班次窗口不符: %v", windows)
	}

	// 满上限班次达到用餐触发时长，必须带休息窗口
	for _, s := range result.Shifts {
		needsBreak := s.DurationMinutes() >= int(acc.MealBreakThresholdHours()*60)+acc.MealBreakMinutes()
		if needsBreak && s.Break == nil {
			t.Errorf("班次 %s 时长 %d 分钟应带休息窗口", s.Code, s.DurationMinutes())
		}
		if !needsBreak && s.Break != nil {
			t.Errorf("班次 %s 时长 %d 分钟不应带休息窗口", s.Code, s.DurationMinutes())
		}
	}

	// 生成结果回灌覆盖计算：任何时段都不允许出现缺口
	cov := coverage.NewCalculator().Compute(reqs, result.Operational)
	timeline := cov.Timeline[model.DayWeekday]
	if len(timeline) == 0 {
		t.Fatal("覆盖时间轴为空")
	}
	for _, ci := range timeline {
		if ci.Status == model.StatusDeficit {
			t.Errorf("时段 %s 出现缺口: 北 %d 南 %d 机动 %d",
				timegrid.FormatMinutes(ci.StartMinute),
				ci.NorthExcess, ci.SouthExcess, ci.FloaterExcess)
		}
	}

	// 下限补足的尾段形成盈余，色阶按全局极值对称
	if cov.ScaleRange.Min != -3 || cov.ScaleRange.Max != 3 {
		t.Errorf("色阶范围期望 [-3, 3], 实际 [%d, %d]", cov.ScaleRange.Min, cov.ScaleRange.Max)
	}

	// 修剪：下限班次已在最短时长上，盈余不可再剪
	trimmed := trimmer.New(acc).Trim(result.Shifts, cov.Timeline)
	if trimmed.Summary.ShiftsModified != 0 {
		t.Errorf("最短班次不应被修剪, 实际修改 %d 个", trimmed.Summary.ShiftsModified)
	}
	minMinutes := int(acc.MinShiftHours() * 60)
	for _, s := range trimmed.Shifts {
		if s.DurationMinutes() < minMinutes {
			t.Errorf("班次 %s 修剪后低于最短时长: %d 分钟", s.Code, s.DurationMinutes())
		}
	}

	t.Logf("全流程: 班次=%d, 覆盖时段=%d, 修剪移除=%.1f 小时",
		len(result.Shifts), len(timeline), trimmed.Summary.HoursRemoved)
}

// TestImportedScheduleTrim 导入班表的尾部盈余被剪除
func TestImportedScheduleTrim(t *testing.T) {
	acc := stdAccessor()

	// 需求止于 14:00，导入班次拖到 15:00
	reqs := makeRequirements(model.DayWeekday, 360, 840, 1, 0, 0)
	shift := &model.Shift{
		BaseModel:    model.NewBaseModel(),
		Code:         "IMP-N1",
		Zone:         model.ZoneNorth,
		DayType:      model.DayWeekday,
		StartMinute:  360,
		EndMinute:    900,
		TotalHours:   9.0,
		Break:        &model.BreakWindow{StartMinute: 600, EndMinute: 640, DurationMinutes: 40},
		Origin:       model.OriginImported,
		VehicleCount: 1,
	}
	shifts := []*model.Shift{shift}

	cov := coverage.NewCalculator().Compute(reqs, generator.BuildOperational(shifts))
	trimmed := trimmer.New(acc).Trim(shifts, cov.Timeline)

	if shift.StartMinute != 360 || shift.EndMinute != 840 {
		t.Errorf("期望修剪为 [360, 840), 实际 [%d, %d)", shift.StartMinute, shift.EndMinute)
	}
	if trimmed.Summary.HoursRemoved != 1.0 {
		t.Errorf("期望移除 1.0 小时, 实际 %.2f", trimmed.Summary.HoursRemoved)
	}
	if trimmed.Summary.ShiftsModified != 1 {
		t.Errorf("期望修改 1 个班次, 实际 %d", trimmed.Summary.ShiftsModified)
	}
	// 休息窗口仍落在新边界内则保留
	if shift.Break == nil || shift.Break.StartMinute != 600 {
		t.Errorf("边界内的休息窗口不应被移动: %+v", shift.Break)
	}
	if !shift.Compliant {
		t.Errorf("修剪后应保持合规, 违规: %v", shift.Violations)
	}
}
