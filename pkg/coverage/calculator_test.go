package coverage

import (
	"testing"

	"github.com/banci/banci/pkg/model"
)

func TestCompute_FloaterToNorthFirst(t *testing.T) {
	// 规格算例：需求 {北5 南5 机动1}，运营 {北4 南5 机动1}
	req := []model.RequirementInterval{
		{DayType: model.DayWeekday, StartMinute: 360, North: 5, South: 5, Floater: 1},
	}
	op := []model.OperationalInterval{
		{DayType: model.DayWeekday, StartMinute: 360, North: 4, South: 5, Floater: 1},
	}

	result := NewCalculator().Compute(req, op)
	tl := result.Timeline[model.DayWeekday]
	if len(tl) != 1 {
		t.Fatalf("时段数 = %d, 期望 1", len(tl))
	}

	ci := tl[0]
	if ci.FloaterToNorth != 1 {
		t.Errorf("FloaterToNorth = %d, 期望 1", ci.FloaterToNorth)
	}
	if ci.FloaterToSouth != 0 {
		t.Errorf("FloaterToSouth = %d, 期望 0", ci.FloaterToSouth)
	}
	if ci.NorthExcess != 0 {
		t.Errorf("NorthExcess = %d, 期望 0", ci.NorthExcess)
	}
	if ci.FloaterExcess != -1 {
		t.Errorf("FloaterExcess = %d, 期望 -1", ci.FloaterExcess)
	}
	if ci.TotalExcess != -1 {
		t.Errorf("TotalExcess = %d, 期望 -1", ci.TotalExcess)
	}
	if ci.Status != model.StatusDeficit {
		t.Errorf("Status = %s, 期望 deficit", ci.Status)
	}
}

func TestCompute_BothZonesShort(t *testing.T) {
	// 北南同时缺口：先补北
	req := []model.RequirementInterval{
		{DayType: model.DayWeekday, StartMinute: 360, North: 3, South: 3, Floater: 0},
	}
	op := []model.OperationalInterval{
		{DayType: model.DayWeekday, StartMinute: 360, North: 2, South: 2, Floater: 1},
	}

	ci := NewCalculator().Compute(req, op).Timeline[model.DayWeekday][0]
	if ci.FloaterToNorth != 1 || ci.FloaterToSouth != 0 {
		t.Errorf("机动分配 北=%d 南=%d, 期望 北=1 南=0", ci.FloaterToNorth, ci.FloaterToSouth)
	}
	if ci.NorthExcess != 0 || ci.SouthExcess != -1 {
		t.Errorf("盈亏 北=%d 南=%d, 期望 北=0 南=-1", ci.NorthExcess, ci.SouthExcess)
	}
}

func TestCompute_FloaterLeftover(t *testing.T) {
	// 机动补完缺口后剩余计入自身盈亏
	req := []model.RequirementInterval{
		{DayType: model.DaySaturday, StartMinute: 600, North: 2, South: 2, Floater: 1},
	}
	op := []model.OperationalInterval{
		{DayType: model.DaySaturday, StartMinute: 600, North: 1, South: 2, Floater: 3},
	}

	ci := NewCalculator().Compute(req, op).Timeline[model.DaySaturday][0]
	if ci.FloaterToNorth != 1 {
		t.Errorf("FloaterToNorth = %d, 期望 1", ci.FloaterToNorth)
	}
	// 剩余 2 人 - 机动需求 1 人 = 盈余 1
	if ci.FloaterExcess != 1 {
		t.Errorf("FloaterExcess = %d, 期望 1", ci.FloaterExcess)
	}
	if ci.TotalExcess != 1 {
		t.Errorf("TotalExcess = %d, 期望 1", ci.TotalExcess)
	}
	if ci.Status != model.StatusExcess {
		t.Errorf("Status = %s, 期望 excess", ci.Status)
	}
}

func TestCompute_UnionOfKeys(t *testing.T) {
	// 只在一侧出现的时段也要产出，缺失侧按零计
	req := []model.RequirementInterval{
		{DayType: model.DayWeekday, StartMinute: 360, North: 1},
	}
	op := []model.OperationalInterval{
		{DayType: model.DayWeekday, StartMinute: 375, North: 1},
	}

	tl := NewCalculator().Compute(req, op).Timeline[model.DayWeekday]
	if len(tl) != 2 {
		t.Fatalf("时段数 = %d, 期望 2", len(tl))
	}
	if tl[0].StartMinute != 360 || tl[1].StartMinute != 375 {
		t.Errorf("时段应按起点升序: %d, %d", tl[0].StartMinute, tl[1].StartMinute)
	}
	if tl[0].TotalExcess != -1 {
		t.Errorf("仅有需求的时段 TotalExcess = %d, 期望 -1", tl[0].TotalExcess)
	}
	if tl[1].TotalExcess != 1 {
		t.Errorf("仅有运营的时段 TotalExcess = %d, 期望 1", tl[1].TotalExcess)
	}
}

func TestCompute_ScaleRangeSymmetric(t *testing.T) {
	req := []model.RequirementInterval{
		{DayType: model.DayWeekday, StartMinute: 360, North: 5},
		{DayType: model.DayWeekday, StartMinute: 375, North: 0},
	}
	op := []model.OperationalInterval{
		{DayType: model.DayWeekday, StartMinute: 360, North: 2},
		{DayType: model.DayWeekday, StartMinute: 375, North: 2},
	}

	result := NewCalculator().Compute(req, op)
	// 最深缺口 -3，最大盈余 +2，对称范围取幅值 3
	if result.ScaleRange.Min != -3 || result.ScaleRange.Max != 3 {
		t.Errorf("ScaleRange = [%d, %d], 期望 [-3, 3]", result.ScaleRange.Min, result.ScaleRange.Max)
	}
}

func TestCompute_ExcessSumInvariant(t *testing.T) {
	req := []model.RequirementInterval{
		{DayType: model.DayWeekday, StartMinute: 360, North: 4, South: 3, Floater: 2},
		{DayType: model.DayWeekday, StartMinute: 375, North: 1, South: 6, Floater: 0},
	}
	op := []model.OperationalInterval{
		{DayType: model.DayWeekday, StartMinute: 360, North: 3, South: 3, Floater: 4},
		{DayType: model.DayWeekday, StartMinute: 375, North: 2, South: 4, Floater: 1},
	}

	for _, ci := range NewCalculator().Compute(req, op).Timeline[model.DayWeekday] {
		if ci.NorthExcess+ci.SouthExcess+ci.FloaterExcess != ci.TotalExcess {
			t.Errorf("时段 %d 三区盈亏之和 != TotalExcess", ci.StartMinute)
		}
		if ci.FloaterToNorth+ci.FloaterToSouth > ci.OperationalFloater {
			t.Errorf("时段 %d 机动分配超出可用机动人力", ci.StartMinute)
		}
	}
}

func TestCompute_DayTypesIndependent(t *testing.T) {
	req := []model.RequirementInterval{
		{DayType: model.DayWeekday, StartMinute: 360, North: 1},
		{DayType: model.DaySunday, StartMinute: 360, North: 2},
	}

	result := NewCalculator().Compute(req, nil)
	if len(result.Timeline[model.DayWeekday]) != 1 {
		t.Error("工作日时间轴缺失")
	}
	if len(result.Timeline[model.DaySunday]) != 1 {
		t.Error("周日时间轴缺失")
	}
	if result.Timeline[model.DaySunday][0].TotalExcess != -2 {
		t.Errorf("周日 TotalExcess = %d, 期望 -2", result.Timeline[model.DaySunday][0].TotalExcess)
	}
}
