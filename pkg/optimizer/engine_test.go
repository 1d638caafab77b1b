package optimizer

import (
	"math"
	"testing"

	"github.com/banci/banci/pkg/model"
	"github.com/banci/banci/pkg/rules"
)

func newEngine() *Engine {
	return NewEngine(rules.NewAccessor(nil, rules.StandardDefaults()))
}

func zoneShift(code string, zone model.Zone, start, end int) *model.Shift {
	return &model.Shift{
		BaseModel:    model.NewBaseModel(),
		Code:         code,
		Zone:         zone,
		DayType:      model.DayWeekday,
		StartMinute:  start,
		EndMinute:    end,
		TotalHours:   float64(end-start) / 60.0,
		Origin:       model.OriginOptimized,
		VehicleCount: 1,
	}
}

func TestCompute_ExtendNearestShift(t *testing.T) {
	// 北区 14:00-15:00 缺口，班次尾端恰好贴着缺口起点
	tl := northTimeline(840, -1, -1, -1, -1)
	s := zoneShift("AUTO-WD-N1", model.ZoneNorth, 360, 840)

	insights := newEngine().Compute(model.DayWeekday, tl, []*model.Shift{s})
	if len(insights.Recommendations) != 1 {
		t.Fatalf("建议数 = %d, 期望 1", len(insights.Recommendations))
	}
	rec := insights.Recommendations[0]
	if rec.Type != RecommendExtendShift {
		t.Fatalf("建议类型 = %s, 期望 extend_shift", rec.Type)
	}
	if rec.NewEndMinute == nil || *rec.NewEndMinute != 900 {
		t.Errorf("NewEndMinute = %v, 期望 900", rec.NewEndMinute)
	}
	if rec.NewStartMinute == nil || *rec.NewStartMinute != 360 {
		t.Errorf("NewStartMinute = %v, 期望 360", rec.NewStartMinute)
	}
	if rec.Priority != PriorityMedium {
		t.Errorf("优先级 = %s, 期望 medium", rec.Priority)
	}
	if len(rec.Impact) != 4 {
		t.Fatalf("影响时段数 = %d, 期望 4", len(rec.Impact))
	}
	for i, entry := range rec.Impact {
		if entry.StartMinute != 840+i*15 || entry.Zone != model.ZoneNorth || entry.Gain != 1 {
			t.Errorf("影响[%d] = %+v", i, entry)
		}
	}
}

func TestCompute_ExtendPicksSmallestGap(t *testing.T) {
	// 峰值缺口 1，两个候选班次只取间隔最小的
	tl := northTimeline(840, -1, -1, -1, -1)
	near := zoneShift("AUTO-WD-N1", model.ZoneNorth, 360, 840)
	far := zoneShift("AUTO-WD-N2", model.ZoneNorth, 330, 810)

	insights := newEngine().Compute(model.DayWeekday, tl, []*model.Shift{far, near})
	if len(insights.Recommendations) != 1 {
		t.Fatalf("建议数 = %d, 期望 1", len(insights.Recommendations))
	}
	rec := insights.Recommendations[0]
	if len(rec.ShiftCodes) != 1 || rec.ShiftCodes[0] != "AUTO-WD-N1" {
		t.Errorf("应选中间隔为零的班次, 实际 %v", rec.ShiftCodes)
	}
}

func TestCompute_ExtendHead(t *testing.T) {
	// 班次起点贴着缺口终点：向前延长
	tl := northTimeline(600, -1, -1, -1, -1)
	s := zoneShift("AUTO-WD-N1", model.ZoneNorth, 660, 1020)

	insights := newEngine().Compute(model.DayWeekday, tl, []*model.Shift{s})
	if len(insights.Recommendations) != 1 {
		t.Fatalf("建议数 = %d, 期望 1", len(insights.Recommendations))
	}
	rec := insights.Recommendations[0]
	if rec.NewStartMinute == nil || *rec.NewStartMinute != 600 {
		t.Errorf("NewStartMinute = %v, 期望 600", rec.NewStartMinute)
	}
	if rec.NewEndMinute == nil || *rec.NewEndMinute != 1020 {
		t.Errorf("NewEndMinute = %v, 期望 1020", rec.NewEndMinute)
	}
}

func TestCompute_ExtendRespectsMaxLength(t *testing.T) {
	// 延长后超过时长上限的班次不作候选
	tl := northTimeline(900, -1, -1, -1, -1)
	s := zoneShift("AUTO-WD-N1", model.ZoneNorth, 360, 900) // 延到 960 共 10h

	insights := newEngine().Compute(model.DayWeekday, tl, []*model.Shift{s})
	for _, rec := range insights.Recommendations {
		if rec.Type == RecommendExtendShift {
			t.Fatalf("不应产生延长建议: %+v", rec)
		}
	}
}

func TestCompute_NewShiftForUncoveredBlock(t *testing.T) {
	// 南区 10:00-11:45 缺口，无可延长班次：新增理想时长班次
	tl := make([]model.CoverageInterval, 0, 7)
	for m := 600; m < 705; m += 15 {
		tl = append(tl, model.CoverageInterval{
			DayType: model.DayWeekday, StartMinute: m, SouthExcess: -1,
		})
	}

	insights := newEngine().Compute(model.DayWeekday, tl, nil)
	if len(insights.Recommendations) != 1 {
		t.Fatalf("建议数 = %d, 期望 1", len(insights.Recommendations))
	}
	rec := insights.Recommendations[0]
	if rec.Type != RecommendNewShift {
		t.Fatalf("建议类型 = %s, 期望 new_shift", rec.Type)
	}
	if rec.Priority != PriorityHigh {
		t.Errorf("新增班次优先级 = %s, 期望 high", rec.Priority)
	}
	sh := rec.ProposedShift
	if sh == nil {
		t.Fatal("缺少建议班次")
	}
	// 理想时长 7.2h 对齐到 435 分钟
	if sh.StartMinute != 600 || sh.EndMinute != 1035 {
		t.Errorf("建议班次 %d-%d, 期望 600-1035", sh.StartMinute, sh.EndMinute)
	}
	if sh.Zone != model.ZoneSouth || sh.Code != "OPT-WD-S1" {
		t.Errorf("建议班次 zone=%s code=%s", sh.Zone, sh.Code)
	}
	if sh.Break != nil {
		t.Errorf("7.25h 班次不应带休息, 实际 %+v", sh.Break)
	}
	if sh.Origin != model.OriginOptimized {
		t.Errorf("来源 = %s, 期望 optimized", sh.Origin)
	}
}

func TestCompute_BreakAdjustment(t *testing.T) {
	// 班次 05:00-14:45 休息 09:30-10:10 压在缺口上，
	// 受最晚开始约束只能移到班次前端
	tl := northTimeline(570, -1, -1, -1)
	s := zoneShift("AUTO-WD-N1", model.ZoneNorth, 300, 885)
	s.Break = &model.BreakWindow{StartMinute: 570, EndMinute: 610, DurationMinutes: 40}

	insights := newEngine().Compute(model.DayWeekday, tl, []*model.Shift{s})

	var adjust *Recommendation
	for i := range insights.Recommendations {
		if insights.Recommendations[i].Type == RecommendBreakAdjustment {
			adjust = &insights.Recommendations[i]
		}
	}
	if adjust == nil {
		t.Fatal("缺少调整休息建议")
	}
	if adjust.NewBreak == nil || adjust.NewBreak.StartMinute != 315 || adjust.NewBreak.EndMinute != 355 {
		t.Errorf("NewBreak = %+v, 期望 315-355", adjust.NewBreak)
	}
	// 释放 570/585/600 三个时段，占用 315/330/345 三个时段
	gains := map[int]int{}
	for _, entry := range adjust.Impact {
		gains[entry.StartMinute] += entry.Gain
	}
	for _, m := range []int{570, 585, 600} {
		if gains[m] != 1 {
			t.Errorf("时段 %d 增量 = %d, 期望 +1", m, gains[m])
		}
	}
	for _, m := range []int{315, 330, 345} {
		if gains[m] != -1 {
			t.Errorf("时段 %d 增量 = %d, 期望 -1", m, gains[m])
		}
	}
}

func TestCompute_Totals(t *testing.T) {
	tl := northTimeline(570, -1, -1, -1)
	s := zoneShift("AUTO-WD-N1", model.ZoneNorth, 300, 885)
	s.Break = &model.BreakWindow{StartMinute: 570, EndMinute: 610, DurationMinutes: 40}

	insights := newEngine().Compute(model.DayWeekday, tl, []*model.Shift{s})

	// 无法延长（班次横跨缺口）：一个新增班次 + 一个调整休息
	if insights.Totals.DeficitBlocks != 1 {
		t.Errorf("DeficitBlocks = %d, 期望 1", insights.Totals.DeficitBlocks)
	}
	if insights.Totals.Recommendations != 2 {
		t.Errorf("Recommendations = %d, 期望 2", insights.Totals.Recommendations)
	}
	if insights.Totals.HighPriority != 1 {
		t.Errorf("HighPriority = %d, 期望 1", insights.Totals.HighPriority)
	}
	if math.Abs(insights.Totals.VehicleHoursShort-0.75) > 1e-9 {
		t.Errorf("VehicleHoursShort = %v, 期望 0.75", insights.Totals.VehicleHoursShort)
	}
	if insights.Totals.PeakShortfall != 1 {
		t.Errorf("PeakShortfall = %d, 期望 1", insights.Totals.PeakShortfall)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	tl := northTimeline(840, -1, -2, -1)
	shifts := []*model.Shift{
		zoneShift("AUTO-WD-N1", model.ZoneNorth, 360, 840),
		zoneShift("AUTO-WD-N2", model.ZoneNorth, 330, 825),
	}

	a := newEngine().Compute(model.DayWeekday, tl, shifts)
	b := newEngine().Compute(model.DayWeekday, tl, shifts)
	if len(a.Recommendations) != len(b.Recommendations) {
		t.Fatalf("两次运行建议数不一致: %d vs %d", len(a.Recommendations), len(b.Recommendations))
	}
	for i := range a.Recommendations {
		if a.Recommendations[i].Type != b.Recommendations[i].Type ||
			a.Recommendations[i].Message != b.Recommendations[i].Message {
			t.Errorf("第 %d 条建议不一致", i)
		}
	}
}

func TestApplyImpacts(t *testing.T) {
	tl := []model.CoverageInterval{
		{DayType: model.DayWeekday, StartMinute: 840, NorthExcess: -1, TotalExcess: -1, Status: model.StatusDeficit},
	}
	recs := []Recommendation{{
		Impact: []ImpactEntry{{StartMinute: 840, Zone: model.ZoneNorth, Gain: 1}},
	}}

	out := ApplyImpacts(tl, recs)
	if out[0].NorthExcess != 0 || out[0].TotalExcess != 0 {
		t.Errorf("叠加后 north=%d total=%d, 期望 0/0", out[0].NorthExcess, out[0].TotalExcess)
	}
	if out[0].Status != model.StatusBalanced {
		t.Errorf("Status = %s, 期望 balanced", out[0].Status)
	}
	if tl[0].NorthExcess != -1 || tl[0].Status != model.StatusDeficit {
		t.Error("入参时间轴不应被修改")
	}
}
