package rules

import (
	"testing"

	"github.com/banci/banci/pkg/model"
)

func fptr(v float64) *float64 { return &v }

func TestAccessor_Defaults(t *testing.T) {
	a := NewAccessor(nil, StandardDefaults())

	if got := a.MinShiftHours(); got != 5 {
		t.Errorf("MinShiftHours = %v, 期望 5", got)
	}
	if got := a.MaxShiftHours(); got != 9.75 {
		t.Errorf("MaxShiftHours = %v, 期望 9.75", got)
	}
	if got := a.IdealShiftHours(); got != 7.2 {
		t.Errorf("IdealShiftHours = %v, 期望 7.2", got)
	}
	if got := a.MealBreakThresholdHours(); got != 7.5 {
		t.Errorf("MealBreakThresholdHours = %v, 期望 7.5", got)
	}
	if got := a.MealBreakLatestStartHours(); got != 4.75 {
		t.Errorf("MealBreakLatestStartHours = %v, 期望 4.75", got)
	}
	if got := a.MealBreakMinutes(); got != 40 {
		t.Errorf("MealBreakMinutes = %v, 期望 40", got)
	}
	if _, ok := a.ContinuousDrivingHours(); ok {
		t.Error("未配置连续驾驶规则时应返回 false")
	}
}

func TestAccessor_SubtypeMatch(t *testing.T) {
	ruleSet := []model.LaborRule{
		{
			Name:     "单班最短时长",
			Category: model.RuleShiftLength,
			Type:     model.RuleRequired,
			Subtype:  model.SubtypeMinimum,
			MinValue: fptr(6),
			Unit:     model.UnitHours,
			Active:   true,
		},
		{
			Name:     "单班最长时长",
			Category: model.RuleShiftLength,
			Type:     model.RuleRequired,
			Subtype:  model.SubtypeMaximum,
			MaxValue: fptr(10),
			Unit:     model.UnitHours,
			Active:   true,
		},
		{
			Name:     "用餐休息时长",
			Category: model.RuleBreaks,
			Type:     model.RuleRequired,
			Subtype:  model.SubtypeMealBreakDuration,
			MinValue: fptr(45),
			Unit:     model.UnitMinutes,
			Active:   true,
		},
	}

	a := NewAccessor(ruleSet, StandardDefaults())
	if got := a.MinShiftHours(); got != 6 {
		t.Errorf("MinShiftHours = %v, 期望 6", got)
	}
	if got := a.MaxShiftHours(); got != 10 {
		t.Errorf("MaxShiftHours = %v, 期望 10", got)
	}
	if got := a.MealBreakMinutes(); got != 45 {
		t.Errorf("MealBreakMinutes = %v, 期望 45", got)
	}
}

func TestAccessor_NameFallback(t *testing.T) {
	// 未打子类标签的导入规则按名称子串回退匹配
	ruleSet := []model.LaborRule{
		{
			Name:     "minimum shift length",
			Category: model.RuleShiftLength,
			Type:     model.RuleRequired,
			MinValue: fptr(4.5),
			Unit:     model.UnitHours,
			Active:   true,
		},
	}

	a := NewAccessor(ruleSet, StandardDefaults())
	if got := a.MinShiftHours(); got != 4.5 {
		t.Errorf("MinShiftHours = %v, 期望 4.5（名称回退匹配）", got)
	}
}

func TestAccessor_InactiveIgnored(t *testing.T) {
	ruleSet := []model.LaborRule{
		{
			Name:     "单班最短时长",
			Category: model.RuleShiftLength,
			Type:     model.RuleRequired,
			Subtype:  model.SubtypeMinimum,
			MinValue: fptr(8),
			Unit:     model.UnitHours,
			Active:   false,
		},
	}

	a := NewAccessor(ruleSet, StandardDefaults())
	if got := a.MinShiftHours(); got != 5 {
		t.Errorf("停用规则不应生效，MinShiftHours = %v, 期望 5", got)
	}
}

func TestAccessor_FirstMatchWins(t *testing.T) {
	ruleSet := []model.LaborRule{
		{
			Name:     "单班最短时长",
			Category: model.RuleShiftLength,
			Type:     model.RuleRequired,
			Subtype:  model.SubtypeMinimum,
			MinValue: fptr(6),
			Unit:     model.UnitHours,
			Active:   true,
		},
		{
			Name:     "单班最短时长（旧）",
			Category: model.RuleShiftLength,
			Type:     model.RuleRequired,
			Subtype:  model.SubtypeMinimum,
			MinValue: fptr(7),
			Unit:     model.UnitHours,
			Active:   true,
		},
	}

	a := NewAccessor(ruleSet, StandardDefaults())
	if got := a.MinShiftHours(); got != 6 {
		t.Errorf("应首个匹配胜出，MinShiftHours = %v, 期望 6", got)
	}
}

func TestAccessor_MinutesUnit(t *testing.T) {
	ruleSet := []model.LaborRule{
		{
			Name:     "单班最长时长",
			Category: model.RuleShiftLength,
			Type:     model.RuleRequired,
			Subtype:  model.SubtypeMaximum,
			MaxValue: fptr(585),
			Unit:     model.UnitMinutes,
			Active:   true,
		},
	}

	a := NewAccessor(ruleSet, StandardDefaults())
	if got := a.MaxShiftHours(); got != 9.75 {
		t.Errorf("分钟单位应折算为小时，MaxShiftHours = %v, 期望 9.75", got)
	}
}

func TestAccessor_ContinuousDriving(t *testing.T) {
	ruleSet := []model.LaborRule{
		{
			Name:     "连续驾驶上限",
			Category: model.RuleRestPeriods,
			Type:     model.RuleRequired,
			Subtype:  model.SubtypeContinuousDriving,
			MaxValue: fptr(4),
			Unit:     model.UnitHours,
			Active:   true,
		},
	}

	a := NewAccessor(ruleSet, StandardDefaults())
	v, ok := a.ContinuousDrivingHours()
	if !ok || v != 4 {
		t.Errorf("ContinuousDrivingHours = %v,%v, 期望 4,true", v, ok)
	}
}
