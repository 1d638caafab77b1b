package rules

import (
	"github.com/banci/banci/pkg/model"
)

// Accessor 从劳动规则集中提取生效数值。
// 匹配顺序：类别 + 强度 + 子类标签（未打标签的导入规则按名称子串回退），
// 首个生效规则胜出；停用规则忽略；缺失时使用缺省值。
type Accessor struct {
	rules    []model.LaborRule
	defaults Defaults
}

// NewAccessor 创建规则访问器
func NewAccessor(rules []model.LaborRule, defaults Defaults) *Accessor {
	return &Accessor{rules: rules, defaults: defaults}
}

// Defaults 返回缺省配置
func (a *Accessor) Defaults() Defaults {
	return a.defaults
}

// Rules 返回规则集快照
func (a *Accessor) Rules() []model.LaborRule {
	return a.rules
}

// find 返回首个匹配的生效规则
func (a *Accessor) find(category model.RuleCategory, rtype model.RuleType, subtype model.RuleSubtype, hints ...string) *model.LaborRule {
	for i := range a.rules {
		r := &a.rules[i]
		if !r.Active {
			continue
		}
		if r.Category != category || r.Type != rtype {
			continue
		}
		if r.MatchesSubtype(subtype, hints...) {
			return r
		}
	}
	return nil
}

// MinShiftRule 返回最短班次时长规则（可能为 nil）
func (a *Accessor) MinShiftRule() *model.LaborRule {
	return a.find(model.RuleShiftLength, model.RuleRequired, model.SubtypeMinimum, "minimum", "最短")
}

// MaxShiftRule 返回最长班次时长规则（可能为 nil）
func (a *Accessor) MaxShiftRule() *model.LaborRule {
	return a.find(model.RuleShiftLength, model.RuleRequired, model.SubtypeMaximum, "maximum", "最长")
}

// IdealShiftRule 返回理想班次时长规则（建议级，可能为 nil）
func (a *Accessor) IdealShiftRule() *model.LaborRule {
	return a.find(model.RuleShiftLength, model.RulePreferred, model.SubtypeIdealDuration, "duration", "理想")
}

// MealBreakThresholdRule 返回用餐休息触发时长规则（可能为 nil）
func (a *Accessor) MealBreakThresholdRule() *model.LaborRule {
	return a.find(model.RuleBreaks, model.RuleRequired, model.SubtypeMealBreakThreshold, "meal break threshold", "threshold", "触发")
}

// MealBreakLatestStartRule 返回用餐休息最晚开始规则（可能为 nil）
func (a *Accessor) MealBreakLatestStartRule() *model.LaborRule {
	return a.find(model.RuleBreaks, model.RuleRequired, model.SubtypeMealBreakLatestStart, "latest start", "最晚")
}

// MealBreakDurationRule 返回用餐休息时长规则（可能为 nil）
func (a *Accessor) MealBreakDurationRule() *model.LaborRule {
	return a.find(model.RuleBreaks, model.RuleRequired, model.SubtypeMealBreakDuration, "duration", "时长")
}

// ContinuousDrivingRule 返回连续驾驶时长规则（可能为 nil）
func (a *Accessor) ContinuousDrivingRule() *model.LaborRule {
	return a.find(model.RuleRestPeriods, model.RuleRequired, model.SubtypeContinuousDriving, "continuous", "连续驾驶")
}

// MinShiftHours 返回最短班次时长（小时）
func (a *Accessor) MinShiftHours() float64 {
	if r := a.MinShiftRule(); r != nil {
		if v, ok := r.MinHours(); ok {
			return v
		}
		if v, ok := r.MaxHours(); ok {
			return v
		}
	}
	return a.defaults.MinShiftHours
}

// MaxShiftHours 返回最长班次时长（小时）
func (a *Accessor) MaxShiftHours() float64 {
	if r := a.MaxShiftRule(); r != nil {
		if v, ok := r.MaxHours(); ok {
			return v
		}
		if v, ok := r.MinHours(); ok {
			return v
		}
	}
	return a.defaults.MaxShiftHours
}

// IdealShiftHours 返回理想班次时长（小时）
func (a *Accessor) IdealShiftHours() float64 {
	if r := a.IdealShiftRule(); r != nil {
		if v, ok := r.MaxHours(); ok {
			return v
		}
		if v, ok := r.MinHours(); ok {
			return v
		}
	}
	return a.defaults.IdealShiftHours
}

// MealBreakThresholdHours 返回触发强制休息的班次时长（小时）
func (a *Accessor) MealBreakThresholdHours() float64 {
	if r := a.MealBreakThresholdRule(); r != nil {
		if v, ok := r.MaxHours(); ok {
			return v
		}
		if v, ok := r.MinHours(); ok {
			return v
		}
	}
	return a.defaults.MealBreakThresholdHours
}

// MealBreakLatestStartHours 返回休息最晚开始偏移（距班次开始的小时数）
func (a *Accessor) MealBreakLatestStartHours() float64 {
	if r := a.MealBreakLatestStartRule(); r != nil {
		if v, ok := r.MaxHours(); ok {
			return v
		}
		if v, ok := r.MinHours(); ok {
			return v
		}
	}
	return a.defaults.MealBreakLatestStartHours
}

// MealBreakMinutes 返回用餐休息时长（分钟）
func (a *Accessor) MealBreakMinutes() int {
	if r := a.MealBreakDurationRule(); r != nil {
		if v, ok := r.MinHours(); ok {
			return int(v * 60)
		}
		if v, ok := r.MaxHours(); ok {
			return int(v * 60)
		}
	}
	return a.defaults.MealBreakMinutes
}

// ContinuousDrivingHours 返回连续驾驶上限（小时）；未配置时返回 false
func (a *Accessor) ContinuousDrivingHours() (float64, bool) {
	if r := a.ContinuousDrivingRule(); r != nil {
		if v, ok := r.MaxHours(); ok {
			return v, true
		}
	}
	if a.defaults.ContinuousDrivingHours > 0 {
		return a.defaults.ContinuousDrivingHours, true
	}
	return 0, false
}
