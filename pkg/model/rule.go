package model

import "strings"

// RuleCategory 劳动规则类别
type RuleCategory string

const (
	RuleShiftLength RuleCategory = "shift_length" // 班次时长
	RuleBreaks      RuleCategory = "breaks"       // 休息
	RuleRestPeriods RuleCategory = "rest_periods" // 班间休息
)

// RuleType 规则强度
type RuleType string

const (
	RuleRequired  RuleType = "required"  // 强制（违反为 error）
	RulePreferred RuleType = "preferred" // 建议（违反为 warning）
)

// RuleUnit 数值单位
type RuleUnit string

const (
	UnitHours   RuleUnit = "hours"
	UnitMinutes RuleUnit = "minutes"
)

// RuleSubtype 规则子类标签。
// 显式标签优先于名称子串匹配，避免规则改名后静默失配。
type RuleSubtype string

const (
	SubtypeMinimum              RuleSubtype = "minimum"
	SubtypeMaximum              RuleSubtype = "maximum"
	SubtypeIdealDuration        RuleSubtype = "ideal_duration"
	SubtypeMealBreakThreshold   RuleSubtype = "meal_break_threshold"
	SubtypeMealBreakLatestStart RuleSubtype = "meal_break_latest_start"
	SubtypeMealBreakDuration    RuleSubtype = "meal_break_duration"
	SubtypeContinuousDriving    RuleSubtype = "continuous_driving"
)

// LaborRule 劳动规则。规则集为外部提供的快照，引擎不修改。
type LaborRule struct {
	BaseModel
	Name     string       `json:"name" db:"name"`
	Category RuleCategory `json:"category" db:"category"`
	Type     RuleType     `json:"type" db:"type"`
	Subtype  RuleSubtype  `json:"subtype,omitempty" db:"subtype"`
	MinValue *float64     `json:"min_value,omitempty" db:"min_value"`
	MaxValue *float64     `json:"max_value,omitempty" db:"max_value"`
	Unit     RuleUnit     `json:"unit,omitempty" db:"unit"`
	Active   bool         `json:"active" db:"active"`
}

// MatchesSubtype 检查规则是否匹配指定子类。
// 优先使用显式 Subtype 标签；未打标签的导入规则回退到名称子串匹配。
func (r *LaborRule) MatchesSubtype(subtype RuleSubtype, nameHints ...string) bool {
	if r.Subtype != "" {
		return r.Subtype == subtype
	}
	name := strings.ToLower(r.Name)
	for _, hint := range nameHints {
		if strings.Contains(name, strings.ToLower(hint)) {
			return true
		}
	}
	return false
}

// MinHours 返回按小时折算的下限值
func (r *LaborRule) MinHours() (float64, bool) {
	if r.MinValue == nil {
		return 0, false
	}
	return r.toHours(*r.MinValue), true
}

// MaxHours 返回按小时折算的上限值
func (r *LaborRule) MaxHours() (float64, bool) {
	if r.MaxValue == nil {
		return 0, false
	}
	return r.toHours(*r.MaxValue), true
}

// toHours 按单位折算为小时
func (r *LaborRule) toHours(v float64) float64 {
	if r.Unit == UnitMinutes {
		return v / 60.0
	}
	return v
}
