// Package rules 提供劳动规则集的数值提取
package rules

// Defaults 规则缺省值。
// 所有组件共用同一份缺省配置，测试可整体覆盖。
type Defaults struct {
	MinShiftHours             float64 `json:"min_shift_hours"`
	MaxShiftHours             float64 `json:"max_shift_hours"`
	IdealShiftHours           float64 `json:"ideal_shift_hours"`
	MealBreakThresholdHours   float64 `json:"meal_break_threshold_hours"`
	MealBreakLatestStartHours float64 `json:"meal_break_latest_start_hours"`
	MealBreakMinutes          int     `json:"meal_break_minutes"`
	ContinuousDrivingHours    float64 `json:"continuous_driving_hours"` // 0 表示未配置
}

// StandardDefaults 返回标准缺省值
func StandardDefaults() Defaults {
	return Defaults{
		MinShiftHours:             5,
		MaxShiftHours:             9.75,
		IdealShiftHours:           7.2,
		MealBreakThresholdHours:   7.5,
		MealBreakLatestStartHours: 4.75,
		MealBreakMinutes:          40,
		ContinuousDrivingHours:    0,
	}
}
