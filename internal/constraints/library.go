// Package constraints 劳动规则库
package constraints

import (
	"github.com/banci/banci/pkg/model"
)

// RuleParam 规则参数定义
type RuleParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, float
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
	Min         string `json:"min,omitempty"`
	Max         string `json:"max,omitempty"`
}

// RuleDefinition 规则定义：供前端配置界面展示可用的劳动规则
type RuleDefinition struct {
	Subtype     model.RuleSubtype  `json:"subtype"`
	DisplayName string             `json:"display_name"`
	Category    model.RuleCategory `json:"category"`
	Type        model.RuleType     `json:"type"`
	Unit        model.RuleUnit     `json:"unit"`
	Description string             `json:"description"`
	Params      []RuleParam        `json:"params"`
}

// LibraryResponse 规则库响应
type LibraryResponse struct {
	Library []RuleDefinition `json:"library"`
}

// GetLibrary 获取完整的规则库
func GetLibrary() []RuleDefinition {
	return []RuleDefinition{
		{
			Subtype:     model.SubtypeMinimum,
			DisplayName: "单班最短时长",
			Category:    model.RuleShiftLength,
			Type:        model.RuleRequired,
			Unit:        model.UnitHours,
			Description: "单个班次的最短工作时长，短于该值的班次视为违规。",
			Params: []RuleParam{
				{Name: "min_value", Type: "float", Description: "最短时长(小时)", Default: "5", Min: "3", Max: "8"},
			},
		},
		{
			Subtype:     model.SubtypeMaximum,
			DisplayName: "单班最长时长",
			Category:    model.RuleShiftLength,
			Type:        model.RuleRequired,
			Unit:        model.UnitHours,
			Description: "单个班次的最长工作时长，生成器在超限前拆分班次。",
			Params: []RuleParam{
				{Name: "max_value", Type: "float", Description: "最长时长(小时)", Default: "9.75", Min: "8", Max: "12"},
			},
		},
		{
			Subtype:     model.SubtypeIdealDuration,
			DisplayName: "理想班次时长",
			Category:    model.RuleShiftLength,
			Type:        model.RulePreferred,
			Unit:        model.UnitHours,
			Description: "新增班次的目标时长，求解与建议组件优先按该值开班。",
			Params: []RuleParam{
				{Name: "max_value", Type: "float", Description: "理想时长(小时)", Default: "7.2", Min: "5", Max: "9.75"},
			},
		},
		{
			Subtype:     model.SubtypeMealBreakThreshold,
			DisplayName: "用餐休息触发时长",
			Category:    model.RuleBreaks,
			Type:        model.RuleRequired,
			Unit:        model.UnitHours,
			Description: "班次时长超过该值时必须安排用餐休息。",
			Params: []RuleParam{
				{Name: "max_value", Type: "float", Description: "触发时长(小时)", Default: "7.5", Min: "6", Max: "9"},
			},
		},
		{
			Subtype:     model.SubtypeMealBreakLatestStart,
			DisplayName: "用餐休息最晚开始",
			Category:    model.RuleBreaks,
			Type:        model.RuleRequired,
			Unit:        model.UnitHours,
			Description: "用餐休息相对班次起点的最晚开始偏移。",
			Params: []RuleParam{
				{Name: "max_value", Type: "float", Description: "最晚开始偏移(小时)", Default: "4.75", Min: "3", Max: "6"},
			},
		},
		{
			Subtype:     model.SubtypeMealBreakDuration,
			DisplayName: "用餐休息时长",
			Category:    model.RuleBreaks,
			Type:        model.RuleRequired,
			Unit:        model.UnitMinutes,
			Description: "单次用餐休息的时长。",
			Params: []RuleParam{
				{Name: "min_value", Type: "int", Description: "休息时长(分钟)", Default: "40", Min: "30", Max: "60"},
			},
		},
		{
			Subtype:     model.SubtypeContinuousDriving,
			DisplayName: "连续驾驶上限",
			Category:    model.RuleBreaks,
			Type:        model.RuleRequired,
			Unit:        model.UnitHours,
			Description: "首次休息前的连续驾驶时长上限，未配置时不检查。",
			Params: []RuleParam{
				{Name: "max_value", Type: "float", Description: "连续驾驶上限(小时)", Default: "", Min: "2", Max: "6"},
			},
		},
	}
}

// StandardRules 按规则库定义生成一套带缺省值的规则快照，
// 供初始化数据库或离线运行使用
func StandardRules() []model.LaborRule {
	f := func(v float64) *float64 { return &v }

	rules := []model.LaborRule{
		{
			Name: "单班最短时长", Category: model.RuleShiftLength, Type: model.RuleRequired,
			Subtype: model.SubtypeMinimum, MinValue: f(5), Unit: model.UnitHours, Active: true,
		},
		{
			Name: "单班最长时长", Category: model.RuleShiftLength, Type: model.RuleRequired,
			Subtype: model.SubtypeMaximum, MaxValue: f(9.75), Unit: model.UnitHours, Active: true,
		},
		{
			Name: "理想班次时长", Category: model.RuleShiftLength, Type: model.RulePreferred,
			Subtype: model.SubtypeIdealDuration, MaxValue: f(7.2), Unit: model.UnitHours, Active: true,
		},
		{
			Name: "用餐休息触发时长", Category: model.RuleBreaks, Type: model.RuleRequired,
			Subtype: model.SubtypeMealBreakThreshold, MaxValue: f(7.5), Unit: model.UnitHours, Active: true,
		},
		{
			Name: "用餐休息最晚开始", Category: model.RuleBreaks, Type: model.RuleRequired,
			Subtype: model.SubtypeMealBreakLatestStart, MaxValue: f(4.75), Unit: model.UnitHours, Active: true,
		},
		{
			Name: "用餐休息时长", Category: model.RuleBreaks, Type: model.RuleRequired,
			Subtype: model.SubtypeMealBreakDuration, MinValue: f(40), Unit: model.UnitMinutes, Active: true,
		},
	}

	for i := range rules {
		rules[i].BaseModel = model.NewBaseModel()
	}
	return rules
}
