// Package compliance 提供单个班次的劳动规则校验
package compliance

import (
	"fmt"

	"github.com/banci/banci/pkg/model"
	"github.com/banci/banci/pkg/rules"
	"github.com/banci/banci/pkg/timegrid"
)

// Check 校验班次时间安排是否符合规则集，返回违规列表。
// 纯函数：不修改入参，不产生副作用；无违规时返回空列表。
func Check(shift *model.Shift, acc *rules.Accessor) []model.Violation {
	violations := make([]model.Violation, 0)

	hours := shift.DurationHours()

	// 班次时长下限
	minHours := acc.MinShiftHours()
	if hours < minHours {
		violations = append(violations, newViolation(
			acc.MinShiftRule(), "单班最短时长",
			fmt.Sprintf("班次时长 %.2f 小时低于下限 %.2f 小时", hours, minHours),
		))
	}

	// 班次时长上限
	maxHours := acc.MaxShiftHours()
	if hours > maxHours {
		violations = append(violations, newViolation(
			acc.MaxShiftRule(), "单班最长时长",
			fmt.Sprintf("班次时长 %.2f 小时超出上限 %.2f 小时", hours, maxHours),
		))
	}

	// 超过触发时长必须安排用餐休息
	threshold := acc.MealBreakThresholdHours()
	if hours > threshold {
		brk := firstBreak(shift)
		if brk == nil {
			violations = append(violations, newViolation(
				acc.MealBreakThresholdRule(), "用餐休息触发时长",
				fmt.Sprintf("班次时长 %.2f 小时超过 %.2f 小时，必须安排用餐休息", hours, threshold),
			))
		} else {
			violations = append(violations, checkBreakPlacement(shift, brk, acc)...)
		}
	}

	// 首次休息前的连续驾驶时长
	if limit, ok := acc.ContinuousDrivingHours(); ok {
		driving := hours
		if brk := firstBreak(shift); brk != nil {
			driving = float64(brk.StartMinute-shift.StartMinute) / 60.0
		}
		if driving > limit {
			violations = append(violations, newViolation(
				acc.ContinuousDrivingRule(), "连续驾驶上限",
				fmt.Sprintf("休息前连续驾驶 %.2f 小时超出上限 %.2f 小时", driving, limit),
			))
		}
	}

	return violations
}

// Apply 执行校验并把结果写入班次
func Apply(shift *model.Shift, acc *rules.Accessor) {
	shift.SetCompliance(Check(shift, acc))
}

// checkBreakPlacement 校验休息窗口的位置
func checkBreakPlacement(shift *model.Shift, brk *model.BreakWindow, acc *rules.Accessor) []model.Violation {
	var violations []model.Violation

	// 休息必须完整落在班次内
	if brk.StartMinute < shift.StartMinute || brk.EndMinute > shift.EndMinute {
		violations = append(violations, newViolation(
			acc.MealBreakThresholdRule(), "用餐休息触发时长",
			fmt.Sprintf("休息窗口 %s-%s 超出班次范围 %s-%s",
				timegrid.FormatMinutes(brk.StartMinute), timegrid.FormatMinutes(brk.EndMinute),
				timegrid.FormatMinutes(shift.StartMinute), timegrid.FormatMinutes(shift.EndMinute)),
		))
	}

	// 休息开始不得晚于最晚开始偏移
	latest := shift.StartMinute + int(acc.MealBreakLatestStartHours()*60)
	if brk.StartMinute > latest {
		violations = append(violations, newViolation(
			acc.MealBreakLatestStartRule(), "用餐休息最晚开始",
			fmt.Sprintf("休息开始 %s 晚于最晚允许时间 %s",
				timegrid.FormatMinutes(brk.StartMinute), timegrid.FormatMinutes(latest)),
		))
	}

	return violations
}

// firstBreak 返回班次内最早开始的休息窗口
func firstBreak(shift *model.Shift) *model.BreakWindow {
	brk := shift.Break
	if shift.MealBreak != nil && (brk == nil || shift.MealBreak.StartMinute < brk.StartMinute) {
		brk = shift.MealBreak
	}
	return brk
}

// newViolation 构造违规记录；规则缺失时使用缺省名称
func newViolation(rule *model.LaborRule, fallbackName, message string) model.Violation {
	v := model.Violation{
		RuleName: fallbackName,
		Severity: model.SeverityError,
		Message:  message,
	}
	if rule != nil {
		v.RuleID = rule.ID.String()
		v.RuleName = rule.Name
		if rule.Type == model.RulePreferred {
			v.Severity = model.SeverityWarning
		}
	}
	return v
}
