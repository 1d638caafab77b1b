package generator

import (
	"github.com/banci/banci/pkg/model"
	"github.com/banci/banci/pkg/rules"
	"github.com/banci/banci/pkg/timegrid"
)

// PlaceBreak 为 [start, end) 的班次计算用餐休息窗口。
// 仅当总时长 ≥ 触发时长 + 休息时长 时才安排；
// 位置取班次中点，不晚于最晚开始偏移，并夹在班次边界内。
// 不需要休息时返回 nil。
func PlaceBreak(start, end int, acc *rules.Accessor) *model.BreakWindow {
	duration := end - start
	breakMinutes := acc.MealBreakMinutes()
	thresholdMinutes := int(acc.MealBreakThresholdHours() * 60)

	if duration < thresholdMinutes+breakMinutes {
		return nil
	}

	// 中点放置，对齐网格
	bs := timegrid.FloorToStep(start + (duration-breakMinutes)/2)

	// 不晚于最晚开始偏移
	latest := timegrid.FloorToStep(start + int(acc.MealBreakLatestStartHours()*60))
	if bs > latest {
		bs = latest
	}

	// 夹在班次边界内
	if bs+breakMinutes > end {
		bs = timegrid.FloorToStep(end - breakMinutes)
	}
	if bs < start+timegrid.StepMinutes {
		bs = start + timegrid.StepMinutes
	}

	return &model.BreakWindow{
		StartMinute:     bs,
		EndMinute:       bs + breakMinutes,
		DurationMinutes: breakMinutes,
	}
}
