// Package solver 提供基于成本收益的贪心候选求解器
package solver

import (
	"fmt"

	"github.com/banci/banci/pkg/model"
	"github.com/banci/banci/pkg/rules"
	"github.com/banci/banci/pkg/scheduler/generator"
	"github.com/banci/banci/pkg/timegrid"
)

// CandidateShift 候选班次：既有班次或其平移变体
type CandidateShift struct {
	ID       string       `json:"id"`
	Shift    *model.Shift `json:"shift"`
	Existing bool         `json:"existing"`
}

// DefaultOffsets 变体平移量（分钟），与时段网格对齐
var DefaultOffsets = []int{-45, -30, -15, 0, 15, 30, 45}

// FactoryOptions 候选工厂选项
type FactoryOptions struct {
	// Existing 标记输入班次为既有班次（选中成本更低）
	Existing bool

	// EnableVariants 是否展开平移变体
	EnableVariants bool

	// Offsets 起止平移量，空则使用 DefaultOffsets
	Offsets []int
}

// BuildCandidates 把班次展开为合规的候选集合。
// 原始班次始终保留；变体按起止平移量组合生成，越界时夹回
// 服务日窗口，时长越限或强制休息放不下的变体被丢弃。
// 按 (起点, 终点, 既有标记) 去重。
func BuildCandidates(shift *model.Shift, opts FactoryOptions, acc *rules.Accessor) []CandidateShift {
	offsets := opts.Offsets
	if len(offsets) == 0 {
		offsets = DefaultOffsets
	}

	type key struct {
		start, end int
		existing   bool
	}
	seen := make(map[key]bool)

	base := CandidateShift{
		ID:       candidateID(shift.Code, shift.StartMinute, shift.EndMinute),
		Shift:    shift,
		Existing: opts.Existing,
	}
	seen[key{shift.StartMinute, shift.EndMinute, opts.Existing}] = true
	candidates := []CandidateShift{base}

	if !opts.EnableVariants {
		return candidates
	}

	minMinutes := int(acc.MinShiftHours() * 60)
	maxMinutes := int(acc.MaxShiftHours() * 60)

	for _, so := range offsets {
		for _, eo := range offsets {
			if so == 0 && eo == 0 {
				continue
			}

			start := timegrid.Clamp(timegrid.FloorToStep(shift.StartMinute + so))
			end := timegrid.Clamp(timegrid.FloorToStep(shift.EndMinute + eo))
			dur := end - start
			if dur < minMinutes || dur > maxMinutes {
				continue
			}

			k := key{start, end, false}
			if seen[k] {
				continue
			}

			variant := shift.Clone()
			variant.StartMinute = start
			variant.EndMinute = end
			variant.TotalHours = float64(dur) / 60.0
			variant.Break = relocatedBreak(shift, start, end, acc)
			variant.MealBreak = nil

			// 需要强制休息却放不下的变体不可用
			if float64(dur)/60.0 > acc.MealBreakThresholdHours() && variant.Break == nil {
				continue
			}

			seen[k] = true
			candidates = append(candidates, CandidateShift{
				ID:       candidateID(shift.Code, start, end),
				Shift:    variant,
				Existing: false,
			})
		}
	}

	return candidates
}

// relocatedBreak 优先保持休息相对班次起点的偏移，放不下或违反
// 最晚开始约束时重新推导位置
func relocatedBreak(src *model.Shift, start, end int, acc *rules.Accessor) *model.BreakWindow {
	if src.Break != nil {
		offset := src.Break.StartMinute - src.StartMinute
		dur := src.Break.DurationMinutes
		bs := start + offset

		fits := bs >= start+timegrid.StepMinutes && bs+dur <= end-timegrid.StepMinutes
		if fits && float64(end-start)/60.0 > acc.MealBreakThresholdHours() {
			fits = bs <= start+int(acc.MealBreakLatestStartHours()*60)
		}
		if fits {
			return &model.BreakWindow{StartMinute: bs, EndMinute: bs + dur, DurationMinutes: dur}
		}
	}
	return generator.PlaceBreak(start, end, acc)
}

func candidateID(code string, start, end int) string {
	return fmt.Sprintf("%s@%d-%d", code, start, end)
}
