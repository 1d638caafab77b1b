package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/banci/banci/pkg/logger"
	"github.com/banci/banci/pkg/model"
	"github.com/banci/banci/pkg/rules"
	"github.com/banci/banci/pkg/scheduler/generator"
	"github.com/banci/banci/pkg/timegrid"
)

// Engine 缺口分析引擎
type Engine struct {
	acc *rules.Accessor
	log *logger.EngineLogger
}

// NewEngine 创建缺口分析引擎
func NewEngine(acc *rules.Accessor) *Engine {
	return &Engine{
		acc: acc,
		log: logger.NewEngineLogger("optimizer"),
	}
}

// Compute 识别缺口区块并逐块给出整改建议。
// 每个区块依次尝试：延长邻近班次 → 新增班次 → 调整休息位置。
// 输入时间轴与班次列表不被修改。
func (e *Engine) Compute(dayType model.DayType, timeline []model.CoverageInterval, shifts []*model.Shift) *Insights {
	blocks := DetectBlocks(dayType, timeline)

	insights := &Insights{
		DayType:         dayType,
		Blocks:          blocks,
		Recommendations: make([]Recommendation, 0),
	}

	newShiftSeq := 0
	for i, block := range blocks {
		// 延长邻近班次
		extendRecs := e.recommendExtensions(block, shifts)
		insights.Recommendations = append(insights.Recommendations, extendRecs...)

		// 延长未覆盖的缺口：新增班次
		shortfall := int(math.Ceil(float64(block.PeakShortfall))) - len(extendRecs)
		if shortfall > 0 {
			var next *model.DeficitBlock
			if i+1 < len(blocks) && blocks[i+1].Zone == block.Zone && blocks[i+1].StartMinute == block.EndMinute {
				next = &blocks[i+1]
			}
			newShiftSeq++
			insights.Recommendations = append(insights.Recommendations,
				e.recommendNewShift(block, next, newShiftSeq))
		}

		// 独立建议：休息窗口与缺口重叠的班次
		insights.Recommendations = append(insights.Recommendations,
			e.recommendBreakAdjustments(block, shifts)...)
	}

	// 汇总
	insights.Totals.DeficitBlocks = len(blocks)
	insights.Totals.Recommendations = len(insights.Recommendations)
	byZone := make(map[model.Zone]struct {
		count int
		hours float64
	})
	for _, b := range blocks {
		insights.Totals.VehicleHoursShort += b.VehicleHours
		if b.PeakShortfall > insights.Totals.PeakShortfall {
			insights.Totals.PeakShortfall = b.PeakShortfall
		}
		agg := byZone[b.Zone]
		agg.count++
		agg.hours += b.VehicleHours
		byZone[b.Zone] = agg
	}
	for _, r := range insights.Recommendations {
		if r.Priority == PriorityHigh {
			insights.Totals.HighPriority++
		}
	}
	for zone, agg := range byZone {
		e.log.DeficitDetected(string(dayType), string(zone), agg.count, agg.hours)
	}

	return insights
}

// extendCandidate 可延长的班次及其与区块的间隔
type extendCandidate struct {
	shift *model.Shift
	gap   int
	head  bool // true 表示向前延长（班次在区块之后）
}

// recommendExtensions 查找可延长覆盖区块的同区班次。
// 班次终点在区块起点前的缓冲窗口内（或起点在区块终点后的缓冲
// 窗口内），且延长后总时长不超上限。按间隔从小到大取，
// 最多取 ceil(峰值缺口) 个。
func (e *Engine) recommendExtensions(block model.DeficitBlock, shifts []*model.Shift) []Recommendation {
	buffer := extendBuffer(block.DurationMinutes)
	maxMinutes := int(e.acc.MaxShiftHours() * 60)

	var candidates []extendCandidate
	for _, s := range shifts {
		if s.Zone != block.Zone || s.DayType != block.DayType {
			continue
		}
		// 班次在区块之前：向后延长
		if gap := block.StartMinute - s.EndMinute; gap >= 0 && gap <= buffer {
			if block.EndMinute-s.StartMinute <= maxMinutes {
				candidates = append(candidates, extendCandidate{shift: s, gap: gap})
			}
			continue
		}
		// 班次在区块之后：向前延长
		if gap := s.StartMinute - block.EndMinute; gap >= 0 && gap <= buffer {
			if s.EndMinute-block.StartMinute <= maxMinutes {
				candidates = append(candidates, extendCandidate{shift: s, gap: gap, head: true})
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].gap != candidates[j].gap {
			return candidates[i].gap < candidates[j].gap
		}
		return candidates[i].shift.Code < candidates[j].shift.Code
	})

	limit := int(math.Ceil(float64(block.PeakShortfall)))
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	recs := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		newStart, newEnd := c.shift.StartMinute, c.shift.EndMinute
		var msg string
		if c.head {
			newStart = block.StartMinute
			msg = fmt.Sprintf("将班次 %s 提前到 %s 开始以覆盖缺口",
				c.shift.Code, timegrid.FormatMinutes(newStart))
		} else {
			newEnd = block.EndMinute
			msg = fmt.Sprintf("将班次 %s 延长到 %s 结束以覆盖缺口",
				c.shift.Code, timegrid.FormatMinutes(newEnd))
		}

		recs = append(recs, Recommendation{
			ID:             uuid.New(),
			Type:           RecommendExtendShift,
			Priority:       priorityFor(block, RecommendExtendShift),
			Block:          block,
			ShiftCodes:     []string{c.shift.Code},
			Message:        msg,
			NewStartMinute: &newStart,
			NewEndMinute:   &newEnd,
			Impact:         blockImpact(block, 1),
		})
	}
	return recs
}

// recommendNewShift 为延长未能覆盖的缺口提出新增班次。
// 班次时长取理想值并夹在 [下限, 上限] 内；紧邻的同区后续区块
// 在不超上限时一并覆盖。
func (e *Engine) recommendNewShift(block model.DeficitBlock, next *model.DeficitBlock, seq int) Recommendation {
	minMinutes := int(e.acc.MinShiftHours() * 60)
	maxMinutes := int(e.acc.MaxShiftHours() * 60)
	idealMinutes := timegrid.CeilToStep(int(e.acc.IdealShiftHours() * 60))

	start := block.StartMinute
	desiredEnd := block.EndMinute
	merged := false
	if next != nil && next.EndMinute-start <= maxMinutes {
		desiredEnd = next.EndMinute
		merged = true
	}

	length := idealMinutes
	if desiredEnd-start > length {
		length = desiredEnd - start
	}
	if length > maxMinutes {
		length = maxMinutes
	}
	if length < minMinutes {
		length = minMinutes
	}

	end := start + length
	if end > timegrid.DayEnd {
		end = timegrid.DayEnd
		start = end - length
		if start < timegrid.DayStart {
			start = timegrid.DayStart
		}
	}

	shift := &model.Shift{
		BaseModel:    model.NewBaseModel(),
		Code:         fmt.Sprintf("OPT-%s-%s%d", block.DayType.Short(), block.Zone.Letter(), seq),
		Zone:         block.Zone,
		DayType:      block.DayType,
		StartMinute:  start,
		EndMinute:    end,
		TotalHours:   float64(end-start) / 60.0,
		Origin:       model.OriginOptimized,
		VehicleCount: 1,
	}
	shift.Break = generator.PlaceBreak(start, end, e.acc)

	impact := blockImpact(block, 1)
	if merged {
		impact = append(impact, blockImpact(*next, 1)...)
	}

	msg := fmt.Sprintf("新增 %s 班次 %s-%s 覆盖缺口",
		zoneLabel(block.Zone), timegrid.FormatMinutes(start), timegrid.FormatMinutes(end))

	return Recommendation{
		ID:            uuid.New(),
		Type:          RecommendNewShift,
		Priority:      priorityFor(block, RecommendNewShift),
		Block:         block,
		ShiftCodes:    []string{shift.Code},
		Message:       msg,
		ProposedShift: shift,
		Impact:        impact,
	}
}

// recommendBreakAdjustments 为休息窗口压在缺口上的同区班次
// 提出移动休息的建议。先试离当前位置较近的空闲边缘，不行再试
// 另一侧；都无法清除重叠时放弃。
func (e *Engine) recommendBreakAdjustments(block model.DeficitBlock, shifts []*model.Shift) []Recommendation {
	var recs []Recommendation

	for _, s := range shifts {
		if s.Zone != block.Zone || s.DayType != block.DayType || s.Break == nil {
			continue
		}
		brk := s.Break
		if !overlaps(brk.StartMinute, brk.EndMinute, block.StartMinute, block.EndMinute) {
			continue
		}

		newBreak := e.relocateBreak(s, brk, block)
		if newBreak == nil {
			continue
		}

		// 原休息占用、且落在缺口内的时段恢复覆盖
		var impact []ImpactEntry
		for m := timegrid.FloorToStep(brk.StartMinute); m < brk.EndMinute; m += timegrid.StepMinutes {
			if m >= block.StartMinute && m < block.EndMinute {
				impact = append(impact, ImpactEntry{StartMinute: m, Zone: block.Zone, Gain: 1})
			}
		}
		// 新休息位置让出的时段
		for m := newBreak.StartMinute; m < newBreak.EndMinute; m += timegrid.StepMinutes {
			impact = append(impact, ImpactEntry{StartMinute: m, Zone: block.Zone, Gain: -1})
		}

		recs = append(recs, Recommendation{
			ID:         uuid.New(),
			Type:       RecommendBreakAdjustment,
			Priority:   priorityFor(block, RecommendBreakAdjustment),
			Block:      block,
			ShiftCodes: []string{s.Code},
			Message: fmt.Sprintf("将班次 %s 的休息移到 %s-%s 避开缺口",
				s.Code, timegrid.FormatMinutes(newBreak.StartMinute), timegrid.FormatMinutes(newBreak.EndMinute)),
			NewBreak: newBreak,
			Impact:   impact,
		})
	}

	return recs
}

// relocateBreak 在班次两端寻找能清除重叠的新休息位置
func (e *Engine) relocateBreak(s *model.Shift, brk *model.BreakWindow, block model.DeficitBlock) *model.BreakWindow {
	dur := brk.DurationMinutes

	early := s.StartMinute + timegrid.StepMinutes
	late := timegrid.FloorToStep(s.EndMinute - timegrid.StepMinutes - dur)

	// 需要强制休息的班次受最晚开始约束
	if s.DurationHours() > e.acc.MealBreakThresholdHours() {
		latest := timegrid.FloorToStep(s.StartMinute + int(e.acc.MealBreakLatestStartHours()*60))
		if late > latest {
			late = latest
		}
	}

	// 先试较近的边缘
	options := []int{early, late}
	if abs(brk.StartMinute-late) < abs(brk.StartMinute-early) {
		options = []int{late, early}
	}

	for _, bs := range options {
		if bs < s.StartMinute+timegrid.StepMinutes || bs+dur > s.EndMinute-timegrid.StepMinutes {
			continue
		}
		if overlaps(bs, bs+dur, block.StartMinute, block.EndMinute) {
			continue
		}
		return &model.BreakWindow{StartMinute: bs, EndMinute: bs + dur, DurationMinutes: dur}
	}
	return nil
}

// extendBuffer 缺口越长，允许延长的搜索缓冲越大，夹在 [60, 120] 分钟
func extendBuffer(blockMinutes int) int {
	if blockMinutes < 60 {
		return 60
	}
	if blockMinutes > 120 {
		return 120
	}
	return blockMinutes
}

// blockImpact 区块内全部时段按固定增量生成影响表
func blockImpact(block model.DeficitBlock, gain int) []ImpactEntry {
	var impact []ImpactEntry
	for m := block.StartMinute; m < block.EndMinute; m += timegrid.StepMinutes {
		impact = append(impact, ImpactEntry{StartMinute: m, Zone: block.Zone, Gain: gain})
	}
	return impact
}

// ApplyImpacts 把一组建议的覆盖增量叠加到时间轴副本上，
// 供预览端重算覆盖状态。入参时间轴不被修改。
func ApplyImpacts(timeline []model.CoverageInterval, recs []Recommendation) []model.CoverageInterval {
	cp := make([]model.CoverageInterval, len(timeline))
	copy(cp, timeline)

	index := make(map[int]int, len(cp))
	for i, ci := range cp {
		index[ci.StartMinute] = i
	}

	for _, rec := range recs {
		for _, entry := range rec.Impact {
			i, ok := index[entry.StartMinute]
			if !ok {
				continue
			}
			switch entry.Zone {
			case model.ZoneNorth:
				cp[i].NorthExcess += entry.Gain
			case model.ZoneSouth:
				cp[i].SouthExcess += entry.Gain
			case model.ZoneFloater:
				cp[i].FloaterExcess += entry.Gain
			}
			cp[i].TotalExcess += entry.Gain
			switch {
			case cp[i].TotalExcess < 0:
				cp[i].Status = model.StatusDeficit
			case cp[i].TotalExcess > 0:
				cp[i].Status = model.StatusExcess
			default:
				cp[i].Status = model.StatusBalanced
			}
		}
	}
	return cp
}

func zoneLabel(zone model.Zone) string {
	switch zone {
	case model.ZoneNorth:
		return "北区"
	case model.ZoneSouth:
		return "南区"
	case model.ZoneFloater:
		return "机动"
	default:
		return string(zone)
	}
}

func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
