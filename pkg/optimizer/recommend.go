package optimizer

import (
	"github.com/google/uuid"

	"github.com/banci/banci/pkg/model"
)

// RecommendationType 建议类型
type RecommendationType string

const (
	RecommendExtendShift     RecommendationType = "extend_shift"     // 延长既有班次
	RecommendNewShift        RecommendationType = "new_shift"        // 新增班次
	RecommendBreakAdjustment RecommendationType = "break_adjustment" // 调整休息位置
)

// Priority 建议优先级
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ImpactEntry 建议对单个 时段 × 区域 的覆盖增量。
// 预览端可把一组建议的增量叠加到时间轴副本上重算覆盖。
type ImpactEntry struct {
	StartMinute int        `json:"start_minute"`
	Zone        model.Zone `json:"zone"`
	Gain        int        `json:"gain"`
}

// Recommendation 整改建议
type Recommendation struct {
	ID       uuid.UUID          `json:"id"`
	Type     RecommendationType `json:"type"`
	Priority Priority           `json:"priority"`
	Block    model.DeficitBlock `json:"block"`

	// ShiftCodes 受影响的班次编号
	ShiftCodes []string `json:"shift_codes,omitempty"`

	Message string `json:"message"`

	// 延长班次：新的班次边界
	NewStartMinute *int `json:"new_start_minute,omitempty"`
	NewEndMinute   *int `json:"new_end_minute,omitempty"`

	// 调整休息：新的休息窗口
	NewBreak *model.BreakWindow `json:"new_break,omitempty"`

	// 新增班次：建议的班次
	ProposedShift *model.Shift `json:"proposed_shift,omitempty"`

	Impact []ImpactEntry `json:"impact"`
}

// priorityFor 计算建议优先级：峰值缺口 ≥ 2 或新增班次为 high，其余 medium
func priorityFor(block model.DeficitBlock, recType RecommendationType) Priority {
	if block.PeakShortfall >= 2 || recType == RecommendNewShift {
		return PriorityHigh
	}
	return PriorityMedium
}

// Totals 建议汇总
type Totals struct {
	DeficitBlocks     int     `json:"deficit_blocks"`
	VehicleHoursShort float64 `json:"vehicle_hours_short"`
	PeakShortfall     int     `json:"peak_shortfall"`
	HighPriority      int     `json:"high_priority"`
	Recommendations   int     `json:"recommendations"`
}

// Insights 缺口分析结果
type Insights struct {
	DayType         model.DayType        `json:"day_type"`
	Blocks          []model.DeficitBlock `json:"blocks"`
	Recommendations []Recommendation     `json:"recommendations"`
	Totals          Totals               `json:"totals"`
}
