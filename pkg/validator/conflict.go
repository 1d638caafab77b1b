// Package validator 提供班次集合的结构校验
package validator

import (
	"fmt"
	"sort"

	"github.com/banci/banci/pkg/model"
	"github.com/banci/banci/pkg/timegrid"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictDuplicateCode ConflictType = "duplicate_code" // 班次编号重复
	ConflictBreakOutside  ConflictType = "break_outside"  // 休息越出班次
	ConflictOutsideDay    ConflictType = "outside_day"    // 越出服务日窗口
	ConflictMisaligned    ConflictType = "misaligned"     // 未对齐网格
	ConflictZeroVehicles  ConflictType = "zero_vehicles"  // 车辆数为零
)

// Conflict 冲突信息
type Conflict struct {
	Type     ConflictType `json:"type"`
	Severity string       `json:"severity"` // error/warning
	Code     string       `json:"code"`
	Message  string       `json:"message"`
}

// Detect 检查班次集合的结构问题。
// 合规（时长、休息规则）由 compliance 包单独检查，
// 这里只管边界与一致性。
func Detect(shifts []*model.Shift) []Conflict {
	var conflicts []Conflict

	seen := make(map[string]bool)
	sorted := make([]*model.Shift, len(shifts))
	copy(sorted, shifts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Code < sorted[j].Code
	})

	for _, s := range sorted {
		if s.Code != "" && seen[s.Code] {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictDuplicateCode,
				Severity: "error",
				Code:     s.Code,
				Message:  fmt.Sprintf("班次编号 %s 重复", s.Code),
			})
		}
		seen[s.Code] = true

		if s.StartMinute < timegrid.DayStart || s.EndMinute > timegrid.DayEnd {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictOutsideDay,
				Severity: "error",
				Code:     s.Code,
				Message: fmt.Sprintf("班次 %s (%s-%s) 越出服务日窗口",
					s.Code, timegrid.FormatMinutes(s.StartMinute), timegrid.FormatMinutes(s.EndMinute)),
			})
		}

		if !timegrid.IsAligned(s.StartMinute) || !timegrid.IsAligned(s.EndMinute) {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictMisaligned,
				Severity: "warning",
				Code:     s.Code,
				Message:  fmt.Sprintf("班次 %s 的边界未对齐15分钟网格", s.Code),
			})
		}

		if s.VehicleCount <= 0 {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictZeroVehicles,
				Severity: "warning",
				Code:     s.Code,
				Message:  fmt.Sprintf("班次 %s 未配置车辆数", s.Code),
			})
		}

		for _, brk := range []*model.BreakWindow{s.Break, s.MealBreak} {
			if brk == nil {
				continue
			}
			if brk.StartMinute < s.StartMinute || brk.EndMinute > s.EndMinute {
				conflicts = append(conflicts, Conflict{
					Type:     ConflictBreakOutside,
					Severity: "error",
					Code:     s.Code,
					Message: fmt.Sprintf("班次 %s 的休息 (%s-%s) 越出班次窗口",
						s.Code, timegrid.FormatMinutes(brk.StartMinute), timegrid.FormatMinutes(brk.EndMinute)),
				})
			}
		}
	}

	return conflicts
}
