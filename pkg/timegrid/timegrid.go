// Package timegrid 提供运营日时间网格
//
// 运营日窗口为 04:00 至次日 01:00（记为 25:00），以 15 分钟为粒度切分。
// 所有时间统一换算为距零点的分钟数，04:00 之前的时间视为次日并 +1440。
// 引擎各组件的时间运算必须经由本包完成；跨午夜时字符串比较不可靠，
// 禁止混用原始字符串顺序与分钟数运算。
package timegrid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/banci/banci/pkg/errors"
)

const (
	// StepMinutes 时段粒度（分钟）
	StepMinutes = 15

	// DayStart 运营日起点 04:00
	DayStart = 4 * 60

	// DayEnd 运营日终点 25:00（次日 01:00）
	DayEnd = 25 * 60

	// IntervalCount 全天时段数
	IntervalCount = (DayEnd - DayStart) / StepMinutes
)

// ParseClock 解析 "HH:MM" 为距零点的分钟数。
// 04:00 之前的时间视为次日，返回值 +1440。
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, errors.InvalidTime(s, "格式应为 HH:MM")
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, errors.InvalidTime(s, "小时不是数字")
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, errors.InvalidTime(s, "分钟不是数字")
	}

	if hour < 0 || hour > 27 {
		return 0, errors.InvalidTime(s, "小时超出范围")
	}
	if minute < 0 || minute > 59 {
		return 0, errors.InvalidTime(s, "分钟超出范围")
	}

	total := hour*60 + minute
	if total < DayStart {
		total += 24 * 60
	}
	return total, nil
}

// FormatMinutes 将分钟数格式化回 "HH:MM"（跨日值取模）
func FormatMinutes(m int) string {
	m = ((m % 1440) + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FloorToStep 向下对齐到 15 分钟网格（入参为非负分钟数）
func FloorToStep(m int) int {
	return m - m%StepMinutes
}

// CeilToStep 向上对齐到 15 分钟网格
func CeilToStep(m int) int {
	if m%StepMinutes == 0 {
		return m
	}
	return FloorToStep(m) + StepMinutes
}

// IsAligned 检查分钟数是否落在网格上
func IsAligned(m int) bool {
	return m%StepMinutes == 0
}

// Clamp 将分钟数夹到运营日窗口 [04:00, 25:00)
func Clamp(m int) int {
	if m < DayStart {
		return DayStart
	}
	if m >= DayEnd {
		return DayEnd
	}
	return m
}

// InWindow 检查时段起点是否在运营日窗口内
func InWindow(m int) bool {
	return m >= DayStart && m < DayEnd
}

// IntervalStarts 返回全天全部时段起点的有序序列（240, 255, …, 1485）
func IntervalStarts() []int {
	starts := make([]int, 0, IntervalCount)
	for m := DayStart; m < DayEnd; m += StepMinutes {
		starts = append(starts, m)
	}
	return starts
}

// IntervalIndex 返回时段起点在全天序列中的下标；不在网格上时返回 false
func IntervalIndex(m int) (int, bool) {
	if !InWindow(m) || !IsAligned(m) {
		return 0, false
	}
	return (m - DayStart) / StepMinutes, true
}

// RangeMinutes 返回 [start, end) 覆盖的分钟数
func RangeMinutes(start, end int) int {
	if end <= start {
		return 0
	}
	return end - start
}
