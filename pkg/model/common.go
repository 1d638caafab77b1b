// Package model 定义班次覆盖引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// Zone 运营区域
type Zone string

const (
	ZoneNorth   Zone = "north"   // 北区
	ZoneSouth   Zone = "south"   // 南区
	ZoneFloater Zone = "floater" // 机动
)

// Letter 返回区域的单字母代号（用于班次编号）
func (z Zone) Letter() string {
	switch z {
	case ZoneNorth:
		return "N"
	case ZoneSouth:
		return "S"
	case ZoneFloater:
		return "F"
	default:
		return "X"
	}
}

// IsValid 检查区域是否合法
func (z Zone) IsValid() bool {
	return z == ZoneNorth || z == ZoneSouth || z == ZoneFloater
}

// AllZones 返回全部区域（顺序固定，保证结果可复现）
func AllZones() []Zone {
	return []Zone{ZoneNorth, ZoneSouth, ZoneFloater}
}

// DayType 运营日类型（各类型独立排班）
type DayType string

const (
	DayWeekday  DayType = "weekday"  // 工作日
	DaySaturday DayType = "saturday" // 周六
	DaySunday   DayType = "sunday"   // 周日
)

// Short 返回日类型缩写（用于班次编号）
func (d DayType) Short() string {
	switch d {
	case DayWeekday:
		return "WD"
	case DaySaturday:
		return "SA"
	case DaySunday:
		return "SU"
	default:
		return "XX"
	}
}

// IsValid 检查日类型是否合法
func (d DayType) IsValid() bool {
	return d == DayWeekday || d == DaySaturday || d == DaySunday
}

// AllDayTypes 返回全部日类型
func AllDayTypes() []DayType {
	return []DayType{DayWeekday, DaySaturday, DaySunday}
}

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JSONMap 用于存储 JSONB 数据
type JSONMap map[string]interface{}
