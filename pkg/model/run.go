package model

// RunKind 排班运行类型
type RunKind string

const (
	RunGenerate RunKind = "generate" // 自动生成
	RunTrim     RunKind = "trim"     // 裁剪
	RunSolve    RunKind = "solve"    // 贪心求解
)

// ScheduleRun 一次排班运行的持久化记录。
// Payload 保存运行摘要（警告、目标值等），班次单独入库。
type ScheduleRun struct {
	BaseModel
	DayType      DayType `json:"day_type" db:"day_type"`
	Kind         RunKind `json:"kind" db:"kind"`
	ShiftCount   int     `json:"shift_count" db:"shift_count"`
	WarningCount int     `json:"warning_count" db:"warning_count"`
	Payload      JSONMap `json:"payload,omitempty" db:"payload"`

	// Shifts 运行产出的班次，查询时联表加载
	Shifts []*Shift `json:"shifts,omitempty" db:"-"`
}
