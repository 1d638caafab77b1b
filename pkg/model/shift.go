package model

// ShiftOrigin 班次来源
type ShiftOrigin string

const (
	OriginImported  ShiftOrigin = "imported"  // 外部导入
	OriginManual    ShiftOrigin = "manual"    // 手工录入
	OriginOptimized ShiftOrigin = "optimized" // 引擎生成
)

// ViolationSeverity 违规严重级别
type ViolationSeverity string

const (
	SeverityError   ViolationSeverity = "error"   // 强制规则违规
	SeverityWarning ViolationSeverity = "warning" // 建议规则提醒
)

// Violation 劳动规则违规
type Violation struct {
	RuleID   string            `json:"rule_id,omitempty"`
	RuleName string            `json:"rule_name"`
	Severity ViolationSeverity `json:"severity"`
	Message  string            `json:"message"`
}

// BreakWindow 休息窗口（分钟均为跨日修正后的值）
type BreakWindow struct {
	StartMinute     int `json:"start_minute"`
	EndMinute       int `json:"end_minute"`
	DurationMinutes int `json:"duration_minutes"`
}

// Shift 班次定义
type Shift struct {
	BaseModel
	Code         string       `json:"code" db:"code"`
	Zone         Zone         `json:"zone" db:"zone"`
	DayType      DayType      `json:"day_type" db:"day_type"`
	StartMinute  int          `json:"start_minute" db:"start_minute"`
	EndMinute    int          `json:"end_minute" db:"end_minute"` // 可跨午夜（>1440）
	Break        *BreakWindow `json:"break,omitempty" db:"-"`
	MealBreak    *BreakWindow `json:"meal_break,omitempty" db:"-"`
	TotalHours   float64      `json:"total_hours" db:"total_hours"`
	Compliant    bool         `json:"compliant" db:"compliant"`
	Violations   []Violation  `json:"violations,omitempty" db:"-"`
	Origin       ShiftOrigin  `json:"origin" db:"origin"`
	VehicleCount int          `json:"vehicle_count" db:"vehicle_count"` // 车辆数倍率，默认1
}

// DurationMinutes 返回班次时长（分钟）
func (s *Shift) DurationMinutes() int {
	return s.EndMinute - s.StartMinute
}

// DurationHours 返回班次时长（小时）
func (s *Shift) DurationHours() float64 {
	return float64(s.DurationMinutes()) / 60.0
}

// Covers 检查班次是否覆盖指定时段起点
func (s *Shift) Covers(minute int) bool {
	return minute >= s.StartMinute && minute < s.EndMinute
}

// OnBreakAt 检查指定时段起点是否处于休息窗口内
func (s *Shift) OnBreakAt(minute int) bool {
	if s.Break != nil && minute >= s.Break.StartMinute && minute < s.Break.EndMinute {
		return true
	}
	if s.MealBreak != nil && minute >= s.MealBreak.StartMinute && minute < s.MealBreak.EndMinute {
		return true
	}
	return false
}

// SetCompliance 写入合规检查结果（任何产出的班次必须携带新鲜的检查结果）
func (s *Shift) SetCompliance(violations []Violation) {
	s.Violations = violations
	s.Compliant = true
	for _, v := range violations {
		if v.Severity == SeverityError {
			s.Compliant = false
			break
		}
	}
}

// Clone 返回班次的深拷贝
func (s *Shift) Clone() *Shift {
	cp := *s
	if s.Break != nil {
		b := *s.Break
		cp.Break = &b
	}
	if s.MealBreak != nil {
		m := *s.MealBreak
		cp.MealBreak = &m
	}
	if s.Violations != nil {
		cp.Violations = make([]Violation, len(s.Violations))
		copy(cp.Violations, s.Violations)
	}
	return &cp
}
