// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/banci/banci/internal/constraints"
	"github.com/banci/banci/internal/repository"
	"github.com/banci/banci/pkg/errors"
	"github.com/banci/banci/pkg/model"
	"github.com/banci/banci/pkg/rules"
	"github.com/banci/banci/pkg/timegrid"
)

// IntervalInput 需求时段输入
type IntervalInput struct {
	DayType string `json:"day_type"`
	Start   string `json:"start"` // HH:MM，凌晨时刻写作 24:00-27:59
	North   int    `json:"north"`
	South   int    `json:"south"`
	Floater int    `json:"floater"`
}

// OperationalInput 运营时段输入
type OperationalInput struct {
	DayType string `json:"day_type"`
	Start   string `json:"start"`
	North   int    `json:"north"`
	South   int    `json:"south"`
	Floater int    `json:"floater"`
	OnBreak int    `json:"on_break"`
}

// BreakInput 休息窗口输入
type BreakInput struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ShiftInput 班次输入
type ShiftInput struct {
	Code         string      `json:"code"`
	Zone         string      `json:"zone"`
	DayType      string      `json:"day_type"`
	Start        string      `json:"start"`
	End          string      `json:"end"`
	Break        *BreakInput `json:"break,omitempty"`
	VehicleCount int         `json:"vehicle_count,omitempty"`
	Origin       string      `json:"origin,omitempty"`
}

// RuleInput 劳动规则输入
type RuleInput struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Type     string   `json:"type"`
	Subtype  string   `json:"subtype,omitempty"`
	MinValue *float64 `json:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Active   *bool    `json:"active,omitempty"`
}

// ShiftOutput 班次输出
type ShiftOutput struct {
	ID           string            `json:"id,omitempty"`
	Code         string            `json:"code"`
	Zone         string            `json:"zone"`
	DayType      string            `json:"day_type"`
	Start        string            `json:"start"`
	End          string            `json:"end"`
	StartMinute  int               `json:"start_minute"`
	EndMinute    int               `json:"end_minute"`
	TotalHours   float64           `json:"total_hours"`
	Break        *BreakOutput      `json:"break,omitempty"`
	Compliant    bool              `json:"compliant"`
	Violations   []model.Violation `json:"violations,omitempty"`
	Origin       string            `json:"origin"`
	VehicleCount int               `json:"vehicle_count"`
}

// BreakOutput 休息窗口输出
type BreakOutput struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationMinutes int    `json:"duration_minutes"`
}

// parseDayType 解析日类型
func parseDayType(value string) (model.DayType, *errors.AppError) {
	dt := model.DayType(value)
	if !dt.IsValid() {
		return "", errors.InvalidInput("day_type", "应为 weekday/saturday/sunday 之一")
	}
	return dt, nil
}

// parseClock 解析时刻，统一为应用错误
func parseClock(value string) (int, *errors.AppError) {
	minute, err := timegrid.ParseClock(value)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return 0, appErr
		}
		return 0, errors.Wrap(err, errors.CodeInvalidTime, "时间解析失败")
	}
	return minute, nil
}

// parseAlignedClock 解析并校验网格对齐的时刻。
// 允许 25:00 作为班次终点，时段起点另由 parseIntervalStart 收紧。
func parseAlignedClock(value string) (int, *errors.AppError) {
	minute, appErr := parseClock(value)
	if appErr != nil {
		return 0, appErr
	}
	if !timegrid.IsAligned(minute) {
		return 0, errors.InvalidTime(value, "未对齐15分钟网格")
	}
	if minute < timegrid.DayStart || minute > timegrid.DayEnd {
		return 0, errors.InvalidTime(value, "超出运营日窗口 04:00-25:00")
	}
	return minute, nil
}

// parseIntervalStart 解析时段起点：必须严格落在运营日窗口内
func parseIntervalStart(value string) (int, *errors.AppError) {
	minute, appErr := parseAlignedClock(value)
	if appErr != nil {
		return 0, appErr
	}
	if !timegrid.InWindow(minute) {
		return 0, errors.InvalidTime(value, "时段起点超出运营日窗口")
	}
	return minute, nil
}

// parseRequirements 解析需求时段列表
func parseRequirements(inputs []IntervalInput) ([]model.RequirementInterval, *errors.AppError) {
	reqs := make([]model.RequirementInterval, 0, len(inputs))
	for _, in := range inputs {
		dt, appErr := parseDayType(in.DayType)
		if appErr != nil {
			return nil, appErr
		}
		minute, appErr := parseIntervalStart(in.Start)
		if appErr != nil {
			return nil, appErr
		}
		reqs = append(reqs, model.RequirementInterval{
			DayType:     dt,
			StartMinute: minute,
			North:       in.North,
			South:       in.South,
			Floater:     in.Floater,
		})
	}
	return reqs, nil
}

// parseOperationals 解析运营时段列表
func parseOperationals(inputs []OperationalInput) ([]model.OperationalInterval, *errors.AppError) {
	ops := make([]model.OperationalInterval, 0, len(inputs))
	for _, in := range inputs {
		dt, appErr := parseDayType(in.DayType)
		if appErr != nil {
			return nil, appErr
		}
		minute, appErr := parseIntervalStart(in.Start)
		if appErr != nil {
			return nil, appErr
		}
		ops = append(ops, model.OperationalInterval{
			DayType:     dt,
			StartMinute: minute,
			North:       in.North,
			South:       in.South,
			Floater:     in.Floater,
			OnBreak:     in.OnBreak,
		})
	}
	return ops, nil
}

// parseShifts 解析班次列表
func parseShifts(inputs []ShiftInput) ([]*model.Shift, *errors.AppError) {
	shifts := make([]*model.Shift, 0, len(inputs))
	for _, in := range inputs {
		shift, appErr := parseShift(in)
		if appErr != nil {
			return nil, appErr
		}
		shifts = append(shifts, shift)
	}
	return shifts, nil
}

// parseShift 解析单条班次
func parseShift(in ShiftInput) (*model.Shift, *errors.AppError) {
	dt, appErr := parseDayType(in.DayType)
	if appErr != nil {
		return nil, appErr
	}

	zone := model.Zone(in.Zone)
	if !zone.IsValid() {
		return nil, errors.InvalidInput("zone", "应为 north/south/floater 之一")
	}

	start, appErr := parseAlignedClock(in.Start)
	if appErr != nil {
		return nil, appErr
	}
	end, appErr := parseAlignedClock(in.End)
	if appErr != nil {
		return nil, appErr
	}
	if end <= start {
		return nil, errors.InvalidTimeRange(in.Start, in.End)
	}

	origin := model.ShiftOrigin(in.Origin)
	if in.Origin == "" {
		origin = model.OriginImported
	}

	vehicles := in.VehicleCount
	if vehicles <= 0 {
		vehicles = 1
	}

	shift := &model.Shift{
		BaseModel:    model.NewBaseModel(),
		Code:         in.Code,
		Zone:         zone,
		DayType:      dt,
		StartMinute:  start,
		EndMinute:    end,
		TotalHours:   float64(end-start) / 60.0,
		Origin:       origin,
		VehicleCount: vehicles,
	}

	if in.Break != nil {
		// 休息终点不要求网格对齐（40分钟休息自然越格）
		bs, appErr := parseClock(in.Break.Start)
		if appErr != nil {
			return nil, appErr
		}
		be, appErr := parseClock(in.Break.End)
		if appErr != nil {
			return nil, appErr
		}
		if be <= bs {
			return nil, errors.InvalidTimeRange(in.Break.Start, in.Break.End)
		}
		shift.Break = &model.BreakWindow{StartMinute: bs, EndMinute: be, DurationMinutes: be - bs}
	}

	return shift, nil
}

// parseRules 解析规则列表
func parseRules(inputs []RuleInput) []model.LaborRule {
	ruleSet := make([]model.LaborRule, 0, len(inputs))
	for _, in := range inputs {
		active := true
		if in.Active != nil {
			active = *in.Active
		}
		unit := model.RuleUnit(in.Unit)
		if in.Unit == "" {
			unit = model.UnitHours
		}
		rule := model.LaborRule{
			BaseModel: model.NewBaseModel(),
			Name:      in.Name,
			Category:  model.RuleCategory(in.Category),
			Type:      model.RuleType(in.Type),
			Subtype:   model.RuleSubtype(in.Subtype),
			MinValue:  in.MinValue,
			MaxValue:  in.MaxValue,
			Unit:      unit,
			Active:    active,
		}
		ruleSet = append(ruleSet, rule)
	}
	return ruleSet
}

// buildAccessor 构建规则访问器：请求内联规则优先，
// 其次读取数据库中的启用规则，离线模式回退到标准规则
func buildAccessor(ctx context.Context, inputs []RuleInput, repo *repository.RuleRepository) (*rules.Accessor, *errors.AppError) {
	if len(inputs) > 0 {
		return checkAccessor(rules.NewAccessor(parseRules(inputs), rules.StandardDefaults()))
	}

	if repo != nil {
		stored, err := repo.ListActive(ctx)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "加载规则失败")
		}
		return checkAccessor(rules.NewAccessor(stored, rules.StandardDefaults()))
	}

	return checkAccessor(rules.NewAccessor(constraints.StandardRules(), rules.StandardDefaults()))
}

// checkAccessor 校验规则集自身可行：时长边界必须构成非空区间
func checkAccessor(acc *rules.Accessor) (*rules.Accessor, *errors.AppError) {
	if acc.MinShiftHours() > acc.MaxShiftHours() {
		return nil, errors.InfeasibleRuleSet(fmt.Sprintf(
			"最短班次 %.2f 小时大于最长班次 %.2f 小时",
			acc.MinShiftHours(), acc.MaxShiftHours()))
	}
	return acc, nil
}

// toShiftOutput 转换班次为输出格式
func toShiftOutput(s *model.Shift) ShiftOutput {
	out := ShiftOutput{
		ID:           s.ID.String(),
		Code:         s.Code,
		Zone:         string(s.Zone),
		DayType:      string(s.DayType),
		Start:        timegrid.FormatMinutes(s.StartMinute),
		End:          timegrid.FormatMinutes(s.EndMinute),
		StartMinute:  s.StartMinute,
		EndMinute:    s.EndMinute,
		TotalHours:   s.TotalHours,
		Compliant:    s.Compliant,
		Violations:   s.Violations,
		Origin:       string(s.Origin),
		VehicleCount: s.VehicleCount,
	}
	if s.Break != nil {
		out.Break = &BreakOutput{
			Start:           timegrid.FormatMinutes(s.Break.StartMinute),
			End:             timegrid.FormatMinutes(s.Break.EndMinute),
			DurationMinutes: s.Break.DurationMinutes,
		}
	}
	return out
}

// toShiftOutputs 批量转换班次
func toShiftOutputs(shifts []*model.Shift) []ShiftOutput {
	outputs := make([]ShiftOutput, 0, len(shifts))
	for _, s := range shifts {
		outputs = append(outputs, toShiftOutput(s))
	}
	return outputs
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}
