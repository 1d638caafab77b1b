package handler

import (
	"encoding/json"
	"net/http"

	"github.com/banci/banci/internal/metrics"
	"github.com/banci/banci/internal/repository"
	"github.com/banci/banci/pkg/compliance"
	"github.com/banci/banci/pkg/coverage"
	"github.com/banci/banci/pkg/errors"
	"github.com/banci/banci/pkg/logger"
	"github.com/banci/banci/pkg/model"
	"github.com/banci/banci/pkg/scheduler/generator"
	"github.com/banci/banci/pkg/scheduler/trimmer"
	"github.com/banci/banci/pkg/validator"
)

// ScheduleHandler 排班处理器
type ScheduleHandler struct {
	ruleRepo *repository.RuleRepository
	runRepo  *repository.RunRepository
}

// NewScheduleHandler 创建排班处理器。仓储可为 nil（离线模式，不落库）
func NewScheduleHandler(ruleRepo *repository.RuleRepository, runRepo *repository.RunRepository) *ScheduleHandler {
	return &ScheduleHandler{ruleRepo: ruleRepo, runRepo: runRepo}
}

// GenerateRequest 班次生成请求
type GenerateRequest struct {
	Requirements []IntervalInput `json:"requirements"`
	Rules        []RuleInput     `json:"rules,omitempty"`
	Persist      bool            `json:"persist,omitempty"`
}

// GenerateResponse 班次生成响应
type GenerateResponse struct {
	RunID       string                      `json:"run_id,omitempty"`
	Shifts      []ShiftOutput               `json:"shifts"`
	Operational []model.OperationalInterval `json:"operational"`
	Warnings    []generator.Warning         `json:"warnings,omitempty"`
	Duration    string                      `json:"duration"`
}

// Generate 由需求时间轴自动生成班次
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if len(req.Requirements) == 0 {
		respondError(w, errors.InvalidInput("requirements", "需求时段不能为空"))
		return
	}

	requirements, appErr := parseRequirements(req.Requirements)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	acc, appErr := buildAccessor(r.Context(), req.Rules, h.ruleRepo)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	result := generator.New(acc).Generate(requirements)

	for _, dt := range dayTypesOf(requirements) {
		metrics.RecordGeneration(string(dt), len(result.Shifts), len(result.Warnings), result.Duration)
	}

	resp := GenerateResponse{
		Shifts:      toShiftOutputs(result.Shifts),
		Operational: result.Operational,
		Warnings:    result.Warnings,
		Duration:    result.Duration.String(),
	}

	if req.Persist && h.runRepo != nil {
		run := buildRun(model.RunGenerate, requirements, result.Shifts, len(result.Warnings))
		if err := h.runRepo.Create(r.Context(), run); err != nil {
			logger.WithError(err).Msg("保存生成结果失败")
		} else {
			resp.RunID = run.ID.String()
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// TrimRequest 班次裁剪请求
type TrimRequest struct {
	Requirements []IntervalInput `json:"requirements"`
	Shifts       []ShiftInput    `json:"shifts"`
	Rules        []RuleInput     `json:"rules,omitempty"`
	Persist      bool            `json:"persist,omitempty"`
}

// TrimResponse 班次裁剪响应
type TrimResponse struct {
	RunID    string          `json:"run_id,omitempty"`
	Shifts   []ShiftOutput   `json:"shifts"`
	Summary  trimmer.Summary `json:"summary"`
	Duration string          `json:"duration"`
}

// Trim 按盈余裁剪班次边界
func (h *ScheduleHandler) Trim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req TrimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if len(req.Requirements) == 0 {
		respondError(w, errors.InvalidInput("requirements", "需求时段不能为空"))
		return
	}
	if len(req.Shifts) == 0 {
		respondError(w, errors.InvalidInput("shifts", "班次列表不能为空"))
		return
	}

	requirements, appErr := parseRequirements(req.Requirements)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	shifts, appErr := parseShifts(req.Shifts)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	acc, appErr := buildAccessor(r.Context(), req.Rules, h.ruleRepo)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	// 由当前班次重建运营时间轴，得出各时段盈余
	operationals := generator.BuildOperational(shifts)
	cov := coverage.NewCalculator().Compute(requirements, operationals)

	result := trimmer.New(acc).Trim(shifts, cov.Timeline)

	for _, dt := range dayTypesOf(requirements) {
		metrics.RecordTrim(string(dt), result.Summary.HoursRemoved)
	}

	resp := TrimResponse{
		Shifts:   toShiftOutputs(result.Shifts),
		Summary:  result.Summary,
		Duration: result.Duration.String(),
	}

	if req.Persist && h.runRepo != nil {
		run := buildRun(model.RunTrim, requirements, result.Shifts, 0)
		run.Payload = model.JSONMap{
			"hours_removed":   result.Summary.HoursRemoved,
			"shifts_modified": result.Summary.ShiftsModified,
		}
		if err := h.runRepo.Create(r.Context(), run); err != nil {
			logger.WithError(err).Msg("保存裁剪结果失败")
		} else {
			resp.RunID = run.ID.String()
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// ValidateRequest 合规校验请求
type ValidateRequest struct {
	Shifts []ShiftInput `json:"shifts"`
	Rules  []RuleInput  `json:"rules,omitempty"`
}

// ValidateResponse 合规校验响应
type ValidateResponse struct {
	Compliant bool                 `json:"compliant"`
	Shifts    []ShiftOutput        `json:"shifts"`
	Conflicts []validator.Conflict `json:"conflicts,omitempty"`
}

// Validate 对班次列表执行合规检查
func (h *ScheduleHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if len(req.Shifts) == 0 {
		respondError(w, errors.InvalidInput("shifts", "班次列表不能为空"))
		return
	}

	shifts, appErr := parseShifts(req.Shifts)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	acc, appErr := buildAccessor(r.Context(), req.Rules, h.ruleRepo)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	compliant := true
	for _, shift := range shifts {
		compliance.Apply(shift, acc)
		if !shift.Compliant {
			compliant = false
		}
	}

	conflicts := validator.Detect(shifts)
	for _, c := range conflicts {
		if c.Severity == "error" {
			compliant = false
			break
		}
	}

	respondJSON(w, http.StatusOK, ValidateResponse{
		Compliant: compliant,
		Shifts:    toShiftOutputs(shifts),
		Conflicts: conflicts,
	})
}

// buildRun 组装运行记录
func buildRun(kind model.RunKind, requirements []model.RequirementInterval, shifts []*model.Shift, warnings int) *model.ScheduleRun {
	dayType := model.DayWeekday
	if dts := dayTypesOf(requirements); len(dts) > 0 {
		dayType = dts[0]
	}
	return &model.ScheduleRun{
		BaseModel:    model.NewBaseModel(),
		DayType:      dayType,
		Kind:         kind,
		WarningCount: warnings,
		Shifts:       shifts,
	}
}

// dayTypesOf 按出现顺序提取需求涉及的日类型
func dayTypesOf(requirements []model.RequirementInterval) []model.DayType {
	var result []model.DayType
	seen := make(map[model.DayType]bool)
	for _, req := range requirements {
		if !seen[req.DayType] {
			seen[req.DayType] = true
			result = append(result, req.DayType)
		}
	}
	return result
}
