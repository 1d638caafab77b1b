package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/banci/banci/internal/config"
	"github.com/banci/banci/internal/metrics"
	"github.com/banci/banci/internal/repository"
	"github.com/banci/banci/pkg/coverage"
	"github.com/banci/banci/pkg/errors"
	"github.com/banci/banci/pkg/model"
	"github.com/banci/banci/pkg/optimizer"
	"github.com/banci/banci/pkg/rules"
	"github.com/banci/banci/pkg/scheduler/generator"
	"github.com/banci/banci/pkg/solver"
)

// OptimizeHandler 优化处理器
type OptimizeHandler struct {
	ruleRepo *repository.RuleRepository
	engine   config.EngineConfig
}

// NewOptimizeHandler 创建优化处理器
func NewOptimizeHandler(ruleRepo *repository.RuleRepository, engine config.EngineConfig) *OptimizeHandler {
	return &OptimizeHandler{ruleRepo: ruleRepo, engine: engine}
}

// InsightsRequest 缺口分析请求
type InsightsRequest struct {
	DayType      string          `json:"day_type"`
	Requirements []IntervalInput `json:"requirements"`
	Shifts       []ShiftInput    `json:"shifts"`
	Rules        []RuleInput     `json:"rules,omitempty"`
}

// Insights 识别缺口区块并给出整改建议
func (h *OptimizeHandler) Insights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req InsightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if len(req.Requirements) == 0 {
		respondError(w, errors.InvalidInput("requirements", "需求时段不能为空"))
		return
	}

	dayType, appErr := parseDayType(req.DayType)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	timeline, shifts, acc, appErr := h.buildTimeline(r.Context(), dayType, req.Requirements, req.Shifts, req.Rules)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	insights := optimizer.NewEngine(acc).Compute(dayType, timeline, shifts)

	recordDeficitMetrics(dayType, insights.Blocks)

	respondJSON(w, http.StatusOK, insights)
}

// SolveRequest 贪心求解请求
type SolveRequest struct {
	DayType      string          `json:"day_type"`
	Requirements []IntervalInput `json:"requirements"`
	Shifts       []ShiftInput    `json:"shifts"`
	Rules        []RuleInput     `json:"rules,omitempty"`

	// EnableVariants 覆盖配置中的变体开关
	EnableVariants *bool `json:"enable_variants,omitempty"`
}

// SolveResponse 贪心求解响应
type SolveResponse struct {
	Selected   []solver.CandidateShift  `json:"selected"`
	Unmet      []solver.UnmetConstraint `json:"unmet"`
	Objective  float64                  `json:"objective"`
	Iterations int                      `json:"iterations"`
	Duration   string                   `json:"duration"`
}

// Solve 以既有班次及其平移变体为候选做贪心求解
func (h *OptimizeHandler) Solve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if len(req.Requirements) == 0 {
		respondError(w, errors.InvalidInput("requirements", "需求时段不能为空"))
		return
	}

	dayType, appErr := parseDayType(req.DayType)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	timeline, shifts, acc, appErr := h.buildTimeline(r.Context(), dayType, req.Requirements, req.Shifts, req.Rules)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	enableVariants := h.engine.EnableVariants
	if req.EnableVariants != nil {
		enableVariants = *req.EnableVariants
	}

	var candidates []solver.CandidateShift
	for _, shift := range shifts {
		candidates = append(candidates, solver.BuildCandidates(shift, solver.FactoryOptions{
			Existing:       true,
			EnableVariants: enableVariants,
		}, acc)...)
	}
	if len(candidates) == 0 {
		respondError(w, errors.NoFeasibleSolution("没有可行的候选班次：请提供至少一个满足时长规则的班次"))
		return
	}

	ctx := r.Context()
	if h.engine.SolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.engine.SolveTimeout)
		defer cancel()
	}

	solution, err := solver.New(nil).Solve(ctx, dayType, timeline, candidates)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeTimeout, "求解中断"))
		return
	}

	metrics.RecordSolve(string(dayType), solution.Iterations, len(solution.Unmet), solution.Objective)

	respondJSON(w, http.StatusOK, SolveResponse{
		Selected:   solution.Selected,
		Unmet:      solution.Unmet,
		Objective:  solution.Objective,
		Iterations: solution.Iterations,
		Duration:   solution.Duration.String(),
	})
}

// buildTimeline 解析输入并计算指定日类型的覆盖时间轴。
// 运营时间轴由班次列表重建，班次缺失时按纯需求（全缺口）计算。
func (h *OptimizeHandler) buildTimeline(
	ctx context.Context,
	dayType model.DayType,
	reqInputs []IntervalInput,
	shiftInputs []ShiftInput,
	ruleInputs []RuleInput,
) ([]model.CoverageInterval, []*model.Shift, *rules.Accessor, *errors.AppError) {
	requirements, appErr := parseRequirements(reqInputs)
	if appErr != nil {
		return nil, nil, nil, appErr
	}
	shifts, appErr := parseShifts(shiftInputs)
	if appErr != nil {
		return nil, nil, nil, appErr
	}
	acc, appErr := buildAccessor(ctx, ruleInputs, h.ruleRepo)
	if appErr != nil {
		return nil, nil, nil, appErr
	}

	operationals := generator.BuildOperational(shifts)
	cov := coverage.NewCalculator().Compute(requirements, operationals)

	return cov.Timeline[dayType], shifts, acc, nil
}

// recordDeficitMetrics 按区域汇总缺口指标
func recordDeficitMetrics(dayType model.DayType, blocks []model.DeficitBlock) {
	type agg struct {
		count int
		hours float64
	}
	byZone := make(map[model.Zone]agg)
	for _, b := range blocks {
		a := byZone[b.Zone]
		a.count++
		a.hours += b.VehicleHours
		byZone[b.Zone] = a
	}
	for _, zone := range model.AllZones() {
		a := byZone[zone]
		metrics.SetDeficit(string(dayType), string(zone), a.count, a.hours)
	}
}
