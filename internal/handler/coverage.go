package handler

import (
	"encoding/json"
	"net/http"

	"github.com/banci/banci/pkg/coverage"
	"github.com/banci/banci/pkg/errors"
	"github.com/banci/banci/pkg/model"
)

// CoverageHandler 覆盖计算处理器
type CoverageHandler struct {
	calc *coverage.Calculator
}

// NewCoverageHandler 创建覆盖计算处理器
func NewCoverageHandler() *CoverageHandler {
	return &CoverageHandler{calc: coverage.NewCalculator()}
}

// CoverageRequest 覆盖计算请求
type CoverageRequest struct {
	Requirements []IntervalInput    `json:"requirements"`
	Operationals []OperationalInput `json:"operationals"`
}

// CoverageResponse 覆盖计算响应
type CoverageResponse struct {
	Timeline   map[model.DayType][]model.CoverageInterval `json:"timeline"`
	ScaleRange model.ScaleRange                           `json:"scale_range"`
}

// Compute 计算覆盖时间轴
func (h *CoverageHandler) Compute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req CoverageRequest
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
	operationals, appErr := parseOperationals(req.Operationals)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	result := h.calc.Compute(requirements, operationals)

	respondJSON(w, http.StatusOK, CoverageResponse{
		Timeline:   result.Timeline,
		ScaleRange: result.ScaleRange,
	})
}
