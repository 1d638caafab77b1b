package handler

import (
	"net/http"

	"github.com/banci/banci/internal/constraints"
	"github.com/banci/banci/internal/repository"
	"github.com/banci/banci/pkg/errors"
	"github.com/banci/banci/pkg/model"
	"github.com/banci/banci/pkg/rules"
)

// RulesHandler 规则处理器
type RulesHandler struct {
	ruleRepo *repository.RuleRepository
}

// NewRulesHandler 创建规则处理器
func NewRulesHandler(ruleRepo *repository.RuleRepository) *RulesHandler {
	return &RulesHandler{ruleRepo: ruleRepo}
}

// DefaultsResponse 规则缺省值响应
type DefaultsResponse struct {
	Defaults rules.Defaults               `json:"defaults"`
	Library  []constraints.RuleDefinition `json:"library"`
	Active   []model.LaborRule            `json:"active,omitempty"`
}

// Defaults 返回引擎缺省值、可配置规则库与启用中的规则
func (h *RulesHandler) Defaults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	resp := DefaultsResponse{
		Defaults: rules.StandardDefaults(),
		Library:  constraints.GetLibrary(),
	}

	if h.ruleRepo != nil {
		active, err := h.ruleRepo.ListActive(r.Context())
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "加载规则失败"))
			return
		}
		resp.Active = active
	}

	respondJSON(w, http.StatusOK, resp)
}
