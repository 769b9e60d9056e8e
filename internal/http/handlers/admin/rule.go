package admin

import (
	"errors"

	"github.com/modboard-next/internal/http/response"
	"github.com/modboard-next/internal/service"

	"github.com/gin-gonic/gin"
)

// RuleCreateRequest 规则创建请求
type RuleCreateRequest struct {
	Title                string   `json:"title" binding:"required"`
	Description          string   `json:"description"`
	EffectiveDate        string   `json:"effective_date"`
	ApplicableConditions []string `json:"applicable_conditions"`
}

// CreateRule 创建审核规则
func (h *Handler) CreateRule(c *gin.Context) {
	var req RuleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	rule, err := h.RuleService.Create(service.RuleCreateInput{
		Title:                req.Title,
		Description:          req.Description,
		EffectiveDate:        req.EffectiveDate,
		ApplicableConditions: req.ApplicableConditions,
	})
	if err != nil {
		if errors.Is(err, service.ErrTitleInUse) {
			respondError(c, response.CodeConflict, "title already in use", nil)
			return
		}
		respondError(c, response.CodeInternal, "rule create failed", err)
		return
	}

	response.SuccessWithMsg(c, "created", rule)
}

// GetRule 获取规则详情
func (h *Handler) GetRule(c *gin.Context) {
	id := c.Param("id")

	rule, err := h.RuleService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "Rule not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "rule fetch failed", err)
		return
	}

	response.Success(c, rule)
}

// GetRules 获取规则列表
func (h *Handler) GetRules(c *gin.Context) {
	rules, err := h.RuleService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "rule fetch failed", err)
		return
	}

	response.Success(c, rules)
}

// RuleUpdateRequest 规则部分更新请求；缺省字段不触碰
type RuleUpdateRequest struct {
	Title                *string   `json:"title"`
	Description          *string   `json:"description"`
	EffectiveDate        *string   `json:"effective_date"`
	ApplicableConditions *[]string `json:"applicable_conditions"`
}

// UpdateRule 部分更新规则，变更归属当前管理员
func (h *Handler) UpdateRule(c *gin.Context) {
	id := c.Param("id")

	var req RuleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	rule, err := h.RuleService.Update(id, service.RuleUpdateInput{
		Title:                req.Title,
		Description:          req.Description,
		EffectiveDate:        req.EffectiveDate,
		ApplicableConditions: req.ApplicableConditions,
	}, getActor(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "Rule not found", nil)
		case errors.Is(err, service.ErrTitleInUse):
			respondError(c, response.CodeConflict, "title already in use", nil)
		default:
			respondError(c, response.CodeInternal, "rule update failed", err)
		}
		return
	}

	response.Success(c, rule)
}

// NotifyRules 触发规则通知；受理即成功，不反馈逐个投递结果
func (h *Handler) NotifyRules(c *gin.Context) {
	if err := h.RuleService.Notify(c.Request.Context()); err != nil {
		respondError(c, response.CodeInternal, "rule notify failed", err)
		return
	}

	response.SuccessWithMsg(c, "accepted", nil)
}

// GetRuleAuditLog 获取规则变更审计记录
func (h *Handler) GetRuleAuditLog(c *gin.Context) {
	id := c.Param("id")

	if _, err := h.RuleService.Get(id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "Rule not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "rule fetch failed", err)
		return
	}

	entries, err := h.RuleService.AuditLog(id)
	if err != nil {
		respondError(c, response.CodeInternal, "rule audit fetch failed", err)
		return
	}

	response.Success(c, entries)
}
