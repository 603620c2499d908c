package handlers

import (
	"net/http"
	"strconv"
	"time"

	"retailops/internal/common"
	"retailops/internal/models"
	"retailops/internal/services"

	"github.com/labstack/echo/v4"
)

// RuleHandlers handles ordering rule HTTP requests
type RuleHandlers struct {
	ruleService services.RuleService
}

// NewRuleHandlers creates a new rule handlers instance
func NewRuleHandlers(ruleService services.RuleService) *RuleHandlers {
	return &RuleHandlers{ruleService: ruleService}
}

// ListRulesRequest represents query parameters for listing rules
type ListRulesRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListRules handles GET /rules
func (h *RuleHandlers) ListRules(c echo.Context) error {
	ctx := c.Request().Context()

	var req ListRulesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rules, err := h.ruleService.ListRules(ctx, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list rules")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"rules":  rules,
		"limit":  limit,
		"offset": offset,
	})
}

// CreateRule handles POST /rules
func (h *RuleHandlers) CreateRule(c echo.Context) error {
	ctx := c.Request().Context()

	var rule models.OrderRule
	if err := c.Bind(&rule); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.ruleService.CreateRule(ctx, &rule); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, rule)
}

// GetRule handles GET /rules/:id
func (h *RuleHandlers) GetRule(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid rule id")
	}

	rule, err := h.ruleService.GetRule(ctx, id)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve rule")
	}
	if rule == nil {
		return common.SendNotFoundError(c, "rule")
	}
	return c.JSON(http.StatusOK, rule)
}

// UpdateRule handles PUT /rules/:id
func (h *RuleHandlers) UpdateRule(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid rule id")
	}

	var rule models.OrderRule
	if err := c.Bind(&rule); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	rule.ID = id

	if err := h.ruleService.UpdateRule(ctx, &rule); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, rule)
}

// DeleteRule handles DELETE /rules/:id
func (h *RuleHandlers) DeleteRule(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid rule id")
	}

	if err := h.ruleService.DeleteRule(ctx, id); err != nil {
		return common.SendServerError(c, "Failed to delete rule")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Rule deleted successfully",
	})
}

// ListRuleConflicts handles GET /rules/conflicts. It returns every
// subject currently carrying more than one effective rule.
func (h *RuleHandlers) ListRuleConflicts(c echo.Context) error {
	ctx := c.Request().Context()

	conflicts, err := h.ruleService.FindConflicts(ctx, time.Now())
	if err != nil {
		return common.SendServerError(c, "Failed to audit rules")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"conflicts": conflicts,
	})
}
