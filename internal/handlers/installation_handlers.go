package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"torqbay/internal/common"
	"torqbay/internal/models"
	"torqbay/internal/services"
)

// InstallationHandlers serves installation price quotes and the admin rule
// surface
type InstallationHandlers struct {
	checkoutService services.CheckoutServiceInterface
	ruleService     services.RuleServiceInterface
}

// NewInstallationHandlers creates a new installation handlers instance
func NewInstallationHandlers(checkoutService services.CheckoutServiceInterface, ruleService services.RuleServiceInterface) *InstallationHandlers {
	return &InstallationHandlers{
		checkoutService: checkoutService,
		ruleService:     ruleService,
	}
}

// Quote handles GET /installation/quote?product=...&segment=...|model=...
// The same resolver prices this quote and the eventual order, so what the
// customer sees here is what they will be charged.
func (h *InstallationHandlers) Quote(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := common.ValidateUUID(c.QueryParam("product"), "product")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if segmentStr := c.QueryParam("segment"); segmentStr != "" {
		segment := models.Segment(segmentStr)
		if !models.ValidSegment(segment) {
			return common.SendValidationError(c, "segment", "unknown vehicle segment")
		}
		result, err := h.checkoutService.Quote(ctx, productID, segment)
		if err != nil {
			return sendDomainError(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}

	result, err := h.checkoutService.QuoteForModel(ctx, productID, c.QueryParam("model"))
	if err != nil {
		return sendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// ListRules handles GET /admin/installation-rules
func (h *InstallationHandlers) ListRules(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	rules, err := h.ruleService.ListRules(ctx, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list rules")
	}
	if rules == nil {
		rules = []*models.InstallationRule{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"rules": rules,
		"count": len(rules),
	})
}

// UpsertRule handles PUT /admin/installation-rules
func (h *InstallationHandlers) UpsertRule(c echo.Context) error {
	ctx := c.Request().Context()

	rule := &models.InstallationRule{}
	if err := c.Bind(rule); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	rule.IsActive = true

	if err := h.ruleService.UpsertRule(ctx, rule); err != nil {
		return sendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, rule)
}

// DeactivateRule handles DELETE /admin/installation-rules/:id
func (h *InstallationHandlers) DeactivateRule(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "rule id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.ruleService.DeactivateRule(ctx, id); err != nil {
		return common.SendServerError(c, "Failed to deactivate rule")
	}
	return c.NoContent(http.StatusNoContent)
}
