package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"torqbay/internal/catalog"
	"torqbay/internal/common"
)

// CategoryHandlers serves the static category tree and lineage lookups
type CategoryHandlers struct {
	index *catalog.Index
}

// NewCategoryHandlers creates a new category handlers instance
func NewCategoryHandlers(index *catalog.Index) *CategoryHandlers {
	return &CategoryHandlers{index: index}
}

// ListCategories handles GET /categories
func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories": h.index.Roots(),
	})
}

// GetLineage handles GET /categories/:slug/lineage
func (h *CategoryHandlers) GetLineage(c echo.Context) error {
	slug := c.Param("slug")
	if err := common.ValidateRequiredString(slug, "slug"); err != nil {
		return common.SendClientError(c, err.Error())
	}

	lineage, ok := h.index.GetLineage(slug)
	if !ok {
		return common.SendNotFoundError(c, "Category")
	}
	return c.JSON(http.StatusOK, lineage)
}

// GetChildSlugs handles GET /categories/:slug/slugs
func (h *CategoryHandlers) GetChildSlugs(c echo.Context) error {
	slug := c.Param("slug")
	if err := common.ValidateRequiredString(slug, "slug"); err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"slugs": h.index.AllChildSlugs(slug),
	})
}
