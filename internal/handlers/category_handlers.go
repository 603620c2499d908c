package handlers

import (
	"net/http"

	"retailops/internal/common"
	"retailops/internal/models"
	"retailops/internal/services"

	"github.com/labstack/echo/v4"
)

// CategoryHandlers handles category-related HTTP requests
type CategoryHandlers struct {
	catalog services.CatalogService
}

// NewCategoryHandlers creates a new category handlers instance
func NewCategoryHandlers(catalog services.CatalogService) *CategoryHandlers {
	return &CategoryHandlers{catalog: catalog}
}

// ListCategoriesRequest represents query parameters for listing categories
type ListCategoriesRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListCategories handles GET /categories
func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()

	var req ListCategoriesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	categories, err := h.catalog.ListCategories(ctx, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list categories")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories": categories,
		"limit":      limit,
		"offset":     offset,
	})
}

// CreateCategory handles POST /categories
func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	var category models.Category
	if err := c.Bind(&category); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.catalog.CreateCategory(ctx, &category); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, category)
}

// GetCategory handles GET /categories/:no
func (h *CategoryHandlers) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()

	cateNo := c.Param("no")
	if err := models.ValidateCategoryCode(cateNo); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	category, err := h.catalog.GetCategory(ctx, cateNo)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve category")
	}
	if category == nil {
		return common.SendNotFoundError(c, "category")
	}
	return c.JSON(http.StatusOK, category)
}

// ListChildCategories handles GET /categories/:no/children
func (h *CategoryHandlers) ListChildCategories(c echo.Context) error {
	ctx := c.Request().Context()

	children, err := h.catalog.ListChildCategories(ctx, c.Param("no"))
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories": children,
	})
}

// UpdateCategoryRequest represents the category update request payload
type UpdateCategoryRequest struct {
	Name *string `json:"cate_name"`
}

// UpdateCategory handles PUT /categories/:no. Only the name may change;
// the code encodes the hierarchy position and is immutable.
func (h *CategoryHandlers) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	cateNo := c.Param("no")
	var req UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	category, err := h.catalog.GetCategory(ctx, cateNo)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve category")
	}
	if category == nil {
		return common.SendNotFoundError(c, "category")
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if err := h.catalog.UpdateCategory(ctx, category); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /categories/:no
func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.catalog.DeleteCategory(ctx, c.Param("no")); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Category deleted successfully",
	})
}
