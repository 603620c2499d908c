package handlers

import (
	"net/http"
	"strconv"

	"retailops/internal/common"
	"retailops/internal/models"
	"retailops/internal/services"

	"github.com/labstack/echo/v4"
)

// ManufacturerHandlers handles manufacturer-related HTTP requests
type ManufacturerHandlers struct {
	catalog services.CatalogService
}

// NewManufacturerHandlers creates a new manufacturer handlers instance
func NewManufacturerHandlers(catalog services.CatalogService) *ManufacturerHandlers {
	return &ManufacturerHandlers{catalog: catalog}
}

// ListManufacturersRequest represents query parameters for listing manufacturers
type ListManufacturersRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListManufacturers handles GET /manufacturers
func (h *ManufacturerHandlers) ListManufacturers(c echo.Context) error {
	ctx := c.Request().Context()

	var req ListManufacturersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	manufacturers, err := h.catalog.ListManufacturers(ctx, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list manufacturers")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"manufacturers": manufacturers,
		"limit":         limit,
		"offset":        offset,
	})
}

// CreateManufacturer handles POST /manufacturers
func (h *ManufacturerHandlers) CreateManufacturer(c echo.Context) error {
	ctx := c.Request().Context()

	var mfr models.Manufacturer
	if err := c.Bind(&mfr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.catalog.CreateManufacturer(ctx, &mfr); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, mfr)
}

// GetManufacturer handles GET /manufacturers/:id. The id is either the
// numeric primary key or the 10-digit full id.
func (h *ManufacturerHandlers) GetManufacturer(c echo.Context) error {
	ctx := c.Request().Context()

	idStr := c.Param("id")
	var mfr *models.Manufacturer
	var err error
	if len(idStr) == 10 {
		mfr, err = h.catalog.GetManufacturerByFullID(ctx, idStr)
	} else {
		var id int64
		id, err = strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid manufacturer id")
		}
		mfr, err = h.catalog.GetManufacturer(ctx, id)
	}
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve manufacturer")
	}
	if mfr == nil {
		return common.SendNotFoundError(c, "manufacturer")
	}
	return c.JSON(http.StatusOK, mfr)
}

// UpdateManufacturer handles PUT /manufacturers/:id
func (h *ManufacturerHandlers) UpdateManufacturer(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid manufacturer id")
	}

	var mfr models.Manufacturer
	if err := c.Bind(&mfr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	mfr.ID = id

	if err := h.catalog.UpdateManufacturer(ctx, &mfr); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, mfr)
}

// DeleteManufacturer handles DELETE /manufacturers/:id
func (h *ManufacturerHandlers) DeleteManufacturer(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid manufacturer id")
	}

	if err := h.catalog.DeleteManufacturer(ctx, id); err != nil {
		return common.SendServerError(c, "Failed to delete manufacturer")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Manufacturer deleted successfully",
	})
}
