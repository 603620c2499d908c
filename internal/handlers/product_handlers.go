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

// ProductHandlers handles product-related HTTP requests
type ProductHandlers struct {
	catalog services.CatalogService
}

// NewProductHandlers creates a new product handlers instance
func NewProductHandlers(catalog services.CatalogService) *ProductHandlers {
	return &ProductHandlers{catalog: catalog}
}

// ListProductsRequest represents query parameters for listing products
type ListProductsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListProducts handles GET /products
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	var req ListProductsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	products, err := h.catalog.ListProducts(ctx, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list products")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"limit":    limit,
		"offset":   offset,
	})
}

// CreateProduct handles POST /products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var product models.Product
	if err := c.Bind(&product); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.catalog.CreateProduct(ctx, &product); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, product)
}

// GetProduct handles GET /products/:no
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	prodNo, err := strconv.ParseInt(c.Param("no"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product number")
	}

	product, err := h.catalog.GetProduct(ctx, prodNo)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve product")
	}
	if product == nil {
		return common.SendNotFoundError(c, "product")
	}
	return c.JSON(http.StatusOK, product)
}

// UpdateProduct handles PUT /products/:no
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	prodNo, err := strconv.ParseInt(c.Param("no"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product number")
	}

	var product models.Product
	if err := c.Bind(&product); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	product.ProdNo = prodNo

	if err := h.catalog.UpdateProduct(ctx, &product); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:no
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	prodNo, err := strconv.ParseInt(c.Param("no"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product number")
	}

	if err := h.catalog.DeleteProduct(ctx, prodNo); err != nil {
		return common.SendServerError(c, "Failed to delete product")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Product deleted successfully",
	})
}

// SearchProductsRequest represents query parameters for searching products
type SearchProductsRequest struct {
	Query          string `query:"q"`
	CategoryNo     string `query:"category_no"`
	ManufacturerID string `query:"manufacturer_id"`
	SalesStatus    string `query:"sales_status"`
	SortBy         string `query:"sort_by"`
	SortOrder      string `query:"sort_order"`
	Limit          int    `query:"limit"`
	Offset         int    `query:"offset"`
}

// SearchProducts handles GET /products/search
func (h *ProductHandlers) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()

	var req SearchProductsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	filter := &models.ProductSearchFilter{
		Query:     req.Query,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Limit:     limit,
		Offset:    offset,
	}
	if req.CategoryNo != "" {
		filter.CategoryNo = &req.CategoryNo
	}
	if req.ManufacturerID != "" {
		mfrID, err := strconv.ParseInt(req.ManufacturerID, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid manufacturer_id")
		}
		filter.ManufacturerID = &mfrID
	}
	if req.SalesStatus != "" {
		status, err := strconv.Atoi(req.SalesStatus)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid sales_status")
		}
		filter.SalesStatus = &status
	}

	products, err := h.catalog.SearchProducts(ctx, filter)
	if err != nil {
		return common.SendServerError(c, "Failed to search products")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"limit":    limit,
		"offset":   offset,
		"query":    req.Query,
	})
}

// PatchQuantitiesRequest represents the bulk quantity patch payload
type PatchQuantitiesRequest struct {
	Products []models.ProductQuantityPatch `json:"products"`
}

// PatchQuantities handles PATCH /products/quantities. The whole batch
// is applied atomically.
func (h *ProductHandlers) PatchQuantities(c echo.Context) error {
	ctx := c.Request().Context()

	var req PatchQuantitiesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if len(req.Products) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "At least one product patch is required")
	}

	if err := h.catalog.PatchQuantities(ctx, req.Products); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Quantities updated successfully",
		"count":   len(req.Products),
	})
}

// GetProductImageURL handles GET /products/:no/image-url
func (h *ProductHandlers) GetProductImageURL(c echo.Context) error {
	ctx := c.Request().Context()

	prodNo, err := strconv.ParseInt(c.Param("no"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product number")
	}

	url, err := h.catalog.GetProductImageURL(ctx, prodNo, 15*time.Minute)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

// UploadProductImage handles POST /products/:no/image
func (h *ProductHandlers) UploadProductImage(c echo.Context) error {
	ctx := c.Request().Context()

	prodNo, err := strconv.ParseInt(c.Param("no"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product number")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Image file is required")
	}

	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read uploaded file")
	}
	defer src.Close()

	if err := h.catalog.UploadProductImage(ctx, prodNo, file.Filename, src, file.Size); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"message": "Image uploaded successfully",
	})
}
