package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"retailops/internal/common"
	"retailops/internal/models"
	"retailops/internal/services"

	"github.com/labstack/echo/v4"
)

// OrderHandlers handles order-related HTTP requests
type OrderHandlers struct {
	orderService services.OrderServiceInterface
}

// NewOrderHandlers creates a new order handlers instance
func NewOrderHandlers(orderService services.OrderServiceInterface) *OrderHandlers {
	return &OrderHandlers{orderService: orderService}
}

// SubmitResponse is the success envelope for order submission. Obj
// carries the created order numbers comma-joined, or is empty for a
// validate-only run.
type SubmitResponse struct {
	Message string `json:"message"`
	Obj     string `json:"obj"`
}

// SubmitErrorResponse is the failure envelope: every validation error
// across the whole batch, collected in one response.
type SubmitErrorResponse struct {
	Errors []models.OrderError `json:"errors"`
}

// SubmitOrder handles POST /orders. The request carries line items and
// an action, either "validation" (check only) or "create" (check and
// persist one order per manufacturer).
func (h *OrderHandlers) SubmitOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.OrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if len(req.Products) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "At least one line item is required")
	}

	result, orderErrs, err := h.orderService.SubmitOrder(ctx, &req)
	if err != nil {
		if errors.Is(err, services.ErrUnknownAction) {
			return echo.NewHTTPError(http.StatusBadRequest, "Action must be \"validation\" or \"create\"")
		}
		return common.SendServerError(c, "Failed to process order")
	}

	if len(orderErrs) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, SubmitErrorResponse{Errors: orderErrs})
	}

	resp := SubmitResponse{Message: result.Message}
	if len(result.OrderNos) > 0 {
		joined := make([]string, len(result.OrderNos))
		for i, no := range result.OrderNos {
			joined[i] = strconv.FormatInt(no, 10)
		}
		resp.Obj = strings.Join(joined, ",")
		return c.JSON(http.StatusCreated, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// ListOrdersRequest represents query parameters for listing orders
type ListOrdersRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListOrders handles GET /orders
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	var req ListOrdersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	orders, err := h.orderService.ListOrders(ctx, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list orders")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"limit":  limit,
		"offset": offset,
	})
}

// GetOrder handles GET /orders/:no, returning the order and its line
// items.
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderNo, err := strconv.ParseInt(c.Param("no"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid order number")
	}

	order, items, err := h.orderService.GetOrder(ctx, orderNo)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve order")
	}
	if order == nil {
		return common.SendNotFoundError(c, "order")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"order": order,
		"items": items,
	})
}

// UpdateOrderRequest represents the order update request payload
type UpdateOrderRequest struct {
	ExpectedArrivalDate *string `json:"od_except_arrival_date"`
	HasContactForm      *bool   `json:"od_has_contact_form"`
	ContactFormNo       *int64  `json:"od_contact_form_no"`
	StorageFeeRecipient *int    `json:"od_warehouse_storage_fee_recipient"`
	Notes               *string `json:"od_notes"`
	ContactFormNotes    *string `json:"od_contact_form_notes"`
}

// UpdateOrder handles PUT /orders/:no
func (h *OrderHandlers) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderNo, err := strconv.ParseInt(c.Param("no"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid order number")
	}

	var req UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	order, _, err := h.orderService.GetOrder(ctx, orderNo)
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve order")
	}
	if order == nil {
		return common.SendNotFoundError(c, "order")
	}

	if req.ExpectedArrivalDate != nil {
		if err := common.ValidateDateFormat(*req.ExpectedArrivalDate, "od_except_arrival_date"); err != nil {
			return common.SendValidationError(c, "od_except_arrival_date", err.Error())
		}
		arrival, _ := time.Parse("2006-01-02", *req.ExpectedArrivalDate)
		order.ExpectedArrivalDate = arrival
	}
	if req.HasContactForm != nil {
		order.HasContactForm = *req.HasContactForm
	}
	if req.ContactFormNo != nil {
		order.ContactFormNo = req.ContactFormNo
	}
	if req.StorageFeeRecipient != nil {
		switch *req.StorageFeeRecipient {
		case models.StorageFeeNoCharge, models.StorageFeeManufacturer, models.StorageFeeCustomer:
			order.StorageFeeRecipient = *req.StorageFeeRecipient
		default:
			return common.SendValidationError(c, "od_warehouse_storage_fee_recipient", "unknown storage fee recipient")
		}
	}
	if req.Notes != nil {
		order.Notes = req.Notes
	}
	if req.ContactFormNotes != nil {
		order.ContactFormNotes = req.ContactFormNotes
	}

	if err := h.orderService.UpdateOrder(ctx, order); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, order)
}
