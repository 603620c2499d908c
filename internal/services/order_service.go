package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"retailops/internal/models"
	"retailops/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Request actions
const (
	ActionValidate = "validation"
	ActionCreate   = "create"
)

// Orders arrive by default a week after ordering.
const defaultArrivalDays = 7

// OrderLineRequest is one submitted (product number, quantity) pair.
type OrderLineRequest struct {
	ProdNo   int64 `json:"prod_no"`
	Quantity int   `json:"prod_quantity"`
}

// OrderRequest is a candidate order: line items plus the requested
// action, either validate-only or create.
type OrderRequest struct {
	Products []OrderLineRequest `json:"products"`
	Action   string             `json:"action"`
}

// OrderResult is the outcome of a successful submit.
type OrderResult struct {
	Message  string
	OrderNos []int64
}

// ErrUnknownAction is returned for actions other than "validation" and
// "create".
var ErrUnknownAction = errors.New("unknown order action")

// OrderSheetEnqueuer schedules the asynchronous order-sheet export for
// a created order. Enqueue failures never affect the committed order.
type OrderSheetEnqueuer interface {
	EnqueueOrderExport(ctx context.Context, orderNo int64) error
}

// ProductCatalog is the slice of the catalog the order assembler needs:
// product lookup by number, nil when absent.
type ProductCatalog interface {
	GetProduct(ctx context.Context, prodNo int64) (*models.Product, error)
}

// OrderServiceInterface is the order assembler: it validates a
// candidate order end to end and, when clean and requested, persists
// one order per manufacturer group.
type OrderServiceInterface interface {
	SubmitOrder(ctx context.Context, req *OrderRequest) (*OrderResult, []models.OrderError, error)
	GetOrder(ctx context.Context, orderNo int64) (*models.Order, []*models.OrderLineItem, error)
	ListOrders(ctx context.Context, limit, offset int) ([]*models.Order, error)
	UpdateOrder(ctx context.Context, order *models.Order) error
}

type orderService struct {
	catalog   ProductCatalog
	validator OrderValidator
	allocator NumberAllocator
	orderRepo repositories.OrderRepository
	itemRepo  repositories.OrderLineItemRepository
	enqueuer  OrderSheetEnqueuer
	logger    *zap.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewOrderService creates the order assembler. loc is the business time
// zone used for order dates and day-prefix derivation. enqueuer may be
// nil when order-sheet export is disabled.
func NewOrderService(catalog ProductCatalog, validator OrderValidator, allocator NumberAllocator,
	orderRepo repositories.OrderRepository, itemRepo repositories.OrderLineItemRepository,
	enqueuer OrderSheetEnqueuer, logger *zap.Logger, loc *time.Location) OrderServiceInterface {
	return &orderService{
		catalog:   catalog,
		validator: validator,
		allocator: allocator,
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		enqueuer:  enqueuer,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
}

// SubmitOrder runs the full validate-or-create flow. All validation
// errors across all line items and groups are collected before any
// decision; nothing is persisted unless the error list is empty and the
// action is "create". Returned OrderError values are user-facing; the
// error return is reserved for infrastructure failures.
func (s *orderService) SubmitOrder(ctx context.Context, req *OrderRequest) (*OrderResult, []models.OrderError, error) {
	if req.Action != ActionValidate && req.Action != ActionCreate {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}

	lines, errs, err := s.collectLines(ctx, req.Products)
	if err != nil {
		return nil, nil, err
	}

	validationErrs, err := s.validator.Validate(ctx, lines)
	if err != nil {
		return nil, nil, err
	}
	errs = append(errs, validationErrs...)

	if len(errs) > 0 {
		return nil, errs, nil
	}

	if req.Action == ActionValidate {
		return &OrderResult{Message: "order validation succeeded"}, nil, nil
	}

	orderNos, err := s.createOrders(ctx, lines)
	if err != nil {
		return nil, nil, err
	}

	joined := make([]string, len(orderNos))
	for i, no := range orderNos {
		joined[i] = fmt.Sprintf("%d", no)
	}
	return &OrderResult{
		Message:  fmt.Sprintf("order %s created successfully", strings.Join(joined, ", ")),
		OrderNos: orderNos,
	}, nil, nil
}

// collectLines resolves every submitted product number through the
// catalog. Unknown products become product_not_exist errors and are
// excluded from further validation; a product number submitted twice
// keeps the last quantity.
func (s *orderService) collectLines(ctx context.Context, products []OrderLineRequest) ([]OrderLine, []models.OrderError, error) {
	var errs []models.OrderError
	quantities := make(map[int64]int)
	byNo := make(map[int64]*models.Product)
	var order []int64

	for _, lineReq := range products {
		if _, seen := quantities[lineReq.ProdNo]; seen {
			quantities[lineReq.ProdNo] = lineReq.Quantity
			continue
		}
		prod, err := s.catalog.GetProduct(ctx, lineReq.ProdNo)
		if err != nil {
			return nil, nil, err
		}
		if prod == nil {
			errs = append(errs, models.OrderError{
				Code:    models.ErrCodeProductNotExist,
				Message: fmt.Sprintf("product %d not found", lineReq.ProdNo),
				Obj:     lineReq.ProdNo,
			})
			continue
		}
		quantities[lineReq.ProdNo] = lineReq.Quantity
		byNo[lineReq.ProdNo] = prod
		order = append(order, lineReq.ProdNo)
	}

	lines := make([]OrderLine, 0, len(order))
	for _, prodNo := range order {
		lines = append(lines, OrderLine{Product: byNo[prodNo], Quantity: quantities[prodNo]})
	}
	return lines, errs, nil
}

// createOrders partitions the validated line items by manufacturer and
// persists one order per group inside a single transaction. On an
// order-number collision with a concurrent writer the allocation and
// insert are retried once; the retry re-reads the latest number under
// the same day-prefix.
func (s *orderService) createOrders(ctx context.Context, lines []OrderLine) ([]int64, error) {
	groups := GroupByManufacturer(lines)
	mfrIDs := sortedKeys(groups)

	var orderNos []int64
	for attempt := 0; ; attempt++ {
		day := s.now().In(s.loc)
		numbers, err := s.allocator.Next(ctx, day, len(mfrIDs))
		if err != nil {
			return nil, err
		}

		batch := make([]*models.OrderWithItems, 0, len(mfrIDs))
		for i, mfrID := range mfrIDs {
			order := &models.Order{
				OrderNo:             numbers[i],
				ManufacturerID:      mfrID,
				OrderDate:           day,
				ExpectedArrivalDate: day.AddDate(0, 0, defaultArrivalDays),
				StorageFeeRecipient: models.StorageFeeNoCharge,
			}
			items := make([]*models.OrderLineItem, 0, len(groups[mfrID]))
			for _, line := range groups[mfrID] {
				items = append(items, &models.OrderLineItem{
					ID:       uuid.New(),
					OrderNo:  order.OrderNo,
					ProdNo:   line.Product.ProdNo,
					Quantity: line.Quantity,
					Status:   models.LineItemGenerated,
				})
			}
			batch = append(batch, &models.OrderWithItems{Order: order, Items: items})
		}

		err = s.orderRepo.CreateWithItems(ctx, batch)
		if err == nil {
			orderNos = numbers
			break
		}
		if attempt == 0 && isUniqueViolation(err) {
			s.logger.Warn("order number collision, retrying allocation",
				zap.Int64s("order_nos", numbers))
			continue
		}
		return nil, fmt.Errorf("create orders: %w", err)
	}

	if s.enqueuer != nil {
		for _, orderNo := range orderNos {
			if err := s.enqueuer.EnqueueOrderExport(ctx, orderNo); err != nil {
				s.logger.Error("enqueue order sheet export failed",
					zap.Int64("order_no", orderNo), zap.Error(err))
			}
		}
	}

	return orderNos, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderNo int64) (*models.Order, []*models.OrderLineItem, error) {
	order, err := s.orderRepo.GetByNo(ctx, orderNo)
	if err != nil {
		return nil, nil, fmt.Errorf("get order %d: %w", orderNo, err)
	}
	if order == nil {
		return nil, nil, nil
	}
	items, err := s.itemRepo.ListByOrder(ctx, orderNo)
	if err != nil {
		return nil, nil, fmt.Errorf("list items for order %d: %w", orderNo, err)
	}
	return order, items, nil
}

func (s *orderService) ListOrders(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	return s.orderRepo.List(ctx, limit, offset)
}

func (s *orderService) UpdateOrder(ctx context.Context, order *models.Order) error {
	existing, err := s.orderRepo.GetByNo(ctx, order.OrderNo)
	if err != nil {
		return fmt.Errorf("get order %d: %w", order.OrderNo, err)
	}
	if existing == nil {
		return fmt.Errorf("order %d not found", order.OrderNo)
	}
	if order.ExpectedArrivalDate.Before(existing.OrderDate) {
		return fmt.Errorf("expected arrival date cannot precede the order date")
	}
	return s.orderRepo.Update(ctx, order)
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
