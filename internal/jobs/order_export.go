package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"retailops/internal/models"
	"retailops/internal/repositories"
	"retailops/internal/services"

	"github.com/hibiken/asynq"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

// Task type definitions
const (
	TypeOrderSheetExport = "order_sheet_export"
)

const orderSheetBucket = "order-sheets"

// OrderSheetExportPayload defines the payload for order sheet export tasks
type OrderSheetExportPayload struct {
	OrderNo int64 `json:"order_no"`
}

// NewOrderSheetExportTask creates a new order sheet export task
func NewOrderSheetExportTask(orderNo int64) (*asynq.Task, error) {
	payload := OrderSheetExportPayload{OrderNo: orderNo}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeOrderSheetExport, data), nil
}

// AsynqEnqueuer submits export tasks to the queue. It satisfies
// services.OrderSheetEnqueuer.
type AsynqEnqueuer struct {
	client *asynq.Client
}

func NewAsynqEnqueuer(client *asynq.Client) *AsynqEnqueuer {
	return &AsynqEnqueuer{client: client}
}

func (e *AsynqEnqueuer) EnqueueOrderExport(ctx context.Context, orderNo int64) error {
	task, err := NewOrderSheetExportTask(orderNo)
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task)
	return err
}

// OrderSheetExporter renders a printable purchase order sheet for a
// created order, stores it in the object store, and moves the order's
// line items from generated to submitted.
type OrderSheetExporter struct {
	orderRepo repositories.OrderRepository
	itemRepo  repositories.OrderLineItemRepository
	catalog   services.CatalogService
	storage   services.StorageService
	logger    *zap.Logger
}

func NewOrderSheetExporter(orderRepo repositories.OrderRepository, itemRepo repositories.OrderLineItemRepository,
	catalog services.CatalogService, storage services.StorageService, logger *zap.Logger) *OrderSheetExporter {
	return &OrderSheetExporter{
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		catalog:   catalog,
		storage:   storage,
		logger:    logger,
	}
}

// HandleOrderSheetExport handles order sheet export tasks
func (e *OrderSheetExporter) HandleOrderSheetExport(ctx context.Context, t *asynq.Task) error {
	var payload OrderSheetExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal export payload: %w", err)
	}

	e.logger.Info("starting order sheet export", zap.Int64("order_no", payload.OrderNo))

	order, err := e.orderRepo.GetByNo(ctx, payload.OrderNo)
	if err != nil {
		return fmt.Errorf("get order %d: %w", payload.OrderNo, err)
	}
	if order == nil {
		// The order vanished between enqueue and processing. Nothing to
		// retry.
		e.logger.Warn("order not found, dropping export task", zap.Int64("order_no", payload.OrderNo))
		return nil
	}

	items, err := e.itemRepo.ListByOrder(ctx, payload.OrderNo)
	if err != nil {
		return fmt.Errorf("list items for order %d: %w", payload.OrderNo, err)
	}

	mfr, err := e.catalog.GetManufacturer(ctx, order.ManufacturerID)
	if err != nil {
		return fmt.Errorf("get manufacturer %d: %w", order.ManufacturerID, err)
	}

	sheet, err := e.renderSheet(ctx, order, items, mfr)
	if err != nil {
		return fmt.Errorf("render order sheet %d: %w", payload.OrderNo, err)
	}

	if err := e.storage.EnsureBucketExists(ctx, orderSheetBucket); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	objectKey := fmt.Sprintf("%s/%d.pdf", order.OrderDate.Format("2006-01-02"), order.OrderNo)
	if err := e.storage.Upload(ctx, orderSheetBucket, objectKey, "application/pdf",
		bytes.NewReader(sheet), int64(len(sheet))); err != nil {
		return fmt.Errorf("upload order sheet: %w", err)
	}

	updated, err := e.itemRepo.UpdateStatusForOrder(ctx, payload.OrderNo,
		models.LineItemGenerated, models.LineItemSubmitted)
	if err != nil {
		return fmt.Errorf("mark items submitted for order %d: %w", payload.OrderNo, err)
	}

	e.logger.Info("order sheet export completed",
		zap.Int64("order_no", payload.OrderNo),
		zap.String("object_key", objectKey),
		zap.Int64("items_submitted", updated))
	return nil
}

func (e *OrderSheetExporter) renderSheet(ctx context.Context, order *models.Order,
	items []*models.OrderLineItem, mfr *models.Manufacturer) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, "PURCHASE ORDER")
	pdf.Ln(15)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Order Number: %d", order.OrderNo))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Order Date: %s", order.OrderDate.Format("02-Jan-2006")))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Expected Arrival: %s", order.ExpectedArrivalDate.Format("02-Jan-2006")))
	pdf.Ln(8)

	if mfr != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Manufacturer: %s (%s)", mfr.Name, mfr.FullID()))
		pdf.Ln(8)
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)

	headers := []string{"Product No", "Product", "Unit Cost", "Quantity"}
	colWidths := []float64{30, 80, 30, 30}
	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(255, 255, 255)

	var total float64
	for _, item := range items {
		name := ""
		cost := 0.0
		if product, err := e.catalog.GetProduct(ctx, item.ProdNo); err == nil && product != nil {
			name = product.Name
			cost = product.CostPrice
		}
		pdf.CellFormat(colWidths[0], 8, fmt.Sprintf("%d", item.ProdNo), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[1], 8, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("%.2f", cost), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[3], 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.Ln(8)
		total += cost * float64(item.Quantity)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(colWidths[0]+colWidths[1]+colWidths[2], 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(colWidths[3], 8, fmt.Sprintf("%.2f", total), "1", 0, "R", false, 0, "")
	pdf.Ln(8)

	if order.Notes != nil && *order.Notes != "" {
		pdf.Ln(5)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 8, fmt.Sprintf("Notes: %s", *order.Notes))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
