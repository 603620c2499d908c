package repositories

import (
	"context"

	"retailops/internal/models"
)

type OrderLineItemRepository interface {
	ListByOrder(ctx context.Context, orderNo int64) ([]*models.OrderLineItem, error)
	UpdateQuantity(ctx context.Context, item *models.OrderLineItem) error
	UpdateStatusForOrder(ctx context.Context, orderNo int64, fromStatus, toStatus int) (int64, error)
}

type orderLineItemRepo struct {
	db Database
}

func NewOrderLineItemRepo(db Database) OrderLineItemRepository {
	return &orderLineItemRepo{db: db}
}

func (r *orderLineItemRepo) ListByOrder(ctx context.Context, orderNo int64) ([]*models.OrderLineItem, error) {
	query := `
		SELECT id, order_no, prod_no, quantity, status, created_at, updated_at
		FROM order_line_items
		WHERE order_no = $1
		ORDER BY prod_no
	`
	rows, err := r.db.Query(ctx, query, orderNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OrderLineItem
	for rows.Next() {
		item := &models.OrderLineItem{}
		if err := rows.Scan(&item.ID, &item.OrderNo, &item.ProdNo, &item.Quantity, &item.Status, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *orderLineItemRepo) UpdateQuantity(ctx context.Context, item *models.OrderLineItem) error {
	query := `
		UPDATE order_line_items
		SET quantity = $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, item.Quantity, item.ID)
	return err
}

// UpdateStatusForOrder moves every line item of an order from one status
// to another and returns the number of items updated. The export job
// uses it to flip Generated items to Submitted after transmission.
func (r *orderLineItemRepo) UpdateStatusForOrder(ctx context.Context, orderNo int64, fromStatus, toStatus int) (int64, error) {
	query := `
		UPDATE order_line_items
		SET status = $1, updated_at = NOW()
		WHERE order_no = $2 AND status = $3
	`
	tag, err := r.db.Exec(ctx, query, toStatus, orderNo, fromStatus)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
