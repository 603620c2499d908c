package repositories

import (
	"context"
	"errors"

	"retailops/internal/models"

	"github.com/jackc/pgx/v5"
)

type OrderRepository interface {
	CreateWithItems(ctx context.Context, batch []*models.OrderWithItems) error
	GetByNo(ctx context.Context, orderNo int64) (*models.Order, error)
	List(ctx context.Context, limit, offset int) ([]*models.Order, error)
	ListByManufacturer(ctx context.Context, mfrID int64, limit, offset int) ([]*models.Order, error)
	LastNumberInRange(ctx context.Context, low, high int64) (int64, error)
	Update(ctx context.Context, order *models.Order) error
}

type orderRepo struct {
	db Database
}

func NewOrderRepo(db Database) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `order_no, manufacturer_id, order_date, expected_arrival_date, has_contact_form, contact_form_no, storage_fee_recipient, notes, contact_form_notes, created_at, updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	o := &models.Order{}
	err := row.Scan(&o.OrderNo, &o.ManufacturerID, &o.OrderDate, &o.ExpectedArrivalDate, &o.HasContactForm, &o.ContactFormNo, &o.StorageFeeRecipient, &o.Notes, &o.ContactFormNotes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// CreateWithItems persists every order and its line items in a single
// transaction. A failure anywhere rolls back the whole batch, so a
// multi-manufacturer create request never commits partially.
func (r *orderRepo) CreateWithItems(ctx context.Context, batch []*models.OrderWithItems) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	orderQuery := `
		INSERT INTO orders (order_no, manufacturer_id, order_date, expected_arrival_date, has_contact_form, contact_form_no, storage_fee_recipient, notes, contact_form_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	itemQuery := `
		INSERT INTO order_line_items (id, order_no, prod_no, quantity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	for _, entry := range batch {
		o := entry.Order
		if _, err := tx.Exec(ctx, orderQuery, o.OrderNo, o.ManufacturerID, o.OrderDate, o.ExpectedArrivalDate, o.HasContactForm, o.ContactFormNo, o.StorageFeeRecipient, o.Notes, o.ContactFormNotes); err != nil {
			return err
		}
		for _, item := range entry.Items {
			if _, err := tx.Exec(ctx, itemQuery, item.ID, item.OrderNo, item.ProdNo, item.Quantity, item.Status); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}

func (r *orderRepo) GetByNo(ctx context.Context, orderNo int64) (*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE order_no = $1
	`
	order, err := scanOrder(r.db.QueryRow(ctx, query, orderNo))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) List(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY order_no DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *orderRepo) ListByManufacturer(ctx context.Context, mfrID int64, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE manufacturer_id = $1
		ORDER BY order_no DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, mfrID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// LastNumberInRange returns the highest order number within [low, high],
// or 0 when no order falls in the range. The allocator uses it to scope
// sequencing to one day-prefix.
func (r *orderRepo) LastNumberInRange(ctx context.Context, low, high int64) (int64, error) {
	query := `
		SELECT order_no
		FROM orders
		WHERE order_no BETWEEN $1 AND $2
		ORDER BY order_no DESC
		LIMIT 1
	`
	var orderNo int64
	err := r.db.QueryRow(ctx, query, low, high).Scan(&orderNo)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return orderNo, nil
}

func (r *orderRepo) Update(ctx context.Context, order *models.Order) error {
	query := `
		UPDATE orders
		SET expected_arrival_date = $1, has_contact_form = $2, contact_form_no = $3, storage_fee_recipient = $4, notes = $5, contact_form_notes = $6, updated_at = NOW()
		WHERE order_no = $7
	`
	_, err := r.db.Exec(ctx, query, order.ExpectedArrivalDate, order.HasContactForm, order.ContactFormNo, order.StorageFeeRecipient, order.Notes, order.ContactFormNotes, order.OrderNo)
	return err
}

func collectOrders(rows pgx.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
