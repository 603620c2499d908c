package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"retailops/internal/models"

	"github.com/jackc/pgx/v5"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByNo(ctx context.Context, prodNo int64) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, prodNo int64) error
	List(ctx context.Context, limit, offset int) ([]*models.Product, error)
	Search(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error)
	UpdateQuantities(ctx context.Context, patches []models.ProductQuantityPatch) error
}

type productRepo struct {
	db Database
}

func NewProductRepo(db Database) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `prod_no, name, description, image_key, quantity, unit_of_measure, category_no, cost_price, retail_price, sell_zone, outer_quantity, inner_quantity, manufacturer_id, sales_status, qa_status, effective_start_date, effective_end_date, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(&p.ProdNo, &p.Name, &p.Description, &p.ImageKey, &p.Quantity, &p.UnitOfMeasure, &p.CategoryNo, &p.CostPrice, &p.RetailPrice, &p.SellZone, &p.OuterQuantity, &p.InnerQuantity, &p.ManufacturerID, &p.SalesStatus, &p.QAStatus, &p.EffectiveStartDate, &p.EffectiveEndDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (prod_no, name, description, image_key, quantity, unit_of_measure, category_no, cost_price, retail_price, sell_zone, outer_quantity, inner_quantity, manufacturer_id, sales_status, qa_status, effective_start_date, effective_end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, product.ProdNo, product.Name, product.Description, product.ImageKey, product.Quantity, product.UnitOfMeasure, product.CategoryNo, product.CostPrice, product.RetailPrice, product.SellZone, product.OuterQuantity, product.InnerQuantity, product.ManufacturerID, product.SalesStatus, product.QAStatus, product.EffectiveStartDate, product.EffectiveEndDate)
	return err
}

func (r *productRepo) GetByNo(ctx context.Context, prodNo int64) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE prod_no = $1
	`
	product, err := scanProduct(r.db.QueryRow(ctx, query, prodNo))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, image_key = $3, quantity = $4, unit_of_measure = $5, category_no = $6, cost_price = $7, retail_price = $8, sell_zone = $9, outer_quantity = $10, inner_quantity = $11, manufacturer_id = $12, sales_status = $13, qa_status = $14, effective_start_date = $15, effective_end_date = $16, updated_at = NOW()
		WHERE prod_no = $17
	`
	_, err := r.db.Exec(ctx, query, product.Name, product.Description, product.ImageKey, product.Quantity, product.UnitOfMeasure, product.CategoryNo, product.CostPrice, product.RetailPrice, product.SellZone, product.OuterQuantity, product.InnerQuantity, product.ManufacturerID, product.SalesStatus, product.QAStatus, product.EffectiveStartDate, product.EffectiveEndDate, product.ProdNo)
	return err
}

func (r *productRepo) Delete(ctx context.Context, prodNo int64) error {
	query := `DELETE FROM products WHERE prod_no = $1`
	_, err := r.db.Exec(ctx, query, prodNo)
	return err
}

func (r *productRepo) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY prod_no
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepo) Search(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}
	if filter.SortBy == "" {
		filter.SortBy = "prod_no"
	}

	queryBase := `
		SELECT ` + productColumns + `
		FROM products
		WHERE 1=1
	`
	args := []any{}
	n := 0

	if filter.Query != "" {
		n++
		queryBase += fmt.Sprintf(` AND (name ILIKE $%d OR COALESCE(description, '') ILIKE $%d)`, n, n)
		args = append(args, "%"+filter.Query+"%")
	}
	if filter.CategoryNo != nil {
		n++
		queryBase += fmt.Sprintf(` AND category_no = $%d`, n)
		args = append(args, *filter.CategoryNo)
	}
	if filter.ManufacturerID != nil {
		n++
		queryBase += fmt.Sprintf(` AND manufacturer_id = $%d`, n)
		args = append(args, *filter.ManufacturerID)
	}
	if filter.SalesStatus != nil {
		n++
		queryBase += fmt.Sprintf(` AND sales_status = $%d`, n)
		args = append(args, *filter.SalesStatus)
	}

	validSortFields := map[string]bool{"prod_no": true, "name": true, "cost_price": true}
	sortField := "prod_no"
	if validSortFields[filter.SortBy] {
		sortField = filter.SortBy
	}
	sortOrder := "ASC"
	if strings.ToLower(filter.SortOrder) == "desc" {
		sortOrder = "DESC"
	}
	queryBase += fmt.Sprintf(` ORDER BY %s %s`, sortField, sortOrder)

	n++
	queryBase += fmt.Sprintf(` LIMIT $%d`, n)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		n++
		queryBase += fmt.Sprintf(` OFFSET $%d`, n)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateQuantities applies explicit quantity patches in one transaction.
// A missing product number fails the whole batch.
func (r *productRepo) UpdateQuantities(ctx context.Context, patches []models.ProductQuantityPatch) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `UPDATE products SET quantity = $1, updated_at = NOW() WHERE prod_no = $2`
	for _, patch := range patches {
		tag, err := tx.Exec(ctx, query, patch.Quantity, patch.ProdNo)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("product %d not found", patch.ProdNo)
		}
	}
	return tx.Commit(ctx)
}
