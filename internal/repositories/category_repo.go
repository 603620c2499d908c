package repositories

import (
	"context"
	"errors"

	"retailops/internal/models"

	"github.com/jackc/pgx/v5"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByNo(ctx context.Context, cateNo string) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, cateNo string) error
	List(ctx context.Context, limit, offset int) ([]*models.Category, error)
	ListByParent(ctx context.Context, parentNo string) ([]*models.Category, error)
}

type categoryRepo struct {
	db Database
}

func NewCategoryRepo(db Database) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (cate_no, name, tier)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.Exec(ctx, query, category.CateNo, category.Name, category.Tier)
	return err
}

func (r *categoryRepo) GetByNo(ctx context.Context, cateNo string) (*models.Category, error) {
	category := &models.Category{}
	query := `
		SELECT cate_no, name, tier
		FROM categories
		WHERE cate_no = $1
	`
	err := r.db.QueryRow(ctx, query, cateNo).Scan(&category.CateNo, &category.Name, &category.Tier)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $1, tier = $2
		WHERE cate_no = $3
	`
	_, err := r.db.Exec(ctx, query, category.Name, category.Tier, category.CateNo)
	return err
}

func (r *categoryRepo) Delete(ctx context.Context, cateNo string) error {
	query := `DELETE FROM categories WHERE cate_no = $1`
	_, err := r.db.Exec(ctx, query, cateNo)
	return err
}

func (r *categoryRepo) List(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	query := `
		SELECT cate_no, name, tier
		FROM categories
		ORDER BY cate_no
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.CateNo, &category.Name, &category.Tier); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// ListByParent resolves children through the code structure: a sub
// category's last two significant digits name its top parent, a subsub
// category's first four digits name its sub parent.
func (r *categoryRepo) ListByParent(ctx context.Context, parentNo string) ([]*models.Category, error) {
	query := `
		SELECT cate_no, name, tier
		FROM categories
		WHERE (tier = $1 AND '0000' || substr(cate_no, 3, 2) = $2)
		   OR (tier = $3 AND '00' || substr(cate_no, 1, 4) = $2)
		ORDER BY cate_no
	`
	rows, err := r.db.Query(ctx, query, models.CategoryTierSub, parentNo, models.CategoryTierSubSub)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.CateNo, &category.Name, &category.Tier); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}
