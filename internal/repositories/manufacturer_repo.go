package repositories

import (
	"context"
	"errors"

	"retailops/internal/models"

	"github.com/jackc/pgx/v5"
)

type ManufacturerRepository interface {
	Create(ctx context.Context, manufacturer *models.Manufacturer) error
	GetByID(ctx context.Context, id int64) (*models.Manufacturer, error)
	GetByFullID(ctx context.Context, fullID string) (*models.Manufacturer, error)
	Update(ctx context.Context, manufacturer *models.Manufacturer) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*models.Manufacturer, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Manufacturer, error)
}

type manufacturerRepo struct {
	db Database
}

func NewManufacturerRepo(db Database) ManufacturerRepository {
	return &manufacturerRepo{db: db}
}

const manufacturerColumns = `mfr_id, main_id, sub_id, name, location, user_id, created_at, updated_at`

func scanManufacturer(row pgx.Row) (*models.Manufacturer, error) {
	m := &models.Manufacturer{}
	err := row.Scan(&m.ID, &m.MainID, &m.SubID, &m.Name, &m.Location, &m.UserID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *manufacturerRepo) Create(ctx context.Context, manufacturer *models.Manufacturer) error {
	query := `
		INSERT INTO manufacturers (main_id, sub_id, name, location, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING mfr_id
	`
	return r.db.QueryRow(ctx, query, manufacturer.MainID, manufacturer.SubID, manufacturer.Name, manufacturer.Location, manufacturer.UserID).Scan(&manufacturer.ID)
}

func (r *manufacturerRepo) GetByID(ctx context.Context, id int64) (*models.Manufacturer, error) {
	query := `
		SELECT ` + manufacturerColumns + `
		FROM manufacturers
		WHERE mfr_id = $1
	`
	manufacturer, err := scanManufacturer(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return manufacturer, nil
}

func (r *manufacturerRepo) GetByFullID(ctx context.Context, fullID string) (*models.Manufacturer, error) {
	query := `
		SELECT ` + manufacturerColumns + `
		FROM manufacturers
		WHERE main_id || sub_id = $1
	`
	manufacturer, err := scanManufacturer(r.db.QueryRow(ctx, query, fullID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return manufacturer, nil
}

func (r *manufacturerRepo) Update(ctx context.Context, manufacturer *models.Manufacturer) error {
	query := `
		UPDATE manufacturers
		SET main_id = $1, sub_id = $2, name = $3, location = $4, user_id = $5, updated_at = NOW()
		WHERE mfr_id = $6
	`
	_, err := r.db.Exec(ctx, query, manufacturer.MainID, manufacturer.SubID, manufacturer.Name, manufacturer.Location, manufacturer.UserID, manufacturer.ID)
	return err
}

func (r *manufacturerRepo) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM manufacturers WHERE mfr_id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *manufacturerRepo) List(ctx context.Context, limit, offset int) ([]*models.Manufacturer, error) {
	query := `
		SELECT ` + manufacturerColumns + `
		FROM manufacturers
		ORDER BY mfr_id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var manufacturers []*models.Manufacturer
	for rows.Next() {
		m, err := scanManufacturer(rows)
		if err != nil {
			return nil, err
		}
		manufacturers = append(manufacturers, m)
	}
	return manufacturers, rows.Err()
}

func (r *manufacturerRepo) ListByUser(ctx context.Context, userID int64) ([]*models.Manufacturer, error) {
	query := `
		SELECT ` + manufacturerColumns + `
		FROM manufacturers
		WHERE user_id = $1
		ORDER BY mfr_id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var manufacturers []*models.Manufacturer
	for rows.Next() {
		m, err := scanManufacturer(rows)
		if err != nil {
			return nil, err
		}
		manufacturers = append(manufacturers, m)
	}
	return manufacturers, rows.Err()
}
