package repositories

import (
	"context"
	"errors"
	"time"

	"retailops/internal/models"

	"github.com/jackc/pgx/v5"
)

// RuleConflict describes a (subject, rule type) pair with more than one
// currently effective rule, which violates the rule store invariant.
type RuleConflict struct {
	Type      models.RuleType
	Subject   string
	RuleCount int
}

type OrderRuleRepository interface {
	Create(ctx context.Context, rule *models.OrderRule) error
	GetByID(ctx context.Context, id int64) (*models.OrderRule, error)
	Update(ctx context.Context, rule *models.OrderRule) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*models.OrderRule, error)
	FindActiveForProduct(ctx context.Context, prodNo int64, asOf time.Time) ([]*models.OrderRule, error)
	FindActiveForManufacturer(ctx context.Context, mfrID int64, asOf time.Time) ([]*models.OrderRule, error)
	FindActiveForCategory(ctx context.Context, cateNo string, asOf time.Time) ([]*models.OrderRule, error)
	FindConflicts(ctx context.Context, asOf time.Time) ([]RuleConflict, error)
}

type orderRuleRepo struct {
	db Database
}

func NewOrderRuleRepo(db Database) OrderRuleRepository {
	return &orderRuleRepo{db: db}
}

const orderRuleColumns = `id, rule_type, prod_no, manufacturer_id, category_no, cannot_order, shipped_as_case, min_order_amount, min_case_quantity, notes, effective_start_date, effective_end_date`

func scanOrderRule(row pgx.Row) (*models.OrderRule, error) {
	rule := &models.OrderRule{}
	err := row.Scan(&rule.ID, &rule.Type, &rule.ProdNo, &rule.ManufacturerID, &rule.CategoryNo, &rule.CannotOrder, &rule.ShippedAsCase, &rule.MinOrderAmount, &rule.MinCaseQuantity, &rule.Notes, &rule.EffectiveStartDate, &rule.EffectiveEndDate)
	if err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *orderRuleRepo) Create(ctx context.Context, rule *models.OrderRule) error {
	query := `
		INSERT INTO order_rules (rule_type, prod_no, manufacturer_id, category_no, cannot_order, shipped_as_case, min_order_amount, min_case_quantity, notes, effective_start_date, effective_end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return r.db.QueryRow(ctx, query, rule.Type, rule.ProdNo, rule.ManufacturerID, rule.CategoryNo, rule.CannotOrder, rule.ShippedAsCase, rule.MinOrderAmount, rule.MinCaseQuantity, rule.Notes, rule.EffectiveStartDate, rule.EffectiveEndDate).Scan(&rule.ID)
}

func (r *orderRuleRepo) GetByID(ctx context.Context, id int64) (*models.OrderRule, error) {
	query := `
		SELECT ` + orderRuleColumns + `
		FROM order_rules
		WHERE id = $1
	`
	rule, err := scanOrderRule(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *orderRuleRepo) Update(ctx context.Context, rule *models.OrderRule) error {
	query := `
		UPDATE order_rules
		SET rule_type = $1, prod_no = $2, manufacturer_id = $3, category_no = $4, cannot_order = $5, shipped_as_case = $6, min_order_amount = $7, min_case_quantity = $8, notes = $9, effective_start_date = $10, effective_end_date = $11
		WHERE id = $12
	`
	_, err := r.db.Exec(ctx, query, rule.Type, rule.ProdNo, rule.ManufacturerID, rule.CategoryNo, rule.CannotOrder, rule.ShippedAsCase, rule.MinOrderAmount, rule.MinCaseQuantity, rule.Notes, rule.EffectiveStartDate, rule.EffectiveEndDate, rule.ID)
	return err
}

func (r *orderRuleRepo) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM order_rules WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *orderRuleRepo) List(ctx context.Context, limit, offset int) ([]*models.OrderRule, error) {
	query := `
		SELECT ` + orderRuleColumns + `
		FROM order_rules
		ORDER BY id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRules(rows)
}

// FindActiveForProduct returns every Product-type rule effective at asOf
// for the given product. Callers treat more than one result as a
// data-integrity error; the repository never picks a winner.
func (r *orderRuleRepo) FindActiveForProduct(ctx context.Context, prodNo int64, asOf time.Time) ([]*models.OrderRule, error) {
	query := `
		SELECT ` + orderRuleColumns + `
		FROM order_rules
		WHERE rule_type = $1 AND prod_no = $2 AND effective_start_date <= $3 AND effective_end_date >= $3
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, models.RuleTypeProduct, prodNo, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRules(rows)
}

func (r *orderRuleRepo) FindActiveForManufacturer(ctx context.Context, mfrID int64, asOf time.Time) ([]*models.OrderRule, error) {
	query := `
		SELECT ` + orderRuleColumns + `
		FROM order_rules
		WHERE rule_type = $1 AND manufacturer_id = $2 AND effective_start_date <= $3 AND effective_end_date >= $3
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, models.RuleTypeManufacturer, mfrID, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRules(rows)
}

func (r *orderRuleRepo) FindActiveForCategory(ctx context.Context, cateNo string, asOf time.Time) ([]*models.OrderRule, error) {
	query := `
		SELECT ` + orderRuleColumns + `
		FROM order_rules
		WHERE rule_type = $1 AND category_no = $2 AND effective_start_date <= $3 AND effective_end_date >= $3
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, models.RuleTypeCategory, cateNo, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRules(rows)
}

// FindConflicts lists every (subject, type) pair holding more than one
// rule effective at asOf. Used by the daily rule audit job.
func (r *orderRuleRepo) FindConflicts(ctx context.Context, asOf time.Time) ([]RuleConflict, error) {
	query := `
		SELECT rule_type, COALESCE(prod_no::text, COALESCE(manufacturer_id::text, category_no)) AS subject, COUNT(*) AS rule_count
		FROM order_rules
		WHERE effective_start_date <= $1 AND effective_end_date >= $1
		GROUP BY rule_type, subject
		HAVING COUNT(*) > 1
		ORDER BY rule_type, subject
	`
	rows, err := r.db.Query(ctx, query, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conflicts []RuleConflict
	for rows.Next() {
		var c RuleConflict
		if err := rows.Scan(&c.Type, &c.Subject, &c.RuleCount); err != nil {
			return nil, err
		}
		conflicts = append(conflicts, c)
	}
	return conflicts, rows.Err()
}

func collectRules(rows pgx.Rows) ([]*models.OrderRule, error) {
	var rules []*models.OrderRule
	for rows.Next() {
		rule, err := scanOrderRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
