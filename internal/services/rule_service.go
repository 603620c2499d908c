package services

import (
	"context"
	"fmt"
	"time"

	"retailops/internal/models"
	"retailops/internal/repositories"
)

// RuleService manages the ordering rule book. Each rule targets exactly
// one subject kind; the subject must exist in the catalog when the rule
// is written.
type RuleService interface {
	CreateRule(ctx context.Context, rule *models.OrderRule) error
	GetRule(ctx context.Context, id int64) (*models.OrderRule, error)
	UpdateRule(ctx context.Context, rule *models.OrderRule) error
	DeleteRule(ctx context.Context, id int64) error
	ListRules(ctx context.Context, limit, offset int) ([]*models.OrderRule, error)
	FindConflicts(ctx context.Context, asOf time.Time) ([]repositories.RuleConflict, error)
}

type ruleService struct {
	ruleRepo repositories.OrderRuleRepository
	catalog  CatalogService
}

func NewRuleService(ruleRepo repositories.OrderRuleRepository, catalog CatalogService) RuleService {
	return &ruleService{ruleRepo: ruleRepo, catalog: catalog}
}

func (s *ruleService) CreateRule(ctx context.Context, rule *models.OrderRule) error {
	if err := s.checkRule(ctx, rule); err != nil {
		return err
	}
	return s.ruleRepo.Create(ctx, rule)
}

func (s *ruleService) GetRule(ctx context.Context, id int64) (*models.OrderRule, error) {
	return s.ruleRepo.GetByID(ctx, id)
}

func (s *ruleService) UpdateRule(ctx context.Context, rule *models.OrderRule) error {
	if err := s.checkRule(ctx, rule); err != nil {
		return err
	}
	existing, err := s.ruleRepo.GetByID(ctx, rule.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("rule %d not found", rule.ID)
	}
	return s.ruleRepo.Update(ctx, rule)
}

func (s *ruleService) DeleteRule(ctx context.Context, id int64) error {
	return s.ruleRepo.Delete(ctx, id)
}

func (s *ruleService) ListRules(ctx context.Context, limit, offset int) ([]*models.OrderRule, error) {
	return s.ruleRepo.List(ctx, limit, offset)
}

func (s *ruleService) FindConflicts(ctx context.Context, asOf time.Time) ([]repositories.RuleConflict, error) {
	return s.ruleRepo.FindConflicts(ctx, asOf)
}

// checkRule enforces structural validity: one subject matching the rule
// type, a known subject, and an ordered effective window. A zero end
// date is normalized to the open-ended sentinel.
func (s *ruleService) checkRule(ctx context.Context, rule *models.OrderRule) error {
	switch rule.Type {
	case models.RuleTypeProduct:
		if rule.ProdNo == nil || rule.ManufacturerID != nil || rule.CategoryNo != nil {
			return fmt.Errorf("product rule must set prod_no and nothing else")
		}
		product, err := s.catalog.GetProduct(ctx, *rule.ProdNo)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("product %d not found", *rule.ProdNo)
		}
	case models.RuleTypeManufacturer:
		if rule.ManufacturerID == nil || rule.ProdNo != nil || rule.CategoryNo != nil {
			return fmt.Errorf("manufacturer rule must set manufacturer_id and nothing else")
		}
		mfr, err := s.catalog.GetManufacturer(ctx, *rule.ManufacturerID)
		if err != nil {
			return err
		}
		if mfr == nil {
			return fmt.Errorf("manufacturer %d not found", *rule.ManufacturerID)
		}
	case models.RuleTypeCategory:
		if rule.CategoryNo == nil || rule.ProdNo != nil || rule.ManufacturerID != nil {
			return fmt.Errorf("category rule must set category_no and nothing else")
		}
		category, err := s.catalog.GetCategory(ctx, *rule.CategoryNo)
		if err != nil {
			return err
		}
		if category == nil {
			return fmt.Errorf("category %s not found", *rule.CategoryNo)
		}
	default:
		return fmt.Errorf("unknown rule type %d", rule.Type)
	}

	if rule.EffectiveEndDate.IsZero() {
		rule.EffectiveEndDate = models.RuleEffectiveEndSentinel
	}
	if rule.EffectiveStartDate.After(rule.EffectiveEndDate) {
		return fmt.Errorf("effective start date is after end date")
	}

	if rule.MinOrderAmount != nil && *rule.MinOrderAmount < 0 {
		return fmt.Errorf("minimum order amount cannot be negative")
	}
	if rule.MinCaseQuantity != nil && *rule.MinCaseQuantity < 0 {
		return fmt.Errorf("minimum case quantity cannot be negative")
	}
	return nil
}
