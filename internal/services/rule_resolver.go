package services

import (
	"context"
	"fmt"
	"time"

	"retailops/internal/models"
	"retailops/internal/repositories"
)

// RuleResolver retrieves the order rules currently in effect for a
// subject. It always returns the complete set of matches: more than one
// active rule for the same subject is a data-integrity condition the
// caller must detect and report, never something the resolver hides by
// picking a "best" rule.
type RuleResolver interface {
	ResolveProduct(ctx context.Context, prodNo int64) ([]*models.OrderRule, error)
	ResolveManufacturer(ctx context.Context, mfrID int64) ([]*models.OrderRule, error)
	ResolveCategory(ctx context.Context, cateNo string) ([]*models.OrderRule, error)
}

type ruleResolver struct {
	ruleRepo repositories.OrderRuleRepository
	now      func() time.Time
}

// NewRuleResolver creates a rule resolver. Rule lookups are never
// cached: effectiveness is date-sensitive and must reflect "now" at
// validation time.
func NewRuleResolver(ruleRepo repositories.OrderRuleRepository) RuleResolver {
	return &ruleResolver{ruleRepo: ruleRepo, now: time.Now}
}

func (r *ruleResolver) ResolveProduct(ctx context.Context, prodNo int64) ([]*models.OrderRule, error) {
	rules, err := r.ruleRepo.FindActiveForProduct(ctx, prodNo, r.now())
	if err != nil {
		return nil, fmt.Errorf("resolve product rules for %d: %w", prodNo, err)
	}
	return rules, nil
}

func (r *ruleResolver) ResolveManufacturer(ctx context.Context, mfrID int64) ([]*models.OrderRule, error) {
	rules, err := r.ruleRepo.FindActiveForManufacturer(ctx, mfrID, r.now())
	if err != nil {
		return nil, fmt.Errorf("resolve manufacturer rules for %d: %w", mfrID, err)
	}
	return rules, nil
}

func (r *ruleResolver) ResolveCategory(ctx context.Context, cateNo string) ([]*models.OrderRule, error) {
	rules, err := r.ruleRepo.FindActiveForCategory(ctx, cateNo, r.now())
	if err != nil {
		return nil, fmt.Errorf("resolve category rules for %s: %w", cateNo, err)
	}
	return rules, nil
}
