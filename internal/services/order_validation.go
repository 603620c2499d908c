package services

import (
	"context"
	"fmt"
	"sort"

	"retailops/internal/models"

	"go.uber.org/zap"
)

// OrderLine is one (product, requested quantity) pair of a candidate
// order.
type OrderLine struct {
	Product  *models.Product
	Quantity int
}

// GroupKind selects which key the group validator partitions line items
// by.
type GroupKind int

const (
	GroupByCategoryKind GroupKind = iota
	GroupByManufacturerKind
)

// OrderValidator validates a candidate order against the layered rule
// system: product-level checks per line item, then aggregate checks per
// category group and per manufacturer group. Validation is pure: it
// never writes, and the same input against unchanged data yields an
// identical error list.
type OrderValidator interface {
	Validate(ctx context.Context, lines []OrderLine) ([]models.OrderError, error)
}

type orderValidator struct {
	resolver RuleResolver
	logger   *zap.Logger
}

func NewOrderValidator(resolver RuleResolver, logger *zap.Logger) OrderValidator {
	return &orderValidator{resolver: resolver, logger: logger}
}

// Validate runs every check and collects every failure; it never stops
// at the first error, so the caller sees the complete problem set in
// one round trip.
func (v *orderValidator) Validate(ctx context.Context, lines []OrderLine) ([]models.OrderError, error) {
	errs := []models.OrderError{}

	for _, line := range lines {
		lineErrs, err := v.validateLineItem(ctx, line)
		if err != nil {
			return nil, err
		}
		errs = append(errs, lineErrs...)
	}

	for _, kind := range []GroupKind{GroupByCategoryKind, GroupByManufacturerKind} {
		groupErrs, err := v.validateGroups(ctx, lines, kind)
		if err != nil {
			return nil, err
		}
		errs = append(errs, groupErrs...)
	}

	return errs, nil
}

// validateLineItem checks one (product, quantity) pair against the
// product-level rule. The checks after cannot_order are independent and
// may co-occur on the same item.
func (v *orderValidator) validateLineItem(ctx context.Context, line OrderLine) ([]models.OrderError, error) {
	prod := line.Product
	var errs []models.OrderError

	if line.Quantity <= 0 {
		// The remaining figures are meaningless for a non-positive
		// quantity, so the item reports only this.
		return []models.OrderError{{
			Code:    models.ErrCodeQuantityTooLow,
			Message: fmt.Sprintf("product %d quantity must be greater than 0 %s", prod.ProdNo, prod.UnitOfMeasure),
			Obj:     prod.ProdNo,
		}}, nil
	}

	rules, err := v.resolver.ResolveProduct(ctx, prod.ProdNo)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}
	if len(rules) > 1 {
		// Data-integrity condition: report it for this product and keep
		// validating the rest of the batch.
		v.logger.Warn("multiple active rules for product",
			zap.Int64("prod_no", prod.ProdNo),
			zap.Int("rule_count", len(rules)))
		return []models.OrderError{multipleRulesError("product", prod.ProdNo)}, nil
	}

	rule := rules[0]
	orderPrice := prod.CostPrice * float64(line.Quantity)
	caseSize := prod.CaseSize()

	if rule.CannotOrder {
		errs = append(errs, models.OrderError{
			Code:    models.ErrCodeCannotOrder,
			Message: fmt.Sprintf("the product %d cannot be ordered at this time", prod.ProdNo),
			Obj:     prod.ProdNo,
			ObjType: "product",
		})
	}

	// Case-based checks need a configured case size; outer*inner must
	// be positive whenever case rules apply.
	if caseSize == 0 && (rule.ShippedAsCase || rule.MinCaseQuantity != nil) {
		v.logger.Warn("case rule on product without case packaging",
			zap.Int64("prod_no", prod.ProdNo),
			zap.Int64("rule_id", rule.ID))
	}

	if caseSize > 0 && rule.ShippedAsCase && line.Quantity%caseSize != 0 {
		caseNum := float64(line.Quantity) / float64(caseSize)
		errs = append(errs, models.OrderError{
			Code:    models.ErrCodeNotAsCase,
			Message: fmt.Sprintf("product %d must be ordered in whole cases, currently %.4f cases", prod.ProdNo, caseNum),
			Obj:     prod.ProdNo,
			ObjType: "product",
		})
	}

	if rule.MinOrderAmount != nil && orderPrice < float64(*rule.MinOrderAmount) {
		errs = append(errs, models.OrderError{
			Code:    models.ErrCodeProductPriceTooLow,
			Message: fmt.Sprintf("product %d order amount %.0f is below the required minimum %d", prod.ProdNo, orderPrice, *rule.MinOrderAmount),
			Obj:     prod.ProdNo,
			ObjType: "product",
		})
	}

	if caseSize > 0 && rule.MinCaseQuantity != nil {
		caseNum := float64(line.Quantity) / float64(caseSize)
		if caseNum < float64(*rule.MinCaseQuantity) {
			errs = append(errs, models.OrderError{
				Code:    models.ErrCodeOrderQuantityTooLow,
				Message: fmt.Sprintf("product %d must be ordered at %d cases or more, currently %.4f cases", prod.ProdNo, *rule.MinCaseQuantity, caseNum),
				Obj:     prod.ProdNo,
				ObjType: "product",
			})
		}
	}

	return errs, nil
}

// validateGroups partitions the line items by category code or by
// manufacturer id and applies the aggregate rule checks to each group.
// Category and manufacturer rules share the same aggregation logic and
// differ only in the grouping key and rule type, so both run through
// this one routine.
func (v *orderValidator) validateGroups(ctx context.Context, lines []OrderLine, kind GroupKind) ([]models.OrderError, error) {
	var errs []models.OrderError

	switch kind {
	case GroupByCategoryKind:
		groups := GroupByCategory(lines)
		for _, cateNo := range sortedKeys(groups) {
			rules, err := v.resolver.ResolveCategory(ctx, cateNo)
			if err != nil {
				return nil, err
			}
			errs = append(errs, v.checkGroupRules(rules, "category", cateNo, groups[cateNo])...)
		}
	case GroupByManufacturerKind:
		groups := GroupByManufacturer(lines)
		for _, mfrID := range sortedKeys(groups) {
			rules, err := v.resolver.ResolveManufacturer(ctx, mfrID)
			if err != nil {
				return nil, err
			}
			errs = append(errs, v.checkGroupRules(rules, "manufacturer", mfrID, groups[mfrID])...)
		}
	}

	return errs, nil
}

// checkGroupRules applies the group-level checks for one subject: flag
// ambiguity, or with exactly one rule check cannot-order and the
// minimum aggregate order amount. Zero rules means no constraint.
func (v *orderValidator) checkGroupRules(rules []*models.OrderRule, objType string, obj any, group []OrderLine) []models.OrderError {
	if len(rules) == 0 {
		return nil
	}
	if len(rules) > 1 {
		v.logger.Warn("multiple active rules for subject",
			zap.String("obj_type", objType),
			zap.Any("obj", obj),
			zap.Int("rule_count", len(rules)))
		return []models.OrderError{multipleRulesError(objType, obj)}
	}

	rule := rules[0]
	if rule.CannotOrder {
		return []models.OrderError{{
			Code:    models.ErrCodeCannotOrder,
			Message: fmt.Sprintf("the %s %v cannot be ordered at this time", objType, obj),
			Obj:     obj,
			ObjType: objType,
		}}
	}
	if rule.MinOrderAmount != nil {
		orderPrice := 0.0
		for _, line := range group {
			orderPrice += line.Product.CostPrice * float64(line.Quantity)
		}
		if orderPrice < float64(*rule.MinOrderAmount) {
			return []models.OrderError{{
				Code:    models.ErrCodeGroupPriceTooLow,
				Message: fmt.Sprintf("%s %v order amount %.0f is below the required minimum %d", objType, obj, orderPrice, *rule.MinOrderAmount),
				Obj:     obj,
				ObjType: objType,
			}}
		}
	}
	return nil
}

func multipleRulesError(objType string, obj any) models.OrderError {
	return models.OrderError{
		Code:    models.ErrCodeMultipleRules,
		Message: fmt.Sprintf("multiple order rules found for %s %v", objType, obj),
		Obj:     obj,
		ObjType: objType,
	}
}

// GroupByCategory partitions line items by the product's category code.
// Together the groups recover exactly the input set.
func GroupByCategory(lines []OrderLine) map[string][]OrderLine {
	groups := make(map[string][]OrderLine)
	for _, line := range lines {
		groups[line.Product.CategoryNo] = append(groups[line.Product.CategoryNo], line)
	}
	return groups
}

// GroupByManufacturer partitions line items by the owning manufacturer.
// The same partition is reused to split a submitted order into one
// persisted order per manufacturer.
func GroupByManufacturer(lines []OrderLine) map[int64][]OrderLine {
	groups := make(map[int64][]OrderLine)
	for _, line := range lines {
		groups[line.Product.ManufacturerID] = append(groups[line.Product.ManufacturerID], line)
	}
	return groups
}

// sortedKeys gives a deterministic iteration order so repeated
// validation of the same input produces an identical error list.
func sortedKeys[K int64 | string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
