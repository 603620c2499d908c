package models

import (
	"time"
)

// RuleType tags which kind of subject an OrderRule applies to. Exactly
// one of the three subject references on the rule is populated, matching
// the type.
type RuleType int

const (
	RuleTypeProduct      RuleType = 0
	RuleTypeManufacturer RuleType = 1
	RuleTypeCategory     RuleType = 2
)

func (t RuleType) String() string {
	switch t {
	case RuleTypeProduct:
		return "product"
	case RuleTypeManufacturer:
		return "manufacturer"
	case RuleTypeCategory:
		return "category"
	}
	return "unknown"
}

// RuleEffectiveEndSentinel marks a rule with no scheduled end date.
var RuleEffectiveEndSentinel = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

// OrderRule is the canonical ordering rule shape shared by product,
// category and manufacturer subjects.
//
// ShippedAsCase polarity: true means the subject must be ordered in
// whole cases, i.e. the requested quantity has to be an exact multiple
// of the product's case size.
type OrderRule struct {
	ID                 int64     `json:"or_id" db:"id"`
	Type               RuleType  `json:"or_type" db:"rule_type"`
	ProdNo             *int64    `json:"or_prod_no" db:"prod_no"`
	ManufacturerID     *int64    `json:"or_mfr_id" db:"manufacturer_id"`
	CategoryNo         *string   `json:"or_prod_cate_no" db:"category_no"`
	CannotOrder        bool      `json:"or_cannot_order" db:"cannot_order"`
	ShippedAsCase      bool      `json:"or_shipped_as_case" db:"shipped_as_case"`
	MinOrderAmount     *int64    `json:"or_order_price" db:"min_order_amount"`
	MinCaseQuantity    *int64    `json:"or_order_cases_quantity" db:"min_case_quantity"`
	Notes              *string   `json:"or_notes" db:"notes"`
	EffectiveStartDate time.Time `json:"or_effective_start_date" db:"effective_start_date"`
	EffectiveEndDate   time.Time `json:"or_effective_end_date" db:"effective_end_date"`
}

// ActiveAt reports whether the rule's effective window covers t.
func (r *OrderRule) ActiveAt(t time.Time) bool {
	return !t.Before(r.EffectiveStartDate) && !t.After(r.EffectiveEndDate)
}
