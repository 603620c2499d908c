package models

import (
	"time"
)

// Sales status values for products
const (
	SalesStatusAbnormal = 0 // temporarily off sale due to a quality incident
	SalesStatusNormal   = 1
)

// Quality assurance tracking states
const (
	QAStatusNormal     = 1
	QAStatusNewProduct = 2
	QAStatusCase       = 3
	QAStatusLicense    = 4
)

// ProductSearchFilter holds search and filter criteria for product queries
type ProductSearchFilter struct {
	Query          string  `json:"query,omitempty"`           // Full-text search across name and description
	CategoryNo     *string `json:"category_no,omitempty"`     // Filter by category code
	ManufacturerID *int64  `json:"manufacturer_id,omitempty"` // Filter by manufacturer
	SalesStatus    *int    `json:"sales_status,omitempty"`    // Sales status filter
	SortBy         string  `json:"sort_by,omitempty"`         // Sort field: prod_no, name, cost_price
	SortOrder      string  `json:"sort_order,omitempty"`      // Sort order: asc, desc
	Limit          int     `json:"limit,omitempty"`           // Page size (default: 50)
	Offset         int     `json:"offset,omitempty"`          // Page offset
}

// ProductQuantityPatch is an explicit field-level patch for bulk
// quantity updates. Only the fields listed here may change.
type ProductQuantityPatch struct {
	ProdNo   int64 `json:"prod_no"`
	Quantity int   `json:"prod_quantity"`
}

type Product struct {
	ProdNo             int64     `json:"prod_no" db:"prod_no"`
	Name               string    `json:"prod_name" db:"name"`
	Description        *string   `json:"prod_desc" db:"description"`
	ImageKey           *string   `json:"prod_img" db:"image_key"`
	Quantity           int       `json:"prod_quantity" db:"quantity"`
	UnitOfMeasure      string    `json:"prod_unit" db:"unit_of_measure"`
	CategoryNo         string    `json:"prod_cate_no" db:"category_no"`
	CostPrice          float64   `json:"prod_cost_price" db:"cost_price"`
	RetailPrice        float64   `json:"prod_retail_price" db:"retail_price"`
	SellZone           string    `json:"prod_sell_zone" db:"sell_zone"`
	OuterQuantity      int       `json:"prod_outer_quantity" db:"outer_quantity"`
	InnerQuantity      int       `json:"prod_inner_quantity" db:"inner_quantity"`
	ManufacturerID     int64     `json:"prod_mfr_id" db:"manufacturer_id"`
	SalesStatus        int       `json:"prod_sales_status" db:"sales_status"`
	QAStatus           int       `json:"prod_quality_assurance_status" db:"qa_status"`
	EffectiveStartDate time.Time `json:"prod_effective_start_date" db:"effective_start_date"`
	EffectiveEndDate   time.Time `json:"prod_effective_end_date" db:"effective_end_date"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// CaseSize returns the number of units that make up one shippable case
// (outer case quantity times inner pack quantity). A zero result means
// the product has no case packaging configured; callers dividing by the
// case size must check for zero first.
func (p *Product) CaseSize() int {
	return p.OuterQuantity * p.InnerQuantity
}
