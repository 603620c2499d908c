package models

// Validation error codes returned by the order engine. These are part
// of the API contract and rendered directly to callers.
const (
	ErrCodeProductNotExist     = "product_not_exist"
	ErrCodeQuantityTooLow      = "quantity_too_low"
	ErrCodeCannotOrder         = "cannot_order"
	ErrCodeNotAsCase           = "not_as_case"
	ErrCodeProductPriceTooLow  = "order_product_price_too_low"
	ErrCodeOrderQuantityTooLow = "order_quantity_too_low"
	ErrCodeMultipleRules       = "multiple_rules"
	ErrCodeGroupPriceTooLow    = "order_price_too_low"
)

// OrderError is one structured, user-facing validation failure. Obj is
// the offending subject's natural key: the product number or
// manufacturer id as an integer, the category code as a string.
type OrderError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Obj     any    `json:"obj,omitempty"`
	ObjType string `json:"obj_type,omitempty"`
}
