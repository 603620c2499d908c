package models

import (
	"time"

	"github.com/google/uuid"
)

// Line item lifecycle states. Items are created Generated; the order
// export job moves them to Submitted once the order sheet has been sent.
const (
	LineItemGenerated = 0
	LineItemSubmitted = 1
	LineItemClosed    = 2
	LineItemCancelled = 3
)

type OrderLineItem struct {
	ID        uuid.UUID `json:"op_id" db:"id"`
	OrderNo   int64     `json:"op_od_no" db:"order_no"`
	ProdNo    int64     `json:"op_prod_no" db:"prod_no"`
	Quantity  int       `json:"op_quantity" db:"quantity"`
	Status    int       `json:"op_status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
