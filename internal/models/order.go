package models

import (
	"time"
)

// Warehouse storage fee recipients
const (
	StorageFeeNoCharge     = 0
	StorageFeeManufacturer = 1
	StorageFeeCustomer     = 2
)

type Order struct {
	OrderNo             int64     `json:"od_no" db:"order_no"`
	ManufacturerID      int64     `json:"od_mfr_id" db:"manufacturer_id"`
	OrderDate           time.Time `json:"od_date" db:"order_date"`
	ExpectedArrivalDate time.Time `json:"od_except_arrival_date" db:"expected_arrival_date"`
	HasContactForm      bool      `json:"od_has_contact_form" db:"has_contact_form"`
	ContactFormNo       *int64    `json:"od_contact_form_no" db:"contact_form_no"`
	StorageFeeRecipient int       `json:"od_warehouse_storage_fee_recipient" db:"storage_fee_recipient"`
	Notes               *string   `json:"od_notes" db:"notes"`
	ContactFormNotes    *string   `json:"od_contact_form_notes" db:"contact_form_notes"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// OrderWithItems carries one manufacturer-scoped order together with its
// line items, used for all-or-nothing batch creation.
type OrderWithItems struct {
	Order *Order
	Items []*OrderLineItem
}
