package models

import (
	"fmt"
	"regexp"
	"time"
)

var (
	mfrMainIDPattern = regexp.MustCompile(`^\d{8}$`)
	mfrSubIDPattern  = regexp.MustCompile(`^\d{2}$`)
)

type Manufacturer struct {
	ID        int64     `json:"mfr_id" db:"mfr_id"`
	MainID    string    `json:"mfr_main_id" db:"main_id"`
	SubID     string    `json:"mfr_sub_id" db:"sub_id"`
	Name      string    `json:"mfr_name" db:"name"`
	Location  string    `json:"mfr_location" db:"location"`
	UserID    *int64    `json:"mfr_user_id" db:"user_id"` // ordering user responsible for this manufacturer
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullID is the composite identifier: 8-digit main id concatenated with
// the 2-digit sub id. It is unique across manufacturers.
func (m *Manufacturer) FullID() string {
	return m.MainID + m.SubID
}

// ValidateIDs checks the fixed-width main/sub id formats.
func (m *Manufacturer) ValidateIDs() error {
	if !mfrMainIDPattern.MatchString(m.MainID) {
		return fmt.Errorf("manufacturer main id must be exactly 8 digits, got %q", m.MainID)
	}
	if !mfrSubIDPattern.MatchString(m.SubID) {
		return fmt.Errorf("manufacturer sub id must be exactly 2 digits, got %q", m.SubID)
	}
	return nil
}
