package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManufacturerFullID(t *testing.T) {
	m := &Manufacturer{MainID: "12345678", SubID: "01"}
	assert.Equal(t, "1234567801", m.FullID())
}

func TestManufacturerValidateIDs(t *testing.T) {
	tests := []struct {
		name   string
		mainID string
		subID  string
		valid  bool
	}{
		{"valid", "12345678", "01", true},
		{"main id too short", "1234567", "01", false},
		{"main id too long", "123456789", "01", false},
		{"main id non numeric", "1234567a", "01", false},
		{"sub id too short", "12345678", "1", false},
		{"sub id too long", "12345678", "001", false},
		{"sub id non numeric", "12345678", "a1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Manufacturer{MainID: tt.mainID, SubID: tt.subID}
			err := m.ValidateIDs()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
