package models

import (
	"fmt"
	"regexp"
)

// Category tiers. The 6-digit category code structurally encodes the
// parent relationship; there is no separate parent foreign key.
const (
	CategoryTierTop    = 1
	CategoryTierSub    = 2
	CategoryTierSubSub = 3
)

var categoryCodePattern = regexp.MustCompile(`^\d{6}$`)

type Category struct {
	CateNo string `json:"cate_no" db:"cate_no"`
	Name   string `json:"cate_name" db:"name"`
	Tier   int    `json:"cate_type" db:"tier"`
}

// ValidateCategoryCode checks the fixed-width numeric code format.
func ValidateCategoryCode(code string) error {
	if !categoryCodePattern.MatchString(code) {
		return fmt.Errorf("category code must be exactly 6 digits, got %q", code)
	}
	return nil
}

// ParentCode derives the parent category code from this category's own
// code. Top-tier categories have no parent and return "".
//
// The encoding mirrors the catalog's numbering scheme:
//   - a sub category's parent is the top category "0000" + digits 3-4
//   - a subsub category's parent is the sub category "00" + digits 1-4,
//     so a subsub code's first four digits always equal its parent's
//     significant digits
func (c *Category) ParentCode() string {
	if len(c.CateNo) != 6 {
		return ""
	}
	switch c.Tier {
	case CategoryTierSub:
		return "0000" + c.CateNo[2:4]
	case CategoryTierSubSub:
		return "00" + c.CateNo[0:4]
	default:
		return ""
	}
}

// TopCode returns the top-tier category code this category rolls up to.
func (c *Category) TopCode() string {
	if len(c.CateNo) != 6 {
		return ""
	}
	switch c.Tier {
	case CategoryTierTop:
		return c.CateNo
	case CategoryTierSub:
		return "0000" + c.CateNo[2:4]
	default:
		return "0000" + c.CateNo[0:2]
	}
}
