package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderRuleActiveAt(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	rule := &OrderRule{EffectiveStartDate: start, EffectiveEndDate: end}

	assert.False(t, rule.ActiveAt(start.Add(-time.Second)))
	assert.True(t, rule.ActiveAt(start), "window start is inclusive")
	assert.True(t, rule.ActiveAt(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)))
	assert.True(t, rule.ActiveAt(end), "window end is inclusive")
	assert.False(t, rule.ActiveAt(end.Add(time.Second)))
}

func TestOrderRuleOpenEndedWindow(t *testing.T) {
	rule := &OrderRule{
		EffectiveStartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EffectiveEndDate:   RuleEffectiveEndSentinel,
	}
	assert.True(t, rule.ActiveAt(time.Date(2500, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestRuleTypeString(t *testing.T) {
	assert.Equal(t, "product", RuleTypeProduct.String())
	assert.Equal(t, "manufacturer", RuleTypeManufacturer.String())
	assert.Equal(t, "category", RuleTypeCategory.String())
	assert.Equal(t, "unknown", RuleType(9).String())
}
