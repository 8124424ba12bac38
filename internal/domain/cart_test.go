package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewCartSnapshot_DerivesAggregates(t *testing.T) {
	s := NewCartSnapshot(
		map[ItemID]int{"1": 2, "2": 1},
		map[ItemID]decimal.Decimal{"1": decimal.RequireFromString("10.88"), "2": decimal.RequireFromString("3.50")},
	)

	assert.Equal(t, 3, s.AggregateQuantity)
	assert.Equal(t, "14.38", s.TotalPrice.StringFixed(2))
	assert.False(t, s.IsEmpty())
}

func TestNewCartSnapshot_DropsZeroQuantities(t *testing.T) {
	s := NewCartSnapshot(
		map[ItemID]int{"1": 0, "2": 1},
		map[ItemID]decimal.Decimal{"1": decimal.RequireFromString("5.44"), "2": decimal.RequireFromString("1.00")},
	)

	_, present := s.Quantities["1"]
	assert.False(t, present)
	assert.True(t, s.LineTotal("1").IsZero())
	assert.Equal(t, "1.00", s.TotalPrice.StringFixed(2))
}

func TestNewCartSnapshot_CopiesInput(t *testing.T) {
	quantities := map[ItemID]int{"1": 1}
	s := NewCartSnapshot(quantities, nil)

	quantities["1"] = 7

	assert.Equal(t, 1, s.Quantity("1"))
}

func TestCartSnapshot_AbsentItem(t *testing.T) {
	var s CartSnapshot

	assert.Equal(t, 0, s.Quantity("missing"))
	assert.True(t, s.LineTotal("missing").IsZero())
	assert.True(t, s.IsEmpty())
}

func TestCartSnapshot_LineTotalWithoutPrice(t *testing.T) {
	s := NewCartSnapshot(map[ItemID]int{"1": 2}, nil)

	assert.True(t, s.LineTotal("1").IsZero())
}
