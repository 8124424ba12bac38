package domain

import "github.com/shopspring/decimal"

// ItemID identifies a menu item. It is the join key between renderers and snapshots.
type ItemID string

// CartSnapshot is the authoritative cart state as returned by one fetch.
// It is replaced wholesale on every reconciliation and never patched in place.
type CartSnapshot struct {
	Seq               uint64
	Quantities        map[ItemID]int
	LineTotals        map[ItemID]decimal.Decimal
	AggregateQuantity int
	TotalPrice        decimal.Decimal
}

// NewCartSnapshot copies the given maps, drops non-positive quantities and
// derives the aggregate fields.
func NewCartSnapshot(quantities map[ItemID]int, lineTotals map[ItemID]decimal.Decimal) CartSnapshot {
	s := CartSnapshot{
		Quantities: make(map[ItemID]int, len(quantities)),
		LineTotals: make(map[ItemID]decimal.Decimal, len(lineTotals)),
		TotalPrice: decimal.Zero,
	}
	for id, q := range quantities {
		if q <= 0 {
			continue
		}
		s.Quantities[id] = q
		s.AggregateQuantity += q
	}
	for id, total := range lineTotals {
		if _, ok := s.Quantities[id]; !ok {
			continue
		}
		s.LineTotals[id] = total
		s.TotalPrice = s.TotalPrice.Add(total)
	}
	return s
}

// Quantity returns the quantity for id, 0 when absent.
func (s CartSnapshot) Quantity(id ItemID) int {
	return s.Quantities[id]
}

// LineTotal returns the line total for id. Items that are not in the cart
// always report zero so stale totals are never shown.
func (s CartSnapshot) LineTotal(id ItemID) decimal.Decimal {
	if s.Quantity(id) <= 0 {
		return decimal.Zero
	}
	total, ok := s.LineTotals[id]
	if !ok {
		return decimal.Zero
	}
	return total
}

// IsEmpty reports whether no item has a positive quantity.
func (s CartSnapshot) IsEmpty() bool {
	return s.AggregateQuantity == 0
}

// Aggregate is the navbar summary returned by the cart quantity endpoint.
type Aggregate struct {
	Seq        uint64
	Quantity   int
	TotalPrice decimal.Decimal
}
