package view

import (
	"bytes"
	"testing"

	"github.com/fjod/go_cart/cart-sync/internal/domain"
	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(quantities map[domain.ItemID]int, totals map[domain.ItemID]string) domain.CartSnapshot {
	lineTotals := make(map[domain.ItemID]decimal.Decimal, len(totals))
	for id, v := range totals {
		lineTotals[id] = decimal.RequireFromString(v)
	}
	return domain.NewCartSnapshot(quantities, lineTotals)
}

func aggregateOf(s domain.CartSnapshot) domain.Aggregate {
	return domain.Aggregate{Quantity: s.AggregateQuantity, TotalPrice: s.TotalPrice}
}

func render(p *Page, s domain.CartSnapshot) {
	p.Menu.RenderSnapshot(s)
	p.Cart.RenderSnapshot(s)
	p.Badge.RenderAggregate(aggregateOf(s))
	p.Total.RenderAggregate(aggregateOf(s))
}

func dump(t *testing.T, p *Page) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, p.Dump(&buf))
	return buf.Bytes()
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestPage_Golden(t *testing.T) {
	tests := []struct {
		name string
		snap domain.CartSnapshot
	}{
		{"empty_page", domain.CartSnapshot{}},
		{"one_item", snapshot(map[domain.ItemID]int{"I1": 1}, map[domain.ItemID]string{"I1": "5.44"})},
		{"two_items", snapshot(
			map[domain.ItemID]int{"I1": 2, "I2": 1},
			map[domain.ItemID]string{"I1": "10.88", "I2": "3.5"},
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage([]domain.ItemID{"I1", "I2"}, "")
			render(p, tt.snap)
			newGoldie(t).Assert(t, tt.name, dump(t, p))
		})
	}
}

func TestPage_RenderIsIdempotent(t *testing.T) {
	s := snapshot(map[domain.ItemID]int{"I1": 2, "I2": 1}, map[domain.ItemID]string{"I1": "10.88", "I2": "3.50"})
	p := NewPage([]domain.ItemID{"I1", "I2"}, "")

	render(p, s)
	first := dump(t, p)
	render(p, s)
	second := dump(t, p)

	assert.Equal(t, string(first), string(second))
}

func TestCartRows_QuantityDropsToZero(t *testing.T) {
	p := NewPage([]domain.ItemID{"I1"}, "")

	render(p, snapshot(map[domain.ItemID]int{"I1": 2}, map[domain.ItemID]string{"I1": "10.88"}))
	row, ok := p.Cart.Rows.Row("I1")
	require.True(t, ok)
	assert.True(t, row.Row.Visible())
	assert.Equal(t, "x 2", row.Quantity.Text())

	render(p, snapshot(map[domain.ItemID]int{"I1": 1}, map[domain.ItemID]string{"I1": "5.44"}))
	assert.True(t, row.Row.Visible())
	assert.Equal(t, "x 1", row.Quantity.Text())
	assert.Equal(t, "$5.44", row.LineTotal.Text())
	assert.False(t, p.Cart.Empty.Message.Visible())

	render(p, snapshot(map[domain.ItemID]int{}, nil))
	assert.False(t, row.Row.Visible())
	assert.False(t, p.Cart.Empty.Container.Visible())
	assert.True(t, p.Cart.Empty.Message.Visible())
}

func TestCartRows_ZeroQuantityNeverVisible(t *testing.T) {
	ids := []domain.ItemID{"a", "b", "c"}
	quantities := []map[domain.ItemID]int{
		{"a": 0, "b": 0, "c": 0},
		{"a": 1, "b": 0, "c": 3},
		{"a": 0, "b": 2},
		{},
	}
	p := NewPage(ids, "")

	for _, q := range quantities {
		render(p, snapshot(q, nil))
		for _, id := range ids {
			row, _ := p.Cart.Rows.Row(id)
			assert.Equal(t, q[id] > 0, row.Row.Visible(), "item %s with quantity %d", id, q[id])
		}
	}
}

func TestCartRows_MissingLineTotalRendersZero(t *testing.T) {
	p := NewPage([]domain.ItemID{"I1"}, "")

	render(p, snapshot(map[domain.ItemID]int{"I1": 1}, nil))

	row, _ := p.Cart.Rows.Row("I1")
	assert.Equal(t, "$0.00", row.LineTotal.Text())
}

func TestCartRows_RowWithoutTextElements(t *testing.T) {
	rows := NewCartRows()
	rows.Bind("I1", Row{Row: NewElement("")})

	visible := rows.Render(snapshot(map[domain.ItemID]int{"I1": 1}, nil))
	assert.Equal(t, 1, visible)
}

func TestMenuQuantities_UnknownItemsAreZero(t *testing.T) {
	m := NewMenuQuantities()
	el := NewElement("5")
	m.Bind("I9", el)

	m.RenderSnapshot(snapshot(map[domain.ItemID]int{"I1": 4}, nil))

	assert.Equal(t, "0", el.Text())
}

func TestMenuQuantities_Rebind(t *testing.T) {
	m := NewMenuQuantities()
	old := NewElement("")
	fresh := NewElement("")
	m.Bind("I1", old)
	m.Bind("I1", fresh)

	m.RenderSnapshot(snapshot(map[domain.ItemID]int{"I1": 4}, nil))

	assert.Equal(t, "4", fresh.Text())
	assert.Equal(t, "", old.Text())
	assert.Same(t, fresh, m.Element("I1"))
}

func TestNavbarBadge_HiddenAtZero(t *testing.T) {
	b := NewNavbarBadge()

	b.RenderAggregate(domain.Aggregate{Quantity: 2})
	assert.True(t, b.Badge.Visible())
	assert.Equal(t, "2", b.Badge.Text())

	b.RenderAggregate(domain.Aggregate{Quantity: 0})
	assert.False(t, b.Badge.Visible())
	assert.Equal(t, "", b.Badge.Text())
}

func TestTotalAmount_Format(t *testing.T) {
	total := NewTotalAmount("$")

	total.RenderAggregate(domain.Aggregate{TotalPrice: decimal.RequireFromString("5.4")})
	assert.Equal(t, "$ 5.40", total.Total.Text())

	total.RenderAggregate(domain.Aggregate{TotalPrice: decimal.RequireFromString("12.345")})
	assert.Equal(t, "$ 12.35", total.Total.Text())
}

func TestEmptyState_NilElements(t *testing.T) {
	e := &EmptyState{}
	assert.NotPanics(t, func() { e.Render(0) })
}

func TestRenderers_NilElementsDoNotPanic(t *testing.T) {
	m := NewMenuQuantities()
	m.Bind("I1", nil)

	rows := NewCartRows()
	rows.Bind("I1", Row{})
	rows.Bind("I2", Row{Row: nil, Quantity: NewElement(""), LineTotal: nil})

	badge := &NavbarBadge{}
	total := &TotalAmount{Symbol: "S$"}

	s := snapshot(map[domain.ItemID]int{"I1": 1, "I2": 2}, map[domain.ItemID]string{"I1": "1.00", "I2": "4.00"})
	assert.NotPanics(t, func() {
		m.RenderSnapshot(s)
		rows.Render(s)
		rows.Render(snapshot(nil, nil))
		badge.RenderAggregate(aggregateOf(s))
		total.RenderAggregate(aggregateOf(s))
	})

	row, _ := rows.Row("I2")
	assert.Equal(t, "x 2", row.Quantity.Text())

	var el *Element
	assert.Equal(t, "hidden", el.String())
	assert.Equal(t, "", el.Text())
}
