package view

import (
	"fmt"
	"strconv"

	"github.com/fjod/go_cart/cart-sync/internal/domain"
)

// DefaultCurrencySymbol prefixes the cart total.
const DefaultCurrencySymbol = "S$"

// MenuQuantities shows a per-item counter on the menu.
type MenuQuantities struct {
	order   []domain.ItemID
	targets map[domain.ItemID]*Element
}

func NewMenuQuantities() *MenuQuantities {
	return &MenuQuantities{targets: make(map[domain.ItemID]*Element)}
}

// Bind registers the counter element for id. Rebinding replaces the element.
func (m *MenuQuantities) Bind(id domain.ItemID, el *Element) {
	if _, ok := m.targets[id]; !ok {
		m.order = append(m.order, id)
	}
	m.targets[id] = el
}

func (m *MenuQuantities) Element(id domain.ItemID) *Element {
	return m.targets[id]
}

func (m *MenuQuantities) RenderSnapshot(s domain.CartSnapshot) {
	for _, id := range m.order {
		m.targets[id].SetText(strconv.Itoa(s.Quantity(id)))
	}
}

// Row holds the elements of one cart line.
type Row struct {
	Row       *Element
	Quantity  *Element
	LineTotal *Element
}

// NewRow returns a row with fresh elements.
func NewRow() Row {
	return Row{Row: NewElement(""), Quantity: NewElement(""), LineTotal: NewElement("")}
}

// CartRows shows one line per cart item, hiding lines whose quantity dropped to 0.
type CartRows struct {
	order []domain.ItemID
	rows  map[domain.ItemID]Row
}

func NewCartRows() *CartRows {
	return &CartRows{rows: make(map[domain.ItemID]Row)}
}

func (c *CartRows) Bind(id domain.ItemID, row Row) {
	if _, ok := c.rows[id]; !ok {
		c.order = append(c.order, id)
	}
	c.rows[id] = row
}

func (c *CartRows) Row(id domain.ItemID) (Row, bool) {
	r, ok := c.rows[id]
	return r, ok
}

func (c *CartRows) Len() int {
	return len(c.order)
}

// Render updates every row and returns how many are visible.
func (c *CartRows) Render(s domain.CartSnapshot) int {
	visible := 0
	for _, id := range c.order {
		row := c.rows[id]
		q := s.Quantity(id)
		if q <= 0 {
			row.Row.SetVisible(false)
			continue
		}
		row.Row.SetVisible(true)
		if row.Quantity != nil {
			row.Quantity.SetText(fmt.Sprintf("x %d", q))
		}
		if row.LineTotal != nil {
			row.LineTotal.SetText("$" + s.LineTotal(id).StringFixed(2))
		}
		visible++
	}
	return visible
}

// EmptyState toggles between the items container and the empty-cart message.
type EmptyState struct {
	Container *Element
	Message   *Element
}

func NewEmptyState() *EmptyState {
	return &EmptyState{Container: NewElement(""), Message: NewElement("Your cart is empty.")}
}

func (e *EmptyState) Render(visibleRows int) {
	empty := visibleRows == 0
	if e.Container != nil {
		e.Container.SetVisible(!empty)
	}
	if e.Message != nil {
		e.Message.SetVisible(empty)
	}
}

// CartView renders the rows and then the empty state, never interleaved.
type CartView struct {
	Rows  *CartRows
	Empty *EmptyState
}

func NewCartView() *CartView {
	return &CartView{Rows: NewCartRows(), Empty: NewEmptyState()}
}

func (v *CartView) RenderSnapshot(s domain.CartSnapshot) {
	visible := v.Rows.Render(s)
	v.Empty.Render(visible)
}

// NavbarBadge shows the aggregate count, or nothing at all when the cart is empty.
type NavbarBadge struct {
	Badge *Element
}

func NewNavbarBadge() *NavbarBadge {
	el := NewElement("")
	el.SetVisible(false)
	return &NavbarBadge{Badge: el}
}

func (b *NavbarBadge) RenderAggregate(a domain.Aggregate) {
	if a.Quantity > 0 {
		b.Badge.SetText(strconv.Itoa(a.Quantity))
		b.Badge.SetVisible(true)
		return
	}
	b.Badge.SetText("")
	b.Badge.SetVisible(false)
}

// TotalAmount shows the cart total with two decimals.
type TotalAmount struct {
	Total  *Element
	Symbol string
}

func NewTotalAmount(symbol string) *TotalAmount {
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	return &TotalAmount{Total: NewElement(symbol + " 0.00"), Symbol: symbol}
}

func (t *TotalAmount) RenderAggregate(a domain.Aggregate) {
	t.Total.SetText(t.Symbol + " " + a.TotalPrice.StringFixed(2))
}
