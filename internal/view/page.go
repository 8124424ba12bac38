package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/fjod/go_cart/cart-sync/internal/domain"
)

// Page is every view of one cart: menu counters, cart lines, badge and total.
type Page struct {
	Menu  *MenuQuantities
	Cart  *CartView
	Badge *NavbarBadge
	Total *TotalAmount
}

// NewPage builds a page with a menu counter and a cart row for each item.
func NewPage(items []domain.ItemID, currencySymbol string) *Page {
	p := &Page{
		Menu:  NewMenuQuantities(),
		Cart:  NewCartView(),
		Badge: NewNavbarBadge(),
		Total: NewTotalAmount(currencySymbol),
	}
	for _, id := range items {
		p.Menu.Bind(id, NewElement("0"))
		row := NewRow()
		row.Row.SetVisible(false)
		p.Cart.Rows.Bind(id, row)
	}
	p.Cart.Empty.Render(0)
	return p
}

// Dump writes a plain-text rendering of the page. Hidden elements print as "hidden".
func (p *Page) Dump(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "badge: %s\n", p.Badge.Badge)
	b.WriteString("menu:\n")
	for _, id := range p.Menu.order {
		fmt.Fprintf(&b, "  %s: %s\n", id, p.Menu.targets[id])
	}
	b.WriteString("cart:\n")
	for _, id := range p.Cart.Rows.order {
		row := p.Cart.Rows.rows[id]
		if !row.Row.Visible() {
			fmt.Fprintf(&b, "  %s: hidden\n", id)
			continue
		}
		fmt.Fprintf(&b, "  %s: %s %s\n", id, row.Quantity.Text(), row.LineTotal.Text())
	}
	fmt.Fprintf(&b, "items: %s\n", visibility(p.Cart.Empty.Container))
	fmt.Fprintf(&b, "empty message: %s\n", visibility(p.Cart.Empty.Message))
	fmt.Fprintf(&b, "total: %s\n", p.Total.Total)

	_, err := io.WriteString(w, b.String())
	return err
}

func visibility(el *Element) string {
	if el.Visible() {
		return "shown"
	}
	return "hidden"
}
