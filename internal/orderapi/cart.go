package orderapi

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fjod/go_cart/cart-sync/internal/domain"
	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID             domain.ItemID   `json:"id"`
	Name           string          `json:"name"`
	RestaurantID   string          `json:"restaurant_id"`
	RestaurantName string          `json:"restaurant_name"`
	Price          decimal.Decimal `json:"price"`
}

// Catalog is the set of items the server sells, keyed by id.
type Catalog map[domain.ItemID]MenuItem

func NewCatalog(items ...MenuItem) Catalog {
	c := make(Catalog, len(items))
	for _, it := range items {
		c[it.ID] = it
	}
	return c
}

// DemoCatalog is a small two-restaurant menu for local runs.
func DemoCatalog() Catalog {
	return NewCatalog(
		MenuItem{ID: "1", Name: "Chicken Rice", RestaurantID: "r1", RestaurantName: "Hainan House", Price: decimal.RequireFromString("5.44")},
		MenuItem{ID: "2", Name: "Iced Tea", RestaurantID: "r1", RestaurantName: "Hainan House", Price: decimal.RequireFromString("1.50")},
		MenuItem{ID: "3", Name: "Salmon Roll", RestaurantID: "r2", RestaurantName: "Sushi Bar", Price: decimal.RequireFromString("8.90")},
		MenuItem{ID: "4", Name: "Miso Soup", RestaurantID: "r2", RestaurantName: "Sushi Bar", Price: decimal.RequireFromString("2.20")},
	)
}

// LoadCatalog reads a JSON array of menu items from path.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu: %w", err)
	}
	var items []MenuItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse menu %s: %w", path, err)
	}
	for _, it := range items {
		if it.ID == "" || it.RestaurantID == "" {
			return nil, fmt.Errorf("parse menu %s: item %q needs id and restaurant_id", path, it.Name)
		}
		if it.Price.IsNegative() {
			return nil, fmt.Errorf("parse menu %s: item %s has a negative price", path, it.ID)
		}
	}
	return NewCatalog(items...), nil
}

// Cart is the stored in-cart order of one user. It holds items of a single restaurant.
type Cart struct {
	UserID         string          `json:"user_id"`
	RestaurantID   string          `json:"restaurant_id"`
	RestaurantName string          `json:"restaurant_name"`
	Lines          []Line          `json:"lines"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type Line struct {
	ItemID     domain.ItemID   `json:"item_id"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func (c *Cart) line(id domain.ItemID) (int, bool) {
	for i := range c.Lines {
		if c.Lines[i].ItemID == id {
			return i, true
		}
	}
	return 0, false
}

// Quantity is the number of units across all lines.
func (c *Cart) Quantity() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// ConflictError means an item from another restaurant was added without force_new.
type ConflictError struct {
	RestaurantName string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("You have items in your cart from %s. Adding this item will clear your current cart. Would you like to continue?", e.RestaurantName)
}
