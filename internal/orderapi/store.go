package orderapi

import (
	"context"
	"errors"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("Menu item not found")
	ErrNotInCart    = errors.New("Item not found in order")
)

// Store persists in-cart orders, one per user.
type Store interface {
	GetCart(ctx context.Context, userID string) (*Cart, error)
	SaveCart(ctx context.Context, cart *Cart) error
	DeleteCart(ctx context.Context, userID string) error
}
