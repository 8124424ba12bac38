package orderapi

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/fjod/go_cart/cart-sync/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Quantities is the per-item view of a user's cart.
type Quantities struct {
	Quantities  map[domain.ItemID]int
	TotalPrices map[domain.ItemID]decimal.Decimal
}

type Aggregate struct {
	Quantity   int
	TotalPrice decimal.Decimal
}

type Service struct {
	store   Store
	catalog Catalog
	log     *slog.Logger
	sfg     singleflight.Group // collapses concurrent reads of one cart

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	gens  map[string]uint64 // bumped on every committed write
}

func NewService(store Store, catalog Catalog, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:   store,
		catalog: catalog,
		log:     log,
		locks:   make(map[string]*sync.Mutex),
		gens:    make(map[string]uint64),
	}
}

// AddItem adds one unit of itemID. A cart holding another restaurant's items
// yields *ConflictError unless forceNew is set, in which case the cart is
// replaced by one holding only the new item.
func (s *Service) AddItem(ctx context.Context, userID string, itemID domain.ItemID, forceNew bool) error {
	item, ok := s.catalog[itemID]
	if !ok {
		return ErrItemNotFound
	}

	unlock := s.lock(userID)
	defer unlock()

	cart, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	if len(cart.Lines) > 0 && cart.RestaurantID != item.RestaurantID {
		if !forceNew {
			return &ConflictError{RestaurantName: cart.RestaurantName}
		}
		s.log.InfoContext(ctx, "replacing cart for new restaurant", "user_id", userID, "from", cart.RestaurantID, "to", item.RestaurantID)
		cart.Lines = nil
	}
	cart.RestaurantID = item.RestaurantID
	cart.RestaurantName = item.RestaurantName

	if i, ok := cart.line(itemID); ok {
		cart.Lines[i].Quantity++
	} else {
		cart.Lines = append(cart.Lines, Line{ItemID: itemID, Quantity: 1})
	}

	return s.save(ctx, cart)
}

// RemoveItem takes one unit of itemID out of the cart. The line goes away
// when its last unit is removed.
func (s *Service) RemoveItem(ctx context.Context, userID string, itemID domain.ItemID) error {
	if _, ok := s.catalog[itemID]; !ok {
		return ErrItemNotFound
	}

	unlock := s.lock(userID)
	defer unlock()

	cart, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	i, ok := cart.line(itemID)
	if !ok {
		return ErrNotInCart
	}

	if cart.Lines[i].Quantity > 1 {
		cart.Lines[i].Quantity--
	} else {
		cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
	}
	return s.save(ctx, cart)
}

// Quantities returns empty maps for a user without a cart.
func (s *Service) Quantities(ctx context.Context, userID string) (Quantities, error) {
	cart, err := s.get(ctx, userID)
	if err != nil {
		return Quantities{}, err
	}

	q := Quantities{
		Quantities:  make(map[domain.ItemID]int, len(cart.Lines)),
		TotalPrices: make(map[domain.ItemID]decimal.Decimal, len(cart.Lines)),
	}
	for _, l := range cart.Lines {
		q.Quantities[l.ItemID] = l.Quantity
		q.TotalPrices[l.ItemID] = l.TotalPrice
	}
	return q, nil
}

func (s *Service) Aggregate(ctx context.Context, userID string) (Aggregate, error) {
	cart, err := s.get(ctx, userID)
	if err != nil {
		return Aggregate{}, err
	}
	return Aggregate{Quantity: cart.Quantity(), TotalPrice: cart.TotalPrice}, nil
}

// get coalesces concurrent reads of one cart. Reads never join a flight that
// started before the latest committed write.
func (s *Service) get(ctx context.Context, userID string) (*Cart, error) {
	key := userID + "#" + strconv.FormatUint(s.generation(userID), 10)
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		return s.load(flightCtx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Cart), nil
}

func (s *Service) load(ctx context.Context, userID string) (*Cart, error) {
	cart, err := s.store.GetCart(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		now := time.Now()
		return &Cart{UserID: userID, TotalPrice: decimal.Zero, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		s.log.ErrorContext(ctx, "store get cart failed", "user_id", userID, "error", err)
		return nil, err
	}
	return cart, nil
}

// save reprices every line from the catalog. An emptied cart is deleted.
func (s *Service) save(ctx context.Context, cart *Cart) error {
	if len(cart.Lines) == 0 {
		err := s.store.DeleteCart(ctx, cart.UserID)
		if err != nil && !errors.Is(err, ErrCartNotFound) {
			s.log.ErrorContext(ctx, "store delete cart failed", "user_id", cart.UserID, "error", err)
			return err
		}
		s.bump(cart.UserID)
		return nil
	}

	total := decimal.Zero
	for i := range cart.Lines {
		l := &cart.Lines[i]
		l.TotalPrice = s.catalog[l.ItemID].Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		total = total.Add(l.TotalPrice)
	}
	cart.TotalPrice = total
	cart.UpdatedAt = time.Now()

	if err := s.store.SaveCart(ctx, cart); err != nil {
		s.log.ErrorContext(ctx, "store save cart failed", "user_id", cart.UserID, "error", err)
		return err
	}
	s.bump(cart.UserID)
	return nil
}

func (s *Service) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[userID]
}

func (s *Service) bump(userID string) {
	s.mu.Lock()
	s.gens[userID]++
	s.mu.Unlock()
}

func (s *Service) lock(userID string) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
