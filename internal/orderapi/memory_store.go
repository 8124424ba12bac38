package orderapi

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore implements Store with in-memory storage
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]byte // userID -> encoded cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]byte)}
}

func (s *MemoryStore) GetCart(_ context.Context, userID string) (*Cart, error) {
	s.mu.RLock()
	data, ok := s.carts[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrCartNotFound
	}

	var cart Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &cart, nil
}

// SaveCart stores a copy, so callers may keep mutating cart.
func (s *MemoryStore) SaveCart(_ context.Context, cart *Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.UserID] = data
	return nil
}

func (s *MemoryStore) DeleteCart(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.carts[userID]; !ok {
		return ErrCartNotFound
	}
	delete(s.carts, userID)
	return nil
}
