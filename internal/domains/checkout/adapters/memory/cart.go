package memory

import (
	"context"
	"sync"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	"github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
)

var _ ports.CartProvider = (*CartStore)(nil)

// CartStore is an in-memory cart adapter keyed by session id.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string]*domain.CartSnapshot
}

func NewCartStore() *CartStore {
	return &CartStore{carts: map[string]*domain.CartSnapshot{}}
}

// Put replaces the cart for a session.
func (s *CartStore) Put(sessionID string, cart domain.CartSnapshot) {
	items := make([]domain.LineItem, len(cart.Items))
	copy(items, cart.Items)
	cart.Items = items
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = &cart
}

func (s *CartStore) Snapshot(_ context.Context, sessionID string) (*domain.CartSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart, ok := s.carts[sessionID]
	if !ok || len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	clone := *cart
	clone.Items = make([]domain.LineItem, len(cart.Items))
	copy(clone.Items, cart.Items)
	return &clone, nil
}

func (s *CartStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}
