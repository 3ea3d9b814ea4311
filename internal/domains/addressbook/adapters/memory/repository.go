// Package memory provides an in-memory address book repository for tests and
// local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/go-checkout-api/internal/domains/addressbook/domain"
	"github.com/Apurer/go-checkout-api/internal/domains/addressbook/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps saved addresses in process memory.
type Repository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*domain.SavedAddress
	clock  func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		nextID: 1,
		byID:   make(map[int64]*domain.SavedAddress),
		clock:  time.Now,
	}
}

func (r *Repository) ListByOwner(_ context.Context, ownerID string) ([]domain.SavedAddress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.SavedAddress
	for _, addr := range r.byID {
		if addr.OwnerID == ownerID {
			out = append(out, *addr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *Repository) Save(_ context.Context, address *domain.SavedAddress) (*domain.SavedAddress, error) {
	if err := address.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *address
	now := r.clock()
	if clone.ID == 0 {
		clone.ID = r.nextID
		r.nextID++
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now
	r.byID[clone.ID] = &clone
	saved := clone
	return &saved, nil
}

func (r *Repository) Delete(_ context.Context, ownerID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	addr, ok := r.byID[id]
	if !ok || addr.OwnerID != ownerID {
		return ports.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
