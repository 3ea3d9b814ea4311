package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	"github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
)

var _ ports.DraftOrderAPI = (*DraftAPI)(nil)

// DraftAPI is an in-memory draft-order collaborator, used in tests and for
// single-process deployments without the remote order service.
type DraftAPI struct {
	mu        sync.RWMutex
	drafts    map[string]*domain.DraftOrder
	converted map[string]*domain.FinalOrder
	clock     func() time.Time
}

type DraftAPIOption func(*DraftAPI)

// WithClock overrides the wall clock, for deterministic tests.
func WithClock(clock func() time.Time) DraftAPIOption {
	return func(a *DraftAPI) { a.clock = clock }
}

func NewDraftAPI(opts ...DraftAPIOption) *DraftAPI {
	api := &DraftAPI{
		drafts:    map[string]*domain.DraftOrder{},
		converted: map[string]*domain.FinalOrder{},
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(api)
	}
	return api
}

func (a *DraftAPI) Create(_ context.Context, draft *domain.DraftOrder) (*domain.DraftOrder, error) {
	if draft == nil {
		return nil, errors.New("draft is nil")
	}
	clone := draft.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	clone.UpdatedAt = a.clock()
	a.drafts[clone.ID] = clone
	return clone.Clone(), nil
}

func (a *DraftAPI) Get(_ context.Context, id string) (*domain.DraftOrder, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	draft, ok := a.drafts[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return draft.Clone(), nil
}

func (a *DraftAPI) Update(_ context.Context, id string, update domain.DraftUpdate) (*domain.DraftOrder, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	draft, ok := a.drafts[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if _, done := a.converted[id]; done {
		return nil, fmt.Errorf("%w: already converted", ports.ErrConflict)
	}
	draft.Apply(update, a.clock())
	return draft.Clone(), nil
}

func (a *DraftAPI) Delete(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.drafts[id]; !ok {
		return ports.ErrNotFound
	}
	delete(a.drafts, id)
	return nil
}

// Convert finalizes the draft at most once; a second call for the same id is
// a conflict, never a duplicate order.
func (a *DraftAPI) Convert(_ context.Context, id string) (*domain.FinalOrder, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, done := a.converted[id]; done {
		return nil, fmt.Errorf("%w: already converted", ports.ErrConflict)
	}
	draft, ok := a.drafts[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	order := &domain.FinalOrder{
		ID:          uuid.NewString(),
		OrderNumber: draft.OrderNumber,
		Items:       append([]domain.LineItem(nil), draft.Items...),
		Total:       draft.Total,
		Currency:    draft.Currency,
		PlacedAt:    a.clock(),
	}
	a.converted[id] = order
	clone := *order
	return &clone, nil
}
