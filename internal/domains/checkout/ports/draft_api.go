package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
)

var (
	// ErrNotFound indicates the remote collaborator no longer holds the draft.
	ErrNotFound = errors.New("draft order not found")
	// ErrConflict indicates the draft was already converted or concurrently modified.
	ErrConflict = errors.New("draft order conflict")
)

// DraftOrderAPI is the remote draft-order collaborator. Convert carries
// at-most-once semantics: callers must not retry blindly on ambiguous failure.
type DraftOrderAPI interface {
	Create(ctx context.Context, draft *domain.DraftOrder) (*domain.DraftOrder, error)
	Get(ctx context.Context, id string) (*domain.DraftOrder, error)
	Update(ctx context.Context, id string, update domain.DraftUpdate) (*domain.DraftOrder, error)
	Delete(ctx context.Context, id string) error
	Convert(ctx context.Context, id string) (*domain.FinalOrder, error)
}
