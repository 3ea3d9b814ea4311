package ports

import (
	"context"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
)

// CartProvider exposes the shopper's cart; the checkout core reads it once to
// seed a draft and clears it after successful finalization.
type CartProvider interface {
	Snapshot(ctx context.Context, sessionID string) (*domain.CartSnapshot, error)
	Clear(ctx context.Context, sessionID string) error
}

// AddressBook remembers shipping addresses across checkouts: List feeds the
// address form prefill, Save runs after a successful order, Forget drops one
// entry. Save failures never fail order placement.
type AddressBook interface {
	List(ctx context.Context, ownerID string) ([]domain.SavedAddress, error)
	Save(ctx context.Context, ownerID string, address domain.Address) error
	Forget(ctx context.Context, ownerID string, id int64) error
}

// CurrencyConverter obtains a display amount in another currency. Conversion
// failure only affects a display affordance, never completion.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount int64, from, to string) (int64, error)
}

// FinalizationOrchestrator converts a draft into an immutable order, exactly
// once per draft id.
type FinalizationOrchestrator interface {
	Finalize(ctx context.Context, draftID string) (*domain.FinalOrder, error)
}
