package ports

import (
	"context"
	"time"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
)

// PaymentRecord is the durable side-channel record of the last completed
// provider callback, used to recover results across reloads.
type PaymentRecord struct {
	Method     domain.PaymentMethod
	Provider   string
	Payment    domain.CompletedPayment
	RecordedAt time.Time
}

// DraftRef pairs a checkout session with its durable draft identity.
type DraftRef struct {
	SessionID string
	DraftID   string
}

// DurableStore persists the three durable records the checkout core owns:
// the draft-order identity, the last-completed-payment callback, and the
// draft cleanup-after timestamp. Absence of a record is never an error:
// implementations return zero values.
type DurableStore interface {
	DraftID(ctx context.Context, sessionID string) (string, error)
	SaveDraftID(ctx context.Context, sessionID, draftID string) error

	LastPayment(ctx context.Context, sessionID string) (*PaymentRecord, error)
	SavePayment(ctx context.Context, sessionID string, record PaymentRecord) error
	ClearPayment(ctx context.Context, sessionID string) error

	CleanupAfter(ctx context.Context, sessionID string) (time.Time, error)
	StampCleanupAfter(ctx context.Context, sessionID string, at time.Time) error

	// Clear removes every durable record for the session.
	Clear(ctx context.Context, sessionID string) error

	// ListExpired returns sessions whose cleanup-after stamp elapsed before now.
	ListExpired(ctx context.Context, now time.Time) ([]DraftRef, error)
}
