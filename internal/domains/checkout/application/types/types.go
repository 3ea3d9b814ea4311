// Package types defines the inputs and projections exchanged between the
// checkout application core and its driving adapters.
package types

import (
	"time"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
)

// StartCheckoutInput opens (or rehydrates) a checkout session.
type StartCheckoutInput struct {
	SessionID string
}

// SetAddressInput stores raw address form input on the session.
type SetAddressInput struct {
	SessionID string
	Form      domain.AddressForm
}

// SetShippingInput records the chosen delivery option. Cost and tax are
// externally supplied numbers; the core only recomputes the total from them.
type SetShippingInput struct {
	SessionID string
	MethodID  string
	Cost      int64
	Tax       int64
}

// SetPaymentMethodInput selects how the shopper will pay.
type SetPaymentMethodInput struct {
	SessionID string
	Method    domain.PaymentMethod
}

// SubmitCardInput records raw card input. Only the masked summary survives;
// capture itself runs through the provider and reports back via callback.
type SubmitCardInput struct {
	SessionID string
	Card      domain.CardForm
}

// GoToStepInput jumps to a step for "edit" shortcuts from Review.
type GoToStepInput struct {
	SessionID string
	Step      int
}

// PaymentCallbackInput is the provider's approve payload.
type PaymentCallbackInput struct {
	SessionID     string
	Provider      string
	TransactionID string
	PayerID       string
	PayerEmail    string
	Amount        int64
	Currency      string
	Status        string
	CreateTime    time.Time
	UpdateTime    time.Time
}

// PaymentFailureInput is the provider's error payload; the message is
// surfaced to the shopper verbatim.
type PaymentFailureInput struct {
	SessionID string
	Provider  string
	Message   string
}

// ForgetAddressInput removes one saved address from the shopper's book.
type ForgetAddressInput struct {
	SessionID string
	AddressID int64
}

// SessionIdentifier addresses an existing session.
type SessionIdentifier struct {
	SessionID string
}

// DisplayAmount is a converted invoice amount for confirmation UIs.
type DisplayAmount struct {
	Amount   int64
	Currency string
}

// SessionView is the session projection returned to adapters.
type SessionView struct {
	SessionID      string
	Step           domain.Step
	StepName       string
	Draft          *domain.DraftOrder
	AddressForm    *domain.AddressForm
	PaymentStatus  domain.PaymentStatus
	PaymentMethod  domain.PaymentMethod
	PaymentMessage string
	DisplayTotal   *DisplayAmount
	Dirty          bool
	Warning        string
	Completed      bool
}

// OrderConfirmation is the terminal state after successful finalization.
type OrderConfirmation struct {
	OrderID     string
	OrderNumber string
	Items       []domain.LineItem
	Total       int64
	Currency    string
	PlacedAt    time.Time
}
