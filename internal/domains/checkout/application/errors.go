package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
)

var (
	// ErrValidation signals user-fixable input that blocks step advancement.
	ErrValidation = errors.New("checkout validation failed")
	// ErrEmptyCart aborts checkout entry: nothing to buy and no recoverable draft.
	ErrEmptyCart = errors.New("cart is empty and no draft order can be recovered")
	// ErrNoActiveDraft blocks finalization before a remote draft exists.
	ErrNoActiveDraft = errors.New("no active draft order")
	// ErrPaymentRequired is the payment validator's result-check failure.
	ErrPaymentRequired = errors.New("complete the payment process")
	// ErrCreateFailed is the typed error for a failed remote draft create.
	ErrCreateFailed = errors.New("draft order could not be created")
	// ErrConversionFailed marks the always-blocking finalization failure.
	ErrConversionFailed = errors.New("order could not be placed")
	// ErrSessionCompleted rejects mutations after successful finalization.
	ErrSessionCompleted = errors.New("checkout session already completed")
	// ErrUnknownSession is returned for session ids this process never saw
	// and that have no durable trace.
	ErrUnknownSession = errors.New("unknown checkout session")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyCart) {
		return fmt.Errorf("%w: %w", ErrEmptyCart, err)
	}
	if errors.Is(err, domain.ErrIncompletePayment) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrNegativeAmount) ||
		errors.Is(err, domain.ErrUnknownPaymentMethod) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return err
}
