package application

import (
	"context"
	"fmt"
	"log/slog"

	checkouttypes "github.com/Apurer/go-checkout-api/internal/domains/checkout/application/types"
	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
)

// placeOrder is the terminal, non-reversible transition: it pushes a final
// snapshot to the draft, requests the at-most-once conversion, and on success
// clears every transient and durable trace of the checkout. On failure the
// draft and cart stay intact so the shopper can retry.
func (s *Session) placeOrder(ctx context.Context) (*checkouttypes.OrderConfirmation, error) {
	s.mu.Lock()
	if s.confirmation != nil {
		confirmation := *s.confirmation
		s.mu.Unlock()
		return &confirmation, nil
	}
	if s.draft == nil || s.draft.ID == "" {
		s.mu.Unlock()
		return nil, ErrNoActiveDraft
	}
	draftID := s.draft.ID
	form := s.form
	method := s.draft.PaymentMethod
	status := s.draft.PaymentStatus
	addressComplete := s.draft.ShippingAddress != nil && s.draft.ShippingAddress.Complete()
	s.mu.Unlock()

	if !addressComplete {
		if err := validateAddressForm(form); err != nil {
			return nil, err
		}
	}
	if method.RequiresPreAuth() && !status.Settled() {
		return nil, ErrPaymentRequired
	}

	// Final snapshot; a rejected update here follows the usual optimistic
	// policy, only the conversion itself is blocking.
	if err := s.applyUpdate(ctx, s.finalSnapshot()); err != nil {
		return nil, err
	}

	final, err := s.deps.Finalizer.Finalize(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}

	if err := s.deps.Cart.Clear(ctx, s.id); err != nil {
		s.deps.Logger.Warn("failed to clear cart after placement",
			slog.String("session", s.id), slog.String("error", err.Error()))
	}
	if err := s.deps.Durable.Clear(ctx, s.id); err != nil {
		s.deps.Logger.Warn("failed to clear durable records after placement",
			slog.String("session", s.id), slog.String("error", err.Error()))
	}
	s.saveAddressForReuse(ctx)

	confirmation := checkouttypes.OrderConfirmation{
		OrderID:     final.ID,
		OrderNumber: final.OrderNumber,
		Items:       final.Items,
		Total:       final.Total,
		Currency:    final.Currency,
		PlacedAt:    final.PlacedAt,
	}
	s.mu.Lock()
	s.draft.Status = domain.LifecycleFinalized
	s.confirmation = &confirmation
	s.card = nil
	s.dirty = false
	s.warning = ""
	s.payMsg = ""
	s.mu.Unlock()
	return &confirmation, nil
}

// finalSnapshot restates address, shipping, and payment method on the draft
// before conversion.
func (s *Session) finalSnapshot() domain.DraftUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	processing := domain.LifecycleProcessing
	update := domain.DraftUpdate{Status: &processing}
	if s.draft == nil {
		return update
	}
	if s.draft.ShippingAddress != nil {
		addr := *s.draft.ShippingAddress
		update.ShippingAddress = &addr
	} else if s.form != nil {
		addr := s.form.ToAddress()
		update.ShippingAddress = &addr
	}
	if update.ShippingAddress != nil {
		billing := *update.ShippingAddress
		update.BillingAddress = &billing
	}
	if s.draft.ShippingMethodID != "" {
		methodID := s.draft.ShippingMethodID
		update.ShippingMethodID = &methodID
	}
	if s.draft.PaymentMethod != "" {
		method := s.draft.PaymentMethod
		update.PaymentMethod = &method
	}
	status := s.draft.PaymentStatus
	update.PaymentStatus = &status
	if s.draft.PaymentDetails != nil {
		details := s.draft.PaymentDetails.Clone()
		update.PaymentDetails = &details
	}
	return update
}

// saveAddressForReuse runs the opt-in address-book side effect; its failure
// never fails order placement.
func (s *Session) saveAddressForReuse(ctx context.Context) {
	if s.deps.Addresses == nil {
		return
	}
	s.mu.Lock()
	form := s.form
	s.mu.Unlock()
	if form == nil || !form.SaveForReuse {
		return
	}
	if err := s.deps.Addresses.Save(ctx, s.id, form.ToAddress()); err != nil {
		s.deps.Logger.Warn("failed to save address for reuse",
			slog.String("session", s.id), slog.String("error", err.Error()))
	}
}
