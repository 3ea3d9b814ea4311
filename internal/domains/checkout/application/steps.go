package application

import (
	"context"
	"fmt"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
)

// setAddress stores raw form input; nothing is persisted until the Address
// step advances.
func (s *Session) setAddress(form domain.AddressForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = &form
}

// setShipping records the chosen delivery option and its externally supplied
// cost and tax, applying them to the local draft so the total stays derived.
func (s *Session) setShipping(methodID string, cost, tax int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return ErrNoActiveDraft
	}
	s.draft.ShippingMethodID = methodID
	s.draft.Shipping = cost
	s.draft.Tax = tax
	s.draft.RecomputeTotal()
	return nil
}

// setPaymentMethod selects the instrument. A retry after failure or
// cancellation re-enters the attempt at pending.
func (s *Session) setPaymentMethod(method domain.PaymentMethod) error {
	if !method.Valid() {
		return fmt.Errorf("%w: %w %q", ErrValidation, domain.ErrUnknownPaymentMethod, method)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return ErrNoActiveDraft
	}
	s.draft.PaymentMethod = method
	if s.draft.PaymentStatus.CanTransition(domain.PaymentPending) {
		s.draft.PaymentStatus = domain.PaymentPending
	}
	switch method {
	case domain.MethodCashOnDelivery, domain.MethodBankTransfer:
		s.draft.PaymentDetails = &domain.PaymentDetails{
			Method: method,
			Manual: &domain.ManualDetails{Instrument: string(method)},
		}
	default:
		if s.draft.PaymentDetails != nil && s.draft.PaymentDetails.Method != method {
			s.draft.PaymentDetails = nil
		}
	}
	s.payMsg = ""
	return nil
}

// submitCard records the masked card summary. Capture runs through the
// provider's own flow and reports back via callback; submitting a card never
// advances the checkout step.
func (s *Session) submitCard(card domain.CardForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return ErrNoActiveDraft
	}
	summary := card.Summary()
	s.card = &card
	s.draft.PaymentMethod = domain.MethodCard
	s.draft.PaymentDetails = &domain.PaymentDetails{Method: domain.MethodCard, Card: &summary}
	if s.draft.PaymentStatus.CanTransition(domain.PaymentPending) && !s.draft.PaymentStatus.Settled() {
		s.draft.PaymentStatus = domain.PaymentPending
	}
	return nil
}

// advance runs the current step's validator, persists the step partial, and
// only then increments the step index. Remote failure during the update is
// tolerated (the store keeps the merge locally), so by the time the shopper
// sees step N+1 the step N data has at least been attempted remotely.
func (s *Session) advance(ctx context.Context) error {
	s.mu.Lock()
	step := s.step
	s.mu.Unlock()

	var update domain.DraftUpdate
	switch step {
	case domain.StepAddress:
		s.mu.Lock()
		form := s.form
		s.mu.Unlock()
		if err := validateAddressForm(form); err != nil {
			return err
		}
		addr := form.ToAddress()
		billing := addr
		update = domain.DraftUpdate{ShippingAddress: &addr, BillingAddress: &billing}

	case domain.StepDelivery:
		s.mu.Lock()
		if s.draft == nil || s.draft.ShippingMethodID == "" {
			s.mu.Unlock()
			return fmt.Errorf("%w: select a delivery method", ErrValidation)
		}
		methodID := s.draft.ShippingMethodID
		cost := s.draft.Shipping
		tax := s.draft.Tax
		s.mu.Unlock()
		update = domain.DraftUpdate{ShippingMethodID: &methodID, Shipping: &cost, Tax: &tax}

	case domain.StepPayment:
		s.mu.Lock()
		settled := s.draft != nil && s.draft.PaymentStatus.Settled()
		s.mu.Unlock()
		// A settled payment is already proven valid; re-validation is skipped.
		if !settled {
			if err := s.validatePayment(ctx); err != nil {
				return err
			}
		}
		update = s.paymentPartial()

	case domain.StepReview:
		// Review is terminal before finalization.
		return nil
	}

	if err := s.applyUpdate(ctx, update); err != nil {
		return err
	}
	s.mu.Lock()
	if s.step < domain.StepReview {
		s.step++
	}
	s.mu.Unlock()
	return nil
}

// retreat moves back one step with a floor of zero. No validation, no remote
// call.
func (s *Session) retreat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step > domain.StepAddress {
		s.step--
	}
}

// goTo jumps to a clamped step for edit shortcuts from Review. The shopper
// re-validates on the next advance.
func (s *Session) goTo(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = domain.ClampStep(n)
}

// paymentPartial snapshots the payment fields for the Payment step update.
func (s *Session) paymentPartial() domain.DraftUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return domain.DraftUpdate{}
	}
	method := s.draft.PaymentMethod
	status := s.draft.PaymentStatus
	update := domain.DraftUpdate{PaymentMethod: &method, PaymentStatus: &status}
	if s.draft.PaymentDetails != nil {
		details := s.draft.PaymentDetails.Clone()
		update.PaymentDetails = &details
	}
	return update
}
