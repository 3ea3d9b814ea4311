package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	checkouttypes "github.com/Apurer/go-checkout-api/internal/domains/checkout/application/types"
	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	"github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
)

// completePayment normalizes a provider approve callback. It runs
// independently of the active step: a provider popup can resolve after the
// shopper navigated away. The durable side-channel record is written before
// anything else so a reload between callback and in-memory update still
// recovers the result.
func (s *Session) completePayment(ctx context.Context, input checkouttypes.PaymentCallbackInput) error {
	payment := domain.CompletedPayment{
		TransactionID: input.TransactionID,
		PayerID:       input.PayerID,
		PayerEmail:    input.PayerEmail,
		Amount:        input.Amount,
		Currency:      input.Currency,
		Status:        input.Status,
		CreateTime:    input.CreateTime,
		UpdateTime:    input.UpdateTime,
	}
	if err := payment.Validate(); err != nil {
		// Missing proof fields are a hard failure; payment status stays put.
		return mapError(err)
	}
	status, ok := domain.StatusFromProvider(payment.Status)
	if !ok {
		return fmt.Errorf("%w: provider status %q does not prove completion", ErrValidation, payment.Status)
	}

	// Duplicate callbacks only re-confirm; they never re-trigger side effects.
	if s.alreadyRecorded(payment.TransactionID) {
		s.deps.Logger.Info("duplicate payment callback ignored",
			slog.String("session", s.id), slog.String("transaction", payment.TransactionID))
		return nil
	}

	record := ports.PaymentRecord{
		Method:     domain.MethodPayPal,
		Provider:   input.Provider,
		Payment:    payment,
		RecordedAt: s.deps.Clock(),
	}
	if err := s.deps.Durable.SavePayment(ctx, s.id, record); err != nil {
		s.deps.Logger.Warn("failed to persist payment side-channel record",
			slog.String("session", s.id), slog.String("transaction", payment.TransactionID), slog.String("error", err.Error()))
	}

	details := walletDetails(input.Provider, payment)
	s.mu.Lock()
	var draftID string
	if s.draft != nil {
		if !s.draft.PaymentStatus.CanTransition(status) && s.draft.PaymentStatus != status {
			s.deps.Logger.Warn("forcing payment status, transition outside the happy path",
				slog.String("session", s.id),
				slog.String("from", string(s.draft.PaymentStatus)),
				slog.String("to", string(status)))
		}
		s.draft.PaymentMethod = domain.MethodPayPal
		s.draft.PaymentStatus = status
		s.draft.PaymentDetails = &details
		draftID = s.draft.ID
	}
	s.payMsg = ""
	s.mu.Unlock()

	// The money has already moved; a failed remote push must not block the
	// shopper from proceeding.
	if draftID != "" {
		method := domain.MethodPayPal
		update := domain.DraftUpdate{PaymentMethod: &method, PaymentStatus: &status, PaymentDetails: &details}
		if _, err := s.deps.API.Update(ctx, draftID, update); err != nil {
			s.deps.Logger.Warn("payment update not pushed remotely",
				slog.String("session", s.id), slog.String("draft", draftID), slog.String("error", err.Error()))
			s.mu.Lock()
			s.dirty = true
			s.mu.Unlock()
		}
	}

	s.convertDisplayTotal(ctx, payment.Currency)
	return nil
}

// alreadyRecorded reports whether this transaction id was already adopted.
func (s *Session) alreadyRecorded(transactionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil || s.draft.PaymentDetails == nil || s.draft.PaymentDetails.Wallet == nil {
		return false
	}
	return s.draft.PaymentDetails.Wallet.TransactionID == transactionID &&
		s.draft.PaymentStatus.Settled()
}

// failPayment records a provider error. The provider message is surfaced
// verbatim; the remote update is attempted but not required to succeed first.
func (s *Session) failPayment(ctx context.Context, provider, message string) {
	s.transitionPayment(ctx, domain.PaymentFailed)
	s.mu.Lock()
	if message == "" {
		message = "payment failed"
	}
	s.payMsg = message
	s.mu.Unlock()
	s.deps.Logger.Warn("payment provider reported failure",
		slog.String("session", s.id), slog.String("provider", provider), slog.String("message", message))
}

// cancelPayment records a shopper-side cancellation. No retry is implied; the
// shopper must explicitly re-initiate payment.
func (s *Session) cancelPayment(ctx context.Context) {
	s.transitionPayment(ctx, domain.PaymentCancelled)
	s.mu.Lock()
	s.payMsg = "payment was cancelled"
	s.mu.Unlock()
}

func (s *Session) transitionPayment(ctx context.Context, to domain.PaymentStatus) {
	s.mu.Lock()
	if s.draft == nil {
		s.mu.Unlock()
		return
	}
	if !s.draft.PaymentStatus.CanTransition(to) && s.draft.PaymentStatus != to {
		s.deps.Logger.Warn("payment status transition outside the happy path",
			slog.String("session", s.id),
			slog.String("from", string(s.draft.PaymentStatus)),
			slog.String("to", string(to)))
	}
	s.draft.PaymentStatus = to
	draftID := s.draft.ID
	s.mu.Unlock()

	if draftID == "" {
		return
	}
	update := domain.DraftUpdate{PaymentStatus: &to}
	if _, err := s.deps.API.Update(ctx, draftID, update); err != nil {
		s.deps.Logger.Warn("payment status not pushed remotely",
			slog.String("session", s.id), slog.String("draft", draftID), slog.String("error", err.Error()))
	}
}

// adoptPaymentRecord hydrates payment state from the durable side-channel,
// recovering a callback that landed before a reload.
func (s *Session) adoptPaymentRecord(record *ports.PaymentRecord) {
	if record == nil {
		return
	}
	status, ok := domain.StatusFromProvider(record.Payment.Status)
	if !ok {
		return
	}
	details := walletDetails(record.Provider, record.Payment)
	s.mu.Lock()
	if s.draft != nil {
		s.draft.PaymentMethod = record.Method
		s.draft.PaymentStatus = status
		s.draft.PaymentDetails = &details
	}
	s.mu.Unlock()
}

// convertDisplayTotal obtains a converted invoice amount when the method
// bills in a foreign currency. Failure only costs a display affordance.
func (s *Session) convertDisplayTotal(ctx context.Context, billedCurrency string) {
	if s.deps.Converter == nil {
		return
	}
	s.mu.Lock()
	if s.draft == nil {
		s.mu.Unlock()
		return
	}
	total := s.draft.Total
	currency := s.draft.Currency
	s.mu.Unlock()

	if billedCurrency == "" || strings.EqualFold(billedCurrency, currency) {
		return
	}
	converted, err := s.deps.Converter.Convert(ctx, total, currency, billedCurrency)
	if err != nil {
		s.deps.Logger.Warn("currency conversion unavailable",
			slog.String("session", s.id), slog.String("from", currency), slog.String("to", billedCurrency), slog.String("error", err.Error()))
		return
	}
	s.mu.Lock()
	s.display = &checkouttypes.DisplayAmount{Amount: converted, Currency: strings.ToUpper(billedCurrency)}
	s.mu.Unlock()
}

func walletDetails(provider string, payment domain.CompletedPayment) domain.PaymentDetails {
	if provider == "" {
		provider = "paypal"
	}
	return domain.PaymentDetails{
		Method: domain.MethodPayPal,
		Wallet: &domain.WalletTransaction{
			Provider:      provider,
			TransactionID: payment.TransactionID,
			PayerID:       payment.PayerID,
			PayerEmail:    payment.PayerEmail,
			Amount:        payment.Amount,
			Currency:      payment.Currency,
		},
	}
}
