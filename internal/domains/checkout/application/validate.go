package application

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
)

var (
	emailPattern  = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
)

// validateAddressForm aggregates missing required fields into a single
// message, then checks structure: email before phone.
func validateAddressForm(form *domain.AddressForm) error {
	if form == nil {
		return fmt.Errorf("%w: missing required fields: first name, last name, email, phone, address, city, region, country", ErrValidation)
	}
	required := []struct {
		label string
		value string
	}{
		{"first name", form.FirstName},
		{"last name", form.LastName},
		{"email", form.Email},
		{"phone", form.Phone},
		{"address", form.Address},
		{"city", form.City},
		{"region", form.Region},
		{"country", form.Country},
	}
	var missing []string
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.label)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if !emailPattern.MatchString(form.Email) {
		return fmt.Errorf("%w: email %q is not a valid email address", ErrValidation, form.Email)
	}
	digits := digitsOnly(form.Phone)
	if len(digits) < 7 || len(digits) > 15 {
		return fmt.Errorf("%w: phone number must contain 7 to 15 digits", ErrValidation)
	}
	return nil
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// validatePayment branches on the selected method. For card and wallet it
// checks a result (a settled payment attempt), not just raw field shape; the
// wallet branch consults the durable side-channel so a provider callback that
// landed before a reload still counts.
func (s *Session) validatePayment(ctx context.Context) error {
	s.mu.Lock()
	var (
		method domain.PaymentMethod
		status domain.PaymentStatus
		card   *domain.CardForm
	)
	if s.draft != nil {
		method = s.draft.PaymentMethod
		status = s.draft.PaymentStatus
	}
	card = s.card
	s.mu.Unlock()

	switch method {
	case "":
		return fmt.Errorf("%w: select a payment method", ErrValidation)

	case domain.MethodCard:
		if status.Settled() {
			return nil
		}
		if card == nil {
			return fmt.Errorf("%w: card details are incomplete", ErrValidation)
		}
		if strings.TrimSpace(card.Number) == "" || strings.TrimSpace(card.Name) == "" ||
			strings.TrimSpace(card.Expiry) == "" || strings.TrimSpace(card.CVV) == "" {
			return fmt.Errorf("%w: card details are incomplete", ErrValidation)
		}
		if !expiryPattern.MatchString(card.Expiry) {
			return fmt.Errorf("%w: card expiry must use MM/YY", ErrValidation)
		}
		if len(card.CVV) < 3 {
			return fmt.Errorf("%w: card security code is too short", ErrValidation)
		}
		// Fields look fine but the capture flow has not succeeded yet.
		return ErrPaymentRequired

	case domain.MethodPayPal:
		if status == domain.PaymentPaid {
			return nil
		}
		record, err := s.deps.Durable.LastPayment(ctx, s.id)
		if err != nil {
			s.deps.Logger.Warn("payment side-channel unreadable",
				slog.String("session", s.id), slog.String("error", err.Error()))
		}
		if record != nil && record.Payment.Completed() {
			s.adoptPaymentRecord(record)
			return nil
		}
		return ErrPaymentRequired

	case domain.MethodCashOnDelivery, domain.MethodBankTransfer:
		// Manual methods capture nothing before order placement.
		return nil

	default:
		return fmt.Errorf("%w: %w %q", ErrValidation, domain.ErrUnknownPaymentMethod, method)
	}
}
