package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PaymentStatus is the lifecycle state of a payment attempt, independent of
// the checkout step.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentAuthorized PaymentStatus = "authorized"
	PaymentPaid       PaymentStatus = "paid"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentRefunded   PaymentStatus = "refunded"
)

var (
	ErrInvalidPaymentStatus = errors.New("payment status is invalid")
	ErrInvalidTransition    = errors.New("payment status transition not allowed")
	ErrIncompletePayment    = errors.New("payment callback payload is incomplete")
	ErrUnknownPaymentMethod = errors.New("payment method is unknown")
)

// Valid reports whether the status is a known enumeration member.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentAuthorized, PaymentPaid, PaymentFailed, PaymentCancelled, PaymentRefunded:
		return true
	default:
		return false
	}
}

// Settled reports whether the payment has been proven valid by the provider.
func (s PaymentStatus) Settled() bool {
	return s == PaymentAuthorized || s == PaymentPaid
}

// CanTransition enforces the attempt state machine: the happy path is
// monotonic, failure and cancellation are terminal for the attempt, and a
// retry re-enters at pending.
func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	if !s.Valid() || !to.Valid() {
		return false
	}
	switch s {
	case PaymentPending:
		return to == PaymentAuthorized || to == PaymentPaid || to == PaymentFailed || to == PaymentCancelled
	case PaymentAuthorized:
		return to == PaymentPaid || to == PaymentFailed || to == PaymentCancelled
	case PaymentPaid:
		return to == PaymentRefunded
	case PaymentFailed, PaymentCancelled:
		return to == PaymentPending
	default:
		return false
	}
}

// PaymentMethod identifies how the shopper pays.
type PaymentMethod string

const (
	MethodCard           PaymentMethod = "card"
	MethodPayPal         PaymentMethod = "paypal"
	MethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	MethodBankTransfer   PaymentMethod = "bank_transfer"
)

// Valid reports whether the method is known.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCard, MethodPayPal, MethodCashOnDelivery, MethodBankTransfer:
		return true
	default:
		return false
	}
}

// RequiresPreAuth reports whether payment must be captured before the order
// can be placed. Manual methods settle after placement.
func (m PaymentMethod) RequiresPreAuth() bool {
	return m == MethodCard || m == MethodPayPal
}

// PaymentDetails is a tagged union keyed by payment method; exactly one
// variant is set per method. Raw card data never appears here.
type PaymentDetails struct {
	Method PaymentMethod
	Card   *CardSummary
	Wallet *WalletTransaction
	Manual *ManualDetails
}

// Clone returns a deep copy of the union.
func (p PaymentDetails) Clone() PaymentDetails {
	clone := p
	if p.Card != nil {
		card := *p.Card
		clone.Card = &card
	}
	if p.Wallet != nil {
		wallet := *p.Wallet
		clone.Wallet = &wallet
	}
	if p.Manual != nil {
		manual := *p.Manual
		clone.Manual = &manual
	}
	return clone
}

// CardSummary is the only card projection ever persisted or sent remotely.
type CardSummary struct {
	LastFour   string
	MaskedName string
	Expiry     string
}

// WalletTransaction records a completed external-wallet capture.
type WalletTransaction struct {
	Provider      string
	TransactionID string
	PayerID       string
	PayerEmail    string
	Amount        int64
	Currency      string
}

// ManualDetails marks cash-on-delivery / bank-transfer style methods.
type ManualDetails struct {
	Instrument string
}

// CardForm is transient raw card input. It is converted to a summary and
// discarded; the raw fields are never part of a DraftUpdate.
type CardForm struct {
	Number string
	Name   string
	Expiry string
	CVV    string
}

// Summary produces the masked projection safe to persist.
func (c CardForm) Summary() CardSummary {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, c.Number)
	lastFour := digits
	if len(digits) > 4 {
		lastFour = digits[len(digits)-4:]
	}
	return CardSummary{
		LastFour:   lastFour,
		MaskedName: maskName(c.Name),
		Expiry:     c.Expiry,
	}
}

func maskName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		runes := []rune(w)
		for j := 1; j < len(runes); j++ {
			runes[j] = '*'
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// CompletedPayment is the normalized result of a provider capture handshake.
// It is the only provider output the checkout core consumes.
type CompletedPayment struct {
	TransactionID string
	PayerID       string
	PayerEmail    string
	Amount        int64
	Currency      string
	Status        string
	CreateTime    time.Time
	UpdateTime    time.Time
}

// Validate requires every field needed to prove a completed transaction.
// A payload missing any of them is a hard failure, not a partial success.
func (p CompletedPayment) Validate() error {
	missing := make([]string, 0, 5)
	if strings.TrimSpace(p.TransactionID) == "" {
		missing = append(missing, "transactionId")
	}
	if strings.TrimSpace(p.PayerID) == "" {
		missing = append(missing, "payerId")
	}
	if strings.TrimSpace(p.PayerEmail) == "" {
		missing = append(missing, "payerEmail")
	}
	if p.Amount <= 0 {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(p.Currency) == "" {
		missing = append(missing, "currency")
	}
	if strings.TrimSpace(p.Status) == "" {
		missing = append(missing, "status")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompletePayment, strings.Join(missing, ", "))
	}
	return nil
}

// Completed reports whether the provider status proves a finished capture.
func (p CompletedPayment) Completed() bool {
	switch strings.ToUpper(strings.TrimSpace(p.Status)) {
	case "COMPLETED", "CAPTURED", "PAID":
		return true
	default:
		return false
	}
}

// StatusFromProvider maps a provider capture status onto the payment status
// enumeration. The second result is false for statuses that do not represent
// a successful outcome.
func StatusFromProvider(status string) (PaymentStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "COMPLETED", "CAPTURED", "PAID":
		return PaymentPaid, true
	case "APPROVED", "AUTHORIZED":
		return PaymentAuthorized, true
	default:
		return PaymentPending, false
	}
}
