package domain

import "errors"

// Step is one of the four linear checkout stages.
type Step int

const (
	StepAddress Step = iota
	StepDelivery
	StepPayment
	StepReview
)

// ErrInconsistentDraft signals a draft whose later fields are filled in while
// earlier ones are missing; the resume position cannot be inferred safely.
var ErrInconsistentDraft = errors.New("draft order state is inconsistent")

func (s Step) String() string {
	switch s {
	case StepAddress:
		return "address"
	case StepDelivery:
		return "delivery"
	case StepPayment:
		return "payment"
	case StepReview:
		return "review"
	default:
		return "unknown"
	}
}

// ClampStep bounds n into the valid step range.
func ClampStep(n int) Step {
	if n < int(StepAddress) {
		return StepAddress
	}
	if n > int(StepReview) {
		return StepReview
	}
	return Step(n)
}

// InferStep derives the resume position from how much of the draft is filled
// in: payment settled puts the shopper at Review, a chosen shipping method at
// Payment, a complete address at Delivery, anything less at Address.
func InferStep(d *DraftOrder) (Step, error) {
	if d == nil {
		return StepAddress, nil
	}
	hasAddress := d.ShippingAddress != nil && d.ShippingAddress.Complete()
	hasShipping := d.ShippingMethodID != ""
	hasPayment := d.PaymentStatus.Settled()

	// Later-without-earlier states are refused rather than guessed.
	if hasPayment && (!hasShipping || !hasAddress) {
		return StepAddress, ErrInconsistentDraft
	}
	if hasShipping && !hasAddress {
		return StepAddress, ErrInconsistentDraft
	}
	if d.PaymentMethod != "" && !hasAddress {
		return StepAddress, ErrInconsistentDraft
	}

	switch {
	case hasPayment:
		return StepReview, nil
	case hasShipping:
		return StepPayment, nil
	case hasAddress:
		return StepDelivery, nil
	default:
		return StepAddress, nil
	}
}
