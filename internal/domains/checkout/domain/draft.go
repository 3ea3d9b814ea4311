package domain

import (
	"errors"
	"fmt"
	"time"
)

// LifecycleStatus enumerates the draft order lifecycle.
type LifecycleStatus string

const (
	LifecycleDraft      LifecycleStatus = "draft"
	LifecycleProcessing LifecycleStatus = "processing"
	LifecycleFinalized  LifecycleStatus = "finalized"
)

var (
	ErrEmptyCart        = errors.New("cart has no line items")
	ErrInvalidQuantity  = errors.New("line item quantity must be greater than zero")
	ErrNegativeAmount   = errors.New("amounts must not be negative")
	ErrInvalidLifecycle = errors.New("draft lifecycle status is invalid")
	ErrTotalMismatch    = errors.New("total does not equal subtotal + tax + shipping")
	ErrMissingIdentity  = errors.New("draft order has no identity")
	ErrAlreadyFinalized = errors.New("draft order is already finalized")
)

// LineItem is a purchased product snapshot. Amounts are minor currency units.
type LineItem struct {
	SKU       string
	Name      string
	Quantity  int32
	UnitPrice int64
}

// CartSnapshot is the cart state read once to seed a draft order.
type CartSnapshot struct {
	Items      []LineItem
	Subtotal   int64
	Currency   string
	CapturedAt time.Time
}

// DraftOrder is the order-in-progress aggregate. It mirrors a remote
// draft-order resource; ID is assigned by that collaborator on first create
// and is immutable afterwards.
type DraftOrder struct {
	ID               string
	OrderNumber      string
	Items            []LineItem
	Currency         string
	Subtotal         int64
	Tax              int64
	Shipping         int64
	Total            int64
	ShippingAddress  *Address
	BillingAddress   *Address
	ShippingMethodID string
	PaymentMethod    PaymentMethod
	PaymentStatus    PaymentStatus
	PaymentDetails   *PaymentDetails
	Status           LifecycleStatus
	UpdatedAt        time.Time
}

// NewDraftOrder seeds a draft from a cart snapshot. The order number is a
// client-side token; the remote collaborator may replace it on finalization.
func NewDraftOrder(cart *CartSnapshot, orderNumber string, now time.Time) (*DraftOrder, error) {
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	items := make([]LineItem, len(cart.Items))
	copy(items, cart.Items)
	draft := &DraftOrder{
		OrderNumber:   orderNumber,
		Items:         items,
		Currency:      cart.Currency,
		Subtotal:      cart.Subtotal,
		PaymentStatus: PaymentPending,
		Status:        LifecycleDraft,
		UpdatedAt:     now,
	}
	draft.RecomputeTotal()
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return draft, nil
}

// NewOrderNumber builds the human-facing timestamp-based token generated
// before remote confirmation.
func NewOrderNumber(now time.Time, suffix string) string {
	return fmt.Sprintf("ORD-%d-%s", now.Unix(), suffix)
}

// RecomputeTotal re-derives the total from its parts; stale totals from
// callers are never trusted.
func (d *DraftOrder) RecomputeTotal() {
	d.Total = d.Subtotal + d.Tax + d.Shipping
}

// Validate enforces the aggregate invariants.
func (d *DraftOrder) Validate() error {
	if len(d.Items) == 0 {
		return ErrEmptyCart
	}
	for _, item := range d.Items {
		if item.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if item.UnitPrice < 0 {
			return ErrNegativeAmount
		}
	}
	if d.Subtotal < 0 || d.Tax < 0 || d.Shipping < 0 {
		return ErrNegativeAmount
	}
	if d.Total != d.Subtotal+d.Tax+d.Shipping {
		return ErrTotalMismatch
	}
	if !isValidLifecycle(d.Status) {
		return ErrInvalidLifecycle
	}
	if !d.PaymentStatus.Valid() {
		return ErrInvalidPaymentStatus
	}
	return nil
}

// Clone returns a deep copy of the aggregate.
func (d *DraftOrder) Clone() *DraftOrder {
	if d == nil {
		return nil
	}
	clone := *d
	clone.Items = make([]LineItem, len(d.Items))
	copy(clone.Items, d.Items)
	if d.ShippingAddress != nil {
		addr := *d.ShippingAddress
		clone.ShippingAddress = &addr
	}
	if d.BillingAddress != nil {
		addr := *d.BillingAddress
		clone.BillingAddress = &addr
	}
	if d.PaymentDetails != nil {
		details := d.PaymentDetails.Clone()
		clone.PaymentDetails = &details
	}
	return &clone
}

func isValidLifecycle(status LifecycleStatus) bool {
	switch status {
	case LifecycleDraft, LifecycleProcessing, LifecycleFinalized:
		return true
	default:
		return false
	}
}

// DraftUpdate is a partial mutation of a draft order. Nil fields are left
// untouched; Apply always recomputes the total.
type DraftUpdate struct {
	Items            *[]LineItem
	Subtotal         *int64
	Tax              *int64
	Shipping         *int64
	ShippingAddress  *Address
	BillingAddress   *Address
	ShippingMethodID *string
	PaymentMethod    *PaymentMethod
	PaymentStatus    *PaymentStatus
	PaymentDetails   *PaymentDetails
	Status           *LifecycleStatus
}

// Apply merges the partial into the aggregate and re-derives the total.
func (d *DraftOrder) Apply(update DraftUpdate, now time.Time) {
	if update.Items != nil {
		items := make([]LineItem, len(*update.Items))
		copy(items, *update.Items)
		d.Items = items
	}
	if update.Subtotal != nil {
		d.Subtotal = *update.Subtotal
	}
	if update.Tax != nil {
		d.Tax = *update.Tax
	}
	if update.Shipping != nil {
		d.Shipping = *update.Shipping
	}
	if update.ShippingAddress != nil {
		addr := *update.ShippingAddress
		d.ShippingAddress = &addr
	}
	if update.BillingAddress != nil {
		addr := *update.BillingAddress
		d.BillingAddress = &addr
	}
	if update.ShippingMethodID != nil {
		d.ShippingMethodID = *update.ShippingMethodID
	}
	if update.PaymentMethod != nil {
		d.PaymentMethod = *update.PaymentMethod
	}
	if update.PaymentStatus != nil {
		d.PaymentStatus = *update.PaymentStatus
	}
	if update.PaymentDetails != nil {
		details := update.PaymentDetails.Clone()
		d.PaymentDetails = &details
	}
	if update.Status != nil {
		d.Status = *update.Status
	}
	d.RecomputeTotal()
	d.UpdatedAt = now
}

// FinalOrder is the immutable result of converting a draft.
type FinalOrder struct {
	ID          string
	OrderNumber string
	Items       []LineItem
	Total       int64
	Currency    string
	PlacedAt    time.Time
}
