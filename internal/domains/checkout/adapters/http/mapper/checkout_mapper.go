// Package mapper defines the transport-layer shapes for the checkout HTTP API
// and their conversions to and from application types.
package mapper

import (
	"time"

	checkouttypes "github.com/Apurer/go-checkout-api/internal/domains/checkout/application/types"
	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
)

// AddressForm is the address step payload.
type AddressForm struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Address2     string `json:"address2,omitempty"`
	City         string `json:"city"`
	Region       string `json:"region"`
	PostalCode   string `json:"postalCode,omitempty"`
	Country      string `json:"country"`
	SaveForReuse bool   `json:"saveForReuse,omitempty"`
}

// Shipping is the delivery step payload. Cost and tax come from the caller's
// rating step in minor currency units.
type Shipping struct {
	MethodID string `json:"methodId"`
	Cost     int64  `json:"cost"`
	Tax      int64  `json:"tax"`
}

// PaymentMethod selects the payment instrument.
type PaymentMethod struct {
	Method string `json:"method"`
}

// Card is the raw card payload. It is never echoed back.
type Card struct {
	Number string `json:"number"`
	Name   string `json:"name"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// StepTarget addresses a checkout step by index.
type StepTarget struct {
	Step int `json:"step"`
}

// PaymentCallback is the provider's approve webhook payload.
type PaymentCallback struct {
	Provider      string    `json:"provider"`
	TransactionID string    `json:"transactionId"`
	PayerID       string    `json:"payerId"`
	PayerEmail    string    `json:"payerEmail"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	CreateTime    time.Time `json:"createTime,omitempty"`
	UpdateTime    time.Time `json:"updateTime,omitempty"`
}

// PaymentFailure is the provider's error webhook payload.
type PaymentFailure struct {
	Provider string `json:"provider"`
	Message  string `json:"message"`
}

// LineItem mirrors a draft line item.
type LineItem struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// Address mirrors the backend address shape.
type Address struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	Region       string `json:"region"`
	PostalCode   string `json:"postalCode,omitempty"`
	Country      string `json:"country"`
}

// SavedAddress is a remembered address plus the handle used to delete it.
type SavedAddress struct {
	ID int64 `json:"id"`
	Address
}

// CardSummary is the masked card projection.
type CardSummary struct {
	LastFour   string `json:"lastFour"`
	MaskedName string `json:"maskedName"`
	Expiry     string `json:"expiry"`
}

// WalletTransaction mirrors a completed wallet capture.
type WalletTransaction struct {
	Provider      string `json:"provider"`
	TransactionID string `json:"transactionId"`
	PayerID       string `json:"payerId"`
	PayerEmail    string `json:"payerEmail"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

// PaymentDetails is the transport union of payment detail variants.
type PaymentDetails struct {
	Method string             `json:"method"`
	Card   *CardSummary       `json:"card,omitempty"`
	Wallet *WalletTransaction `json:"wallet,omitempty"`
}

// Draft mirrors the draft order aggregate.
type Draft struct {
	ID               string          `json:"id,omitempty"`
	OrderNumber      string          `json:"orderNumber"`
	Items            []LineItem      `json:"items"`
	Currency         string          `json:"currency"`
	Subtotal         int64           `json:"subtotal"`
	Tax              int64           `json:"tax"`
	Shipping         int64           `json:"shipping"`
	Total            int64           `json:"total"`
	ShippingAddress  *Address        `json:"shippingAddress,omitempty"`
	BillingAddress   *Address        `json:"billingAddress,omitempty"`
	ShippingMethodID string          `json:"shippingMethodId,omitempty"`
	PaymentMethod    string          `json:"paymentMethod,omitempty"`
	PaymentStatus    string          `json:"paymentStatus"`
	PaymentDetails   *PaymentDetails `json:"paymentDetails,omitempty"`
	Status           string          `json:"status"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// DisplayAmount is a converted display total.
type DisplayAmount struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Session is the projection returned by every checkout endpoint.
type Session struct {
	SessionID      string         `json:"sessionId"`
	Step           int            `json:"step"`
	StepName       string         `json:"stepName"`
	Draft          *Draft         `json:"draft,omitempty"`
	AddressForm    *AddressForm   `json:"addressForm,omitempty"`
	PaymentStatus  string         `json:"paymentStatus,omitempty"`
	PaymentMethod  string         `json:"paymentMethod,omitempty"`
	PaymentMessage string         `json:"paymentMessage,omitempty"`
	DisplayTotal   *DisplayAmount `json:"displayTotal,omitempty"`
	Dirty          bool           `json:"dirty"`
	Warning        string         `json:"warning,omitempty"`
	Completed      bool           `json:"completed"`
}

// Confirmation is the terminal order placement response.
type Confirmation struct {
	OrderID     string     `json:"orderId"`
	OrderNumber string     `json:"orderNumber"`
	Items       []LineItem `json:"items"`
	Total       int64      `json:"total"`
	Currency    string     `json:"currency"`
	PlacedAt    time.Time  `json:"placedAt"`
}

// ToAddressForm converts the transport form to the domain form.
func ToAddressForm(form AddressForm) domain.AddressForm {
	return domain.AddressForm{
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		Phone:        form.Phone,
		Address:      form.Address,
		Address2:     form.Address2,
		City:         form.City,
		Region:       form.Region,
		PostalCode:   form.PostalCode,
		Country:      form.Country,
		SaveForReuse: form.SaveForReuse,
	}
}

// ToCardForm converts the transport card payload to the domain form.
func ToCardForm(card Card) domain.CardForm {
	return domain.CardForm{Number: card.Number, Name: card.Name, Expiry: card.Expiry, CVV: card.CVV}
}

// ToPaymentCallbackInput converts the provider webhook payload.
func ToPaymentCallbackInput(sessionID string, payload PaymentCallback) checkouttypes.PaymentCallbackInput {
	return checkouttypes.PaymentCallbackInput{
		SessionID:     sessionID,
		Provider:      payload.Provider,
		TransactionID: payload.TransactionID,
		PayerID:       payload.PayerID,
		PayerEmail:    payload.PayerEmail,
		Amount:        payload.Amount,
		Currency:      payload.Currency,
		Status:        payload.Status,
		CreateTime:    payload.CreateTime,
		UpdateTime:    payload.UpdateTime,
	}
}

// FromSessionView converts the application projection to transport shape.
func FromSessionView(view *checkouttypes.SessionView) Session {
	if view == nil {
		return Session{}
	}
	session := Session{
		SessionID:      view.SessionID,
		Step:           int(view.Step),
		StepName:       view.StepName,
		PaymentStatus:  string(view.PaymentStatus),
		PaymentMethod:  string(view.PaymentMethod),
		PaymentMessage: view.PaymentMessage,
		Dirty:          view.Dirty,
		Warning:        view.Warning,
		Completed:      view.Completed,
	}
	if view.Draft != nil {
		draft := fromDraft(view.Draft)
		session.Draft = &draft
	}
	if view.AddressForm != nil {
		form := fromAddressForm(*view.AddressForm)
		session.AddressForm = &form
	}
	if view.DisplayTotal != nil {
		session.DisplayTotal = &DisplayAmount{Amount: view.DisplayTotal.Amount, Currency: view.DisplayTotal.Currency}
	}
	return session
}

// FromConfirmation converts the placement result to transport shape.
func FromConfirmation(confirmation *checkouttypes.OrderConfirmation) Confirmation {
	if confirmation == nil {
		return Confirmation{}
	}
	return Confirmation{
		OrderID:     confirmation.OrderID,
		OrderNumber: confirmation.OrderNumber,
		Items:       fromLineItems(confirmation.Items),
		Total:       confirmation.Total,
		Currency:    confirmation.Currency,
		PlacedAt:    confirmation.PlacedAt,
	}
}

// FromSavedAddresses converts the address-book projection to transport shape.
func FromSavedAddresses(saved []domain.SavedAddress) []SavedAddress {
	out := make([]SavedAddress, 0, len(saved))
	for _, s := range saved {
		out = append(out, SavedAddress{ID: s.ID, Address: fromAddress(s.Address)})
	}
	return out
}

func fromDraft(d *domain.DraftOrder) Draft {
	draft := Draft{
		ID:               d.ID,
		OrderNumber:      d.OrderNumber,
		Items:            fromLineItems(d.Items),
		Currency:         d.Currency,
		Subtotal:         d.Subtotal,
		Tax:              d.Tax,
		Shipping:         d.Shipping,
		Total:            d.Total,
		ShippingMethodID: d.ShippingMethodID,
		PaymentMethod:    string(d.PaymentMethod),
		PaymentStatus:    string(d.PaymentStatus),
		Status:           string(d.Status),
		UpdatedAt:        d.UpdatedAt,
	}
	if d.ShippingAddress != nil {
		addr := fromAddress(*d.ShippingAddress)
		draft.ShippingAddress = &addr
	}
	if d.BillingAddress != nil {
		addr := fromAddress(*d.BillingAddress)
		draft.BillingAddress = &addr
	}
	if d.PaymentDetails != nil {
		details := fromPaymentDetails(*d.PaymentDetails)
		draft.PaymentDetails = &details
	}
	return draft
}

func fromLineItems(items []domain.LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, LineItem{SKU: item.SKU, Name: item.Name, Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	return out
}

func fromAddress(a domain.Address) Address {
	return Address{
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Email:        a.Email,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		Region:       a.Region,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
	}
}

func fromAddressForm(f domain.AddressForm) AddressForm {
	return AddressForm{
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		Email:        f.Email,
		Phone:        f.Phone,
		Address:      f.Address,
		Address2:     f.Address2,
		City:         f.City,
		Region:       f.Region,
		PostalCode:   f.PostalCode,
		Country:      f.Country,
		SaveForReuse: f.SaveForReuse,
	}
}

func fromPaymentDetails(d domain.PaymentDetails) PaymentDetails {
	details := PaymentDetails{Method: string(d.Method)}
	if d.Card != nil {
		details.Card = &CardSummary{LastFour: d.Card.LastFour, MaskedName: d.Card.MaskedName, Expiry: d.Card.Expiry}
	}
	if d.Wallet != nil {
		details.Wallet = &WalletTransaction{
			Provider:      d.Wallet.Provider,
			TransactionID: d.Wallet.TransactionID,
			PayerID:       d.Wallet.PayerID,
			PayerEmail:    d.Wallet.PayerEmail,
			Amount:        d.Wallet.Amount,
			Currency:      d.Wallet.Currency,
		}
	}
	return details
}
