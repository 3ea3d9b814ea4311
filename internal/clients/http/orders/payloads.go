package orders

import (
	"time"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
)

type lineItemPayload struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

type addressPayload struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	Region       string `json:"region,omitempty"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
}

type cardSummaryPayload struct {
	LastFour   string `json:"lastFour"`
	MaskedName string `json:"maskedName"`
	Expiry     string `json:"expiry"`
}

type walletPayload struct {
	Provider      string `json:"provider"`
	TransactionID string `json:"transactionId"`
	PayerID       string `json:"payerId,omitempty"`
	PayerEmail    string `json:"payerEmail,omitempty"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

type manualPayload struct {
	Instrument string `json:"instrument"`
}

type paymentDetailsPayload struct {
	Method string              `json:"method"`
	Card   *cardSummaryPayload `json:"card,omitempty"`
	Wallet *walletPayload      `json:"wallet,omitempty"`
	Manual *manualPayload      `json:"manual,omitempty"`
}

type draftPayload struct {
	ID               string                 `json:"id,omitempty"`
	OrderNumber      string                 `json:"orderNumber"`
	Items            []lineItemPayload      `json:"items"`
	Currency         string                 `json:"currency"`
	Subtotal         int64                  `json:"subtotal"`
	Tax              int64                  `json:"tax"`
	Shipping         int64                  `json:"shipping"`
	Total            int64                  `json:"total"`
	ShippingAddress  *addressPayload        `json:"shippingAddress,omitempty"`
	BillingAddress   *addressPayload        `json:"billingAddress,omitempty"`
	ShippingMethodID string                 `json:"shippingMethodId,omitempty"`
	PaymentMethod    string                 `json:"paymentMethod,omitempty"`
	PaymentStatus    string                 `json:"paymentStatus,omitempty"`
	PaymentDetails   *paymentDetailsPayload `json:"paymentDetails,omitempty"`
	Status           string                 `json:"status,omitempty"`
	UpdatedAt        time.Time              `json:"updatedAt,omitempty"`
}

type draftUpdatePayload struct {
	Items            *[]lineItemPayload     `json:"items,omitempty"`
	Subtotal         *int64                 `json:"subtotal,omitempty"`
	Tax              *int64                 `json:"tax,omitempty"`
	Shipping         *int64                 `json:"shipping,omitempty"`
	ShippingAddress  *addressPayload        `json:"shippingAddress,omitempty"`
	BillingAddress   *addressPayload        `json:"billingAddress,omitempty"`
	ShippingMethodID *string                `json:"shippingMethodId,omitempty"`
	PaymentMethod    *string                `json:"paymentMethod,omitempty"`
	PaymentStatus    *string                `json:"paymentStatus,omitempty"`
	PaymentDetails   *paymentDetailsPayload `json:"paymentDetails,omitempty"`
	Status           *string                `json:"status,omitempty"`
}

type finalOrderPayload struct {
	ID          string            `json:"id"`
	OrderNumber string            `json:"orderNumber"`
	Items       []lineItemPayload `json:"items"`
	Total       int64             `json:"total"`
	Currency    string            `json:"currency"`
	PlacedAt    time.Time         `json:"placedAt"`
}

func fromItems(items []domain.LineItem) []lineItemPayload {
	out := make([]lineItemPayload, 0, len(items))
	for _, item := range items {
		out = append(out, lineItemPayload{
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return out
}

func toItems(items []lineItemPayload) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, domain.LineItem{
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return out
}

func fromAddress(a *domain.Address) *addressPayload {
	if a == nil {
		return nil
	}
	return &addressPayload{
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

func toAddress(a *addressPayload) *domain.Address {
	if a == nil {
		return nil
	}
	return &domain.Address{
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

func fromDetails(d *domain.PaymentDetails) *paymentDetailsPayload {
	if d == nil {
		return nil
	}
	payload := &paymentDetailsPayload{Method: string(d.Method)}
	if d.Card != nil {
		payload.Card = &cardSummaryPayload{
			LastFour:   d.Card.LastFour,
			MaskedName: d.Card.MaskedName,
			Expiry:     d.Card.Expiry,
		}
	}
	if d.Wallet != nil {
		payload.Wallet = &walletPayload{
			Provider:      d.Wallet.Provider,
			TransactionID: d.Wallet.TransactionID,
			PayerID:       d.Wallet.PayerID,
			PayerEmail:    d.Wallet.PayerEmail,
			Amount:        d.Wallet.Amount,
			Currency:      d.Wallet.Currency,
		}
	}
	if d.Manual != nil {
		payload.Manual = &manualPayload{Instrument: d.Manual.Instrument}
	}
	return payload
}

func toDetails(p *paymentDetailsPayload) *domain.PaymentDetails {
	if p == nil {
		return nil
	}
	details := &domain.PaymentDetails{Method: domain.PaymentMethod(p.Method)}
	if p.Card != nil {
		details.Card = &domain.CardSummary{
			LastFour:   p.Card.LastFour,
			MaskedName: p.Card.MaskedName,
			Expiry:     p.Card.Expiry,
		}
	}
	if p.Wallet != nil {
		details.Wallet = &domain.WalletTransaction{
			Provider:      p.Wallet.Provider,
			TransactionID: p.Wallet.TransactionID,
			PayerID:       p.Wallet.PayerID,
			PayerEmail:    p.Wallet.PayerEmail,
			Amount:        p.Wallet.Amount,
			Currency:      p.Wallet.Currency,
		}
	}
	if p.Manual != nil {
		details.Manual = &domain.ManualDetails{Instrument: p.Manual.Instrument}
	}
	return details
}

func fromDraft(d *domain.DraftOrder) draftPayload {
	return draftPayload{
		ID:               d.ID,
		OrderNumber:      d.OrderNumber,
		Items:            fromItems(d.Items),
		Currency:         d.Currency,
		Subtotal:         d.Subtotal,
		Tax:              d.Tax,
		Shipping:         d.Shipping,
		Total:            d.Total,
		ShippingAddress:  fromAddress(d.ShippingAddress),
		BillingAddress:   fromAddress(d.BillingAddress),
		ShippingMethodID: d.ShippingMethodID,
		PaymentMethod:    string(d.PaymentMethod),
		PaymentStatus:    string(d.PaymentStatus),
		PaymentDetails:   fromDetails(d.PaymentDetails),
		Status:           string(d.Status),
		UpdatedAt:        d.UpdatedAt,
	}
}

func (p draftPayload) toDomain() *domain.DraftOrder {
	return &domain.DraftOrder{
		ID:               p.ID,
		OrderNumber:      p.OrderNumber,
		Items:            toItems(p.Items),
		Currency:         p.Currency,
		Subtotal:         p.Subtotal,
		Tax:              p.Tax,
		Shipping:         p.Shipping,
		Total:            p.Total,
		ShippingAddress:  toAddress(p.ShippingAddress),
		BillingAddress:   toAddress(p.BillingAddress),
		ShippingMethodID: p.ShippingMethodID,
		PaymentMethod:    domain.PaymentMethod(p.PaymentMethod),
		PaymentStatus:    domain.PaymentStatus(p.PaymentStatus),
		PaymentDetails:   toDetails(p.PaymentDetails),
		Status:           domain.LifecycleStatus(p.Status),
		UpdatedAt:        p.UpdatedAt,
	}
}

func fromUpdate(u domain.DraftUpdate) draftUpdatePayload {
	payload := draftUpdatePayload{
		Subtotal:         u.Subtotal,
		Tax:              u.Tax,
		Shipping:         u.Shipping,
		ShippingAddress:  fromAddress(u.ShippingAddress),
		BillingAddress:   fromAddress(u.BillingAddress),
		ShippingMethodID: u.ShippingMethodID,
		PaymentDetails:   fromDetails(u.PaymentDetails),
	}
	if u.Items != nil {
		items := fromItems(*u.Items)
		payload.Items = &items
	}
	if u.PaymentMethod != nil {
		method := string(*u.PaymentMethod)
		payload.PaymentMethod = &method
	}
	if u.PaymentStatus != nil {
		status := string(*u.PaymentStatus)
		payload.PaymentStatus = &status
	}
	if u.Status != nil {
		status := string(*u.Status)
		payload.Status = &status
	}
	return payload
}

func (p finalOrderPayload) toDomain() *domain.FinalOrder {
	return &domain.FinalOrder{
		ID:          p.ID,
		OrderNumber: p.OrderNumber,
		Items:       toItems(p.Items),
		Total:       p.Total,
		Currency:    p.Currency,
		PlacedAt:    p.PlacedAt,
	}
}
