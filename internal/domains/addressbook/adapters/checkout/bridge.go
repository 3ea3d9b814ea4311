// Package checkout adapts the address book service to the address port the
// checkout core consumes.
package checkout

import (
	"context"
	"errors"

	"github.com/Apurer/go-checkout-api/internal/domains/addressbook/domain"
	"github.com/Apurer/go-checkout-api/internal/domains/addressbook/ports"
	checkoutdomain "github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	checkoutports "github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
)

var _ checkoutports.AddressBook = (*Bridge)(nil)

// Bridge exposes the address book as the checkout core's AddressBook port.
type Bridge struct {
	service ports.Service
}

func NewBridge(service ports.Service) *Bridge {
	return &Bridge{service: service}
}

func (b *Bridge) List(ctx context.Context, ownerID string) ([]checkoutdomain.SavedAddress, error) {
	saved, err := b.service.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]checkoutdomain.SavedAddress, 0, len(saved))
	for _, addr := range saved {
		out = append(out, checkoutdomain.SavedAddress{
			ID: addr.ID,
			Address: checkoutdomain.Address{
				FirstName:    addr.FirstName,
				LastName:     addr.LastName,
				Email:        addr.Email,
				Phone:        addr.Phone,
				AddressLine1: addr.AddressLine1,
				AddressLine2: addr.AddressLine2,
				City:         addr.City,
				Region:       addr.Region,
				PostalCode:   addr.PostalCode,
				Country:      addr.Country,
			},
		})
	}
	return out, nil
}

func (b *Bridge) Save(ctx context.Context, ownerID string, address checkoutdomain.Address) error {
	_, err := b.service.Remember(ctx, domain.SavedAddress{
		OwnerID:      ownerID,
		FirstName:    address.FirstName,
		LastName:     address.LastName,
		Email:        address.Email,
		Phone:        address.Phone,
		AddressLine1: address.AddressLine1,
		AddressLine2: address.AddressLine2,
		City:         address.City,
		Region:       address.Region,
		PostalCode:   address.PostalCode,
		Country:      address.Country,
	})
	return err
}

func (b *Bridge) Forget(ctx context.Context, ownerID string, id int64) error {
	err := b.service.Forget(ctx, ownerID, id)
	if errors.Is(err, ports.ErrNotFound) {
		// Translate into the checkout context's sentinel so the transport
		// layer maps it without importing address book packages.
		return checkoutports.ErrNotFound
	}
	return err
}
