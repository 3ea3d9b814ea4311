// Package ports defines the address book contracts.
package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-checkout-api/internal/domains/addressbook/domain"
)

// ErrNotFound indicates the owner has no saved addresses.
var ErrNotFound = errors.New("address not found")

// Repository persists saved addresses per owner.
type Repository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]domain.SavedAddress, error)
	Save(ctx context.Context, address *domain.SavedAddress) (*domain.SavedAddress, error)
	Delete(ctx context.Context, ownerID string, id int64) error
}

// Service exposes the address book use cases.
type Service interface {
	List(ctx context.Context, ownerID string) ([]domain.SavedAddress, error)
	Remember(ctx context.Context, address domain.SavedAddress) (*domain.SavedAddress, error)
	Forget(ctx context.Context, ownerID string, id int64) error
}
