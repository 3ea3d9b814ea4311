package application

import (
	"context"
	"errors"

	"github.com/Apurer/go-checkout-api/internal/domains/addressbook/domain"
	"github.com/Apurer/go-checkout-api/internal/domains/addressbook/ports"
)

// Service exposes address book bounded context use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

// List returns the owner's saved addresses, most recently used first.
// An owner with no saved addresses gets an empty list, not an error.
func (s *Service) List(ctx context.Context, ownerID string) ([]domain.SavedAddress, error) {
	addresses, err := s.repo.ListByOwner(ctx, ownerID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	return addresses, err
}

// Remember stores an address for future prefill. Saving an address that
// matches an existing one by fingerprint refreshes that entry instead of
// duplicating it.
func (s *Service) Remember(ctx context.Context, address domain.SavedAddress) (*domain.SavedAddress, error) {
	address.Normalize()
	if err := address.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.repo.ListByOwner(ctx, address.OwnerID)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	fingerprint := address.Fingerprint()
	for _, candidate := range existing {
		if candidate.Fingerprint() == fingerprint {
			address.ID = candidate.ID
			address.CreatedAt = candidate.CreatedAt
			break
		}
	}
	return s.repo.Save(ctx, &address)
}

// Forget removes a saved address.
func (s *Service) Forget(ctx context.Context, ownerID string, id int64) error {
	return s.repo.Delete(ctx, ownerID, id)
}

var _ ports.Service = (*Service)(nil)
