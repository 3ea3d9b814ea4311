package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-checkout-api/internal/domains/addressbook/adapters/memory"
	"github.com/Apurer/go-checkout-api/internal/domains/addressbook/domain"
	"github.com/Apurer/go-checkout-api/internal/domains/addressbook/ports"
)

func sampleAddress(owner string) domain.SavedAddress {
	return domain.SavedAddress{
		OwnerID:      owner,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		Phone:        "+44 20 7946 0321",
		AddressLine1: "12 Analytical Way",
		City:         "London",
		Region:       "Greater London",
		PostalCode:   "NW1 6XE",
		Country:      "GB",
	}
}

func TestRemember_StoresAndLists(t *testing.T) {
	svc := NewService(memory.NewRepository())

	saved, err := svc.Remember(context.Background(), sampleAddress("shopper-1"))
	require.NoError(t, err)
	require.NotZero(t, saved.ID)

	listed, err := svc.List(context.Background(), "shopper-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "12 Analytical Way", listed[0].AddressLine1)
}

func TestRemember_DeduplicatesByFingerprint(t *testing.T) {
	svc := NewService(memory.NewRepository())

	first, err := svc.Remember(context.Background(), sampleAddress("shopper-1"))
	require.NoError(t, err)

	again := sampleAddress("shopper-1")
	again.Phone = "+44 20 7946 9999" // contact change, same physical address
	second, err := svc.Remember(context.Background(), again)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	listed, err := svc.List(context.Background(), "shopper-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "+44 20 7946 9999", listed[0].Phone)
}

func TestRemember_DifferentStreetCreatesNewEntry(t *testing.T) {
	svc := NewService(memory.NewRepository())

	_, err := svc.Remember(context.Background(), sampleAddress("shopper-1"))
	require.NoError(t, err)

	moved := sampleAddress("shopper-1")
	moved.AddressLine1 = "1 Difference Engine Court"
	_, err = svc.Remember(context.Background(), moved)
	require.NoError(t, err)

	listed, err := svc.List(context.Background(), "shopper-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
}

func TestRemember_RejectsIncompleteAddress(t *testing.T) {
	svc := NewService(memory.NewRepository())

	incomplete := sampleAddress("shopper-1")
	incomplete.City = ""
	_, err := svc.Remember(context.Background(), incomplete)
	require.ErrorIs(t, err, domain.ErrInvalidAddress)
}

func TestList_UnknownOwnerIsEmpty(t *testing.T) {
	svc := NewService(memory.NewRepository())

	listed, err := svc.List(context.Background(), "stranger")
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestForget_RemovesOnlyOwnEntries(t *testing.T) {
	svc := NewService(memory.NewRepository())

	saved, err := svc.Remember(context.Background(), sampleAddress("shopper-1"))
	require.NoError(t, err)

	err = svc.Forget(context.Background(), "someone-else", saved.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)

	err = svc.Forget(context.Background(), "shopper-1", saved.ID)
	require.NoError(t, err)

	listed, err := svc.List(context.Background(), "shopper-1")
	require.NoError(t, err)
	require.Empty(t, listed)
}
