package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-checkout-api/internal/domains/addressbook/adapters/memory"
	"github.com/Apurer/go-checkout-api/internal/domains/addressbook/application"
	checkoutdomain "github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	checkoutports "github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
)

func newBridge() *Bridge {
	return NewBridge(application.NewService(memory.NewRepository()))
}

func sampleCheckoutAddress() checkoutdomain.Address {
	return checkoutdomain.Address{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		Phone:        "+44 20 7946 0102",
		AddressLine1: "12 Analytical Way",
		City:         "London",
		Region:       "Greater London",
		PostalCode:   "N1 9GU",
		Country:      "GB",
	}
}

func TestBridge_SaveThenListCarriesHandle(t *testing.T) {
	b := newBridge()
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, "owner-1", sampleCheckoutAddress()))

	saved, err := b.List(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.NotZero(t, saved[0].ID)
	require.Equal(t, "12 Analytical Way", saved[0].AddressLine1)
	require.Equal(t, "GB", saved[0].Country)
}

func TestBridge_ForgetRemovesEntry(t *testing.T) {
	b := newBridge()
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, "owner-1", sampleCheckoutAddress()))
	saved, err := b.List(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, saved, 1)

	require.NoError(t, b.Forget(ctx, "owner-1", saved[0].ID))
	saved, err = b.List(ctx, "owner-1")
	require.NoError(t, err)
	require.Empty(t, saved)
}

func TestBridge_ForgetUnknownTranslatesNotFound(t *testing.T) {
	b := newBridge()

	err := b.Forget(context.Background(), "owner-1", 404)
	require.ErrorIs(t, err, checkoutports.ErrNotFound)
}
