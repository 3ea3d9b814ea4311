//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	"github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
	"github.com/Apurer/go-checkout-api/internal/platform/migrations"
)

func setupCheckoutPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("checkout_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func newTestDraft(t *testing.T) *domain.DraftOrder {
	t.Helper()
	draft, err := domain.NewDraftOrder(&domain.CartSnapshot{
		Items: []domain.LineItem{
			{SKU: "SKU-1", Name: "Wireless Mouse", Quantity: 2, UnitPrice: 2500},
			{SKU: "SKU-2", Name: "USB Hub", Quantity: 1, UnitPrice: 5000},
		},
		Subtotal: 10000,
		Currency: "USD",
	}, domain.NewOrderNumber(time.Now(), "test0001"), time.Now())
	require.NoError(t, err)
	return draft
}

func TestDraftAPI_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCheckoutPostgresContainer(t)
	defer cleanup()

	api := NewDraftAPI(db)
	ctx := context.Background()

	created, err := api.Create(ctx, newTestDraft(t))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	fetched, err := api.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.OrderNumber, fetched.OrderNumber)
	assert.Equal(t, int64(10000), fetched.Total)
	assert.Len(t, fetched.Items, 2)
}

func TestDraftAPI_UpdateRecomputesTotal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCheckoutPostgresContainer(t)
	defer cleanup()

	api := NewDraftAPI(db)
	ctx := context.Background()

	created, err := api.Create(ctx, newTestDraft(t))
	require.NoError(t, err)

	shipping := int64(1800)
	methodID := "express"
	updated, err := api.Update(ctx, created.ID, domain.DraftUpdate{Shipping: &shipping, ShippingMethodID: &methodID})
	require.NoError(t, err)
	assert.Equal(t, int64(11800), updated.Total)
	assert.Equal(t, "express", updated.ShippingMethodID)
}

func TestDraftAPI_ConvertIsAtMostOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCheckoutPostgresContainer(t)
	defer cleanup()

	api := NewDraftAPI(db)
	ctx := context.Background()

	created, err := api.Create(ctx, newTestDraft(t))
	require.NoError(t, err)

	order, err := api.Convert(ctx, created.ID)
	require.NoError(t, err)
	require.NotEmpty(t, order.ID)
	assert.Equal(t, int64(10000), order.Total)

	_, err = api.Convert(ctx, created.ID)
	assert.ErrorIs(t, err, ports.ErrConflict)

	// Finalized drafts refuse further updates.
	tax := int64(100)
	_, err = api.Update(ctx, created.ID, domain.DraftUpdate{Tax: &tax})
	assert.ErrorIs(t, err, ports.ErrConflict)
}

func TestDraftAPI_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCheckoutPostgresContainer(t)
	defer cleanup()

	api := NewDraftAPI(db)
	ctx := context.Background()

	created, err := api.Create(ctx, newTestDraft(t))
	require.NoError(t, err)

	require.NoError(t, api.Delete(ctx, created.ID))
	_, err = api.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, api.Delete(ctx, created.ID), ports.ErrNotFound)
}

func TestDurableStore_RoundTripAndExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCheckoutPostgresContainer(t)
	defer cleanup()

	store := NewDurableStore(db)
	ctx := context.Background()

	require.NoError(t, store.SaveDraftID(ctx, "s1", "draft-1"))
	draftID, err := store.DraftID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "draft-1", draftID)

	record := ports.PaymentRecord{
		Method:   domain.MethodPayPal,
		Provider: "paypal",
		Payment: domain.CompletedPayment{
			TransactionID: "TX-1",
			PayerID:       "P1",
			PayerEmail:    "ada@example.com",
			Amount:        11800,
			Currency:      "USD",
			Status:        "COMPLETED",
		},
		RecordedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SavePayment(ctx, "s1", record))
	loaded, err := store.LastPayment(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "TX-1", loaded.Payment.TransactionID)

	require.NoError(t, store.StampCleanupAfter(ctx, "s1", time.Now().Add(-time.Minute)))
	refs, err := store.ListExpired(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "s1", refs[0].SessionID)
	assert.Equal(t, "draft-1", refs[0].DraftID)

	require.NoError(t, store.Clear(ctx, "s1"))
	draftID, err = store.DraftID(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, draftID)
}
