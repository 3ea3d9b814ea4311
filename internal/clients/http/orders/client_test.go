package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	"github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
)

func testDraft() *domain.DraftOrder {
	return &domain.DraftOrder{
		OrderNumber: "ORD-1748779200-abc123",
		Items: []domain.LineItem{
			{SKU: "SKU-1", Name: "Mechanical Keyboard", Quantity: 1, UnitPrice: 8500},
			{SKU: "SKU-2", Name: "Desk Mat", Quantity: 1, UnitPrice: 1500},
		},
		Currency:      "USD",
		Subtotal:      10000,
		Total:         10000,
		PaymentStatus: domain.PaymentPending,
		Status:        domain.LifecycleDraft,
	}
}

func TestCreate_PostsDraftAndReturnsAssignedID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/draft-orders", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body draftPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "ORD-1748779200-abc123", body.OrderNumber)
		require.Len(t, body.Items, 2)

		body.ID = "draft-42"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(body)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	created, err := client.Create(context.Background(), testDraft())
	require.NoError(t, err)
	require.Equal(t, "draft-42", created.ID)
	require.Equal(t, int64(10000), created.Total)
}

func TestGet_MapsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "gone")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestUpdate_SendsOnlySetFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/v1/draft-orders/draft-42", r.URL.Path)

		var raw map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		require.Contains(t, raw, "shipping")
		require.Contains(t, raw, "shippingMethodId")
		require.NotContains(t, raw, "items")
		require.NotContains(t, raw, "paymentStatus")

		draft := fromDraft(testDraft())
		draft.ID = "draft-42"
		draft.Shipping = 1800
		draft.Total = 11800
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(draft)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	shipping := int64(1800)
	method := "express"
	updated, err := client.Update(context.Background(), "draft-42", domain.DraftUpdate{
		Shipping:         &shipping,
		ShippingMethodID: &method,
	})
	require.NoError(t, err)
	require.Equal(t, int64(11800), updated.Total)
}

func TestConvert_ReturnsFinalOrder(t *testing.T) {
	placedAt := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/draft-orders/draft-42/convert", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(finalOrderPayload{
			ID:          "order-7",
			OrderNumber: "ORD-1748779200-abc123",
			Items:       fromItems(testDraft().Items),
			Total:       11800,
			Currency:    "USD",
			PlacedAt:    placedAt,
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	final, err := client.Convert(context.Background(), "draft-42")
	require.NoError(t, err)
	require.Equal(t, "order-7", final.ID)
	require.Equal(t, placedAt, final.PlacedAt)
}

func TestConvert_RepeatSurfacesConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"title":  "Conflict",
			"detail": "draft already converted",
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = client.Convert(context.Background(), "draft-42")
	require.ErrorIs(t, err, ports.ErrConflict)
	require.Contains(t, err.Error(), "draft already converted")
}

func TestDelete_IgnoresBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)
	require.NoError(t, client.Delete(context.Background(), "draft-42"))
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient("   ")
	require.Error(t, err)
}
