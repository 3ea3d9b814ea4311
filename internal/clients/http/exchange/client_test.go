package exchange

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvert_QueriesService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/convert", r.URL.Path)
		require.Equal(t, "11800", r.URL.Query().Get("amount"))
		require.Equal(t, "USD", r.URL.Query().Get("from"))
		require.Equal(t, "EUR", r.URL.Query().Get("to"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"amount": 10856, "currency": "EUR"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	converted, err := client.Convert(context.Background(), 11800, "usd", "eur")
	require.NoError(t, err)
	require.Equal(t, int64(10856), converted)
}

func TestConvert_SameCurrencySkipsNetwork(t *testing.T) {
	client, err := NewClient("http://exchange.invalid")
	require.NoError(t, err)

	converted, err := client.Convert(context.Background(), 11800, "USD", "usd")
	require.NoError(t, err)
	require.Equal(t, int64(11800), converted)
}

func TestConvert_ServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = client.Convert(context.Background(), 100, "USD", "EUR")
	require.Error(t, err)
}

func TestConvert_MismatchedCurrencyRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"amount": 999, "currency": "GBP"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = client.Convert(context.Background(), 100, "USD", "EUR")
	require.Error(t, err)
}
