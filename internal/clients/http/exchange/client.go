// Package exchange is the REST client for the currency conversion service.
// Conversion failures only degrade a display affordance, so callers treat
// errors from this client as soft.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
)

var _ ports.CurrencyConverter = (*Client)(nil)

// Client talks to the exchange-rate service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// NewClient instantiates the exchange client with sane defaults. The timeout
// is short on purpose: a slow rate lookup must not stall checkout rendering.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("exchange base URL is required")
	}
	client := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 2 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Convert returns the amount expressed in the target currency, in minor units.
func (c *Client) Convert(ctx context.Context, amount int64, from, to string) (int64, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" {
		return 0, errors.New("currency codes are required")
	}
	if from == to {
		return amount, nil
	}

	query := url.Values{}
	query.Set("amount", strconv.FormatInt(amount, 10))
	query.Set("from", from)
	query.Set("to", to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/convert?"+query.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call exchange service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("exchange service status: %s", resp.Status)
	}

	var body struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if body.Currency != "" && body.Currency != to {
		return 0, fmt.Errorf("exchange service returned %s, wanted %s", body.Currency, to)
	}
	return body.Amount, nil
}
