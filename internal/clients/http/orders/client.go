// Package orders is the REST client for the remote draft-order service. It
// implements the checkout core's DraftOrderAPI port.
package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	"github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
)

var _ ports.DraftOrderAPI = (*Client)(nil)

// Client talks to the draft-order service over HTTP.
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

// NewClient instantiates the draft-order client with sane defaults.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("orders base URL is required")
	}
	client := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Create registers a new draft order and returns it with its assigned id.
func (c *Client) Create(ctx context.Context, draft *domain.DraftOrder) (*domain.DraftOrder, error) {
	if draft == nil {
		return nil, errors.New("draft is nil")
	}
	var body draftPayload
	if err := c.do(ctx, http.MethodPost, "/v1/draft-orders", fromDraft(draft), &body); err != nil {
		return nil, err
	}
	return body.toDomain(), nil
}

// Get fetches a draft order by id.
func (c *Client) Get(ctx context.Context, id string) (*domain.DraftOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ports.ErrNotFound
	}
	var body draftPayload
	if err := c.do(ctx, http.MethodGet, "/v1/draft-orders/"+id, nil, &body); err != nil {
		return nil, err
	}
	return body.toDomain(), nil
}

// Update applies a partial mutation and returns the refreshed draft.
func (c *Client) Update(ctx context.Context, id string, update domain.DraftUpdate) (*domain.DraftOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ports.ErrNotFound
	}
	var body draftPayload
	if err := c.do(ctx, http.MethodPatch, "/v1/draft-orders/"+id, fromUpdate(update), &body); err != nil {
		return nil, err
	}
	return body.toDomain(), nil
}

// Delete removes a draft order.
func (c *Client) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ports.ErrNotFound
	}
	return c.do(ctx, http.MethodDelete, "/v1/draft-orders/"+id, nil, nil)
}

// Convert finalizes the draft into an immutable order. The service enforces
// at-most-once conversion; a repeat attempt surfaces as ErrConflict.
func (c *Client) Convert(ctx context.Context, id string) (*domain.FinalOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ports.ErrNotFound
	}
	var body finalOrderPayload
	if err := c.do(ctx, http.MethodPost, "/v1/draft-orders/"+id+"/convert", nil, &body); err != nil {
		return nil, err
	}
	return body.toDomain(), nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call draft-order service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ports.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", ports.ErrConflict, errorMessage(resp))
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("draft-order service error: %s", errorMessage(resp))
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(resp *http.Response) string {
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && json.Unmarshal(raw, &problem) == nil {
		if problem.Detail != "" {
			return problem.Detail
		}
		if problem.Title != "" {
			return problem.Title
		}
	}
	return resp.Status
}
