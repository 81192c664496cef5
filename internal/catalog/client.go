package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	apperrors "github.com/HubertasVin/pos-1206-sub000/pkg/errors"
	"github.com/HubertasVin/pos-1206-sub000/pkg/httpclient"
)

// HTTPDoer is the interface for executing HTTP requests. Both
// httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// CircuitOpenFallback is the circuit breaker fallback for catalog lookups.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.ServiceUnavailable("catalog service is temporarily unavailable, please retry shortly")
}

// Client resolves catalog units over HTTP from the catalog service.
type Client struct {
	httpClient HTTPDoer
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a catalog client against the given base URL.
func NewClient(httpClient HTTPDoer, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// unitResponse is the catalog service's response envelope for unit lookups.
type unitResponse struct {
	Data *Unit `json:"data"`
}

// ResolveProduct fetches a product's unit price and owning merchant.
func (c *Client) ResolveProduct(ctx context.Context, id string) (*Unit, error) {
	return c.resolve(ctx, "/api/v1/products/"+id, "product", id)
}

// ResolveVariation fetches a product variation. The returned unit's ProductID
// identifies the parent product.
func (c *Client) ResolveVariation(ctx context.Context, id string) (*Unit, error) {
	return c.resolve(ctx, "/api/v1/product-variations/"+id, "product variation", id)
}

// ResolveReservation fetches a reservation's priced service.
func (c *Client) ResolveReservation(ctx context.Context, id string) (*Unit, error) {
	return c.resolve(ctx, "/api/v1/reservations/"+id, "reservation", id)
}

func (c *Client) resolve(ctx context.Context, path, kind, id string) (*Unit, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", kind, err)
	}

	resp, err := c.httpClient.Do(ctx, httpReq)
	if err != nil {
		return nil, fmt.Errorf("call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Drain the structured body but surface a domain-shaped not-found.
		_ = httpclient.ParseResponseError(resp, "catalog")
		return nil, apperrors.NotFound(kind, id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}

	var out unitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", kind, err)
	}
	if out.Data == nil {
		return nil, fmt.Errorf("catalog returned empty %s payload", kind)
	}

	c.logger.DebugContext(ctx, "catalog unit resolved",
		slog.String("kind", kind),
		slog.String("id", id),
	)

	return out.Data, nil
}
