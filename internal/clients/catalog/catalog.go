package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/shoplabs/shopcore/internal/apperrors"
	"github.com/shoplabs/shopcore/internal/service/models/product"
)

// Client talks to the product catalog service. Lookups are single-shot: no
// retries, no per-call timeout beyond whatever the injected http.Client
// carries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// GetProduct fetches one product by id. A 404 from the catalog yields
// (nil, nil); any other failure surfaces as an internal fetch error.
func (c *Client) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products/"+id, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "build catalog request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "catalog service unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, apperrors.Newf(apperrors.KindInternal, "catalog service returned status %d for product %s", resp.StatusCode, id)
	}

	var p product.Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "decode catalog response", err)
	}

	return &p, nil
}

// GetProducts resolves ids concurrently, best effort: per-id failures and
// not-found responses are dropped. The result carries no ordering guarantee
// relative to ids.
func (c *Client) GetProducts(ctx context.Context, ids []string) []product.Product {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		resolved = make([]product.Product, 0, len(ids))
	)

	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			p, err := c.GetProduct(ctx, id)
			if err != nil || p == nil {
				return
			}
			mu.Lock()
			resolved = append(resolved, *p)
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	return resolved
}

// Health pings the catalog health endpoint, returning an error when the
// service is unreachable or reports non-200.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build catalog health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog health check returned status %d", resp.StatusCode)
	}

	return nil
}
