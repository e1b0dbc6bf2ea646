package cartclear

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sony/gobreaker/v2"
)

// Client deletes a user's cart on the cart service after an order is placed.
// Calls go through a circuit breaker: once the cart service keeps failing, the
// breaker rejects further attempts outright instead of tying up connections.
// Clearance is best effort either way, so a breaker rejection is reported like
// any other failure and the caller tolerates it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[struct{}]
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name: "cart-clearance",
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		breaker:    breaker,
	}
}

// Clear issues DELETE /cart/{userID}. Any non-200 response is an error.
func (c *Client) Clear(ctx context.Context, userID string) error {
	_, err := c.breaker.Execute(func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/cart/"+userID, nil)
		if err != nil {
			return struct{}{}, fmt.Errorf("build cart clearance request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("cart service unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return struct{}{}, fmt.Errorf("cart service returned status %d", resp.StatusCode)
		}

		return struct{}{}, nil
	})

	return err
}
