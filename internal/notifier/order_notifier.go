package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sardorbek/atmos-paylink/internal/domain"
)

// OrderNotifier tells the order subsystem that an order has been paid.
// Callers treat it as best-effort: failures are logged, never propagated
// into the webhook outcome.
type OrderNotifier interface {
	SetOrderPaid(ctx context.Context, orderID string) error
}

// HTTPOrderNotifier implements OrderNotifier against the order service API
type HTTPOrderNotifier struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPOrderNotifier creates a new HTTP order notifier
func NewHTTPOrderNotifier(baseURL string, timeout time.Duration) *HTTPOrderNotifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPOrderNotifier{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetOrderPaid marks the order as paid in the order service. The order ID
// is the integer-parseable account string echoed back by the gateway.
func (n *HTTPOrderNotifier) SetOrderPaid(ctx context.Context, orderID string) error {
	if _, err := strconv.ParseInt(orderID, 10, 64); err != nil {
		return fmt.Errorf("%w: invalid order id %q", domain.ErrOrderNotFound, orderID)
	}

	url := fmt.Sprintf("%s/orders/%s/paid", n.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build order request: %w", err)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("order service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: order %s", domain.ErrOrderNotFound, orderID)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("order service returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// NoopOrderNotifier implements OrderNotifier as a no-op for deployments
// without an order service
type NoopOrderNotifier struct{}

// NewNoopOrderNotifier creates a new no-op order notifier
func NewNoopOrderNotifier() *NoopOrderNotifier {
	return &NoopOrderNotifier{}
}

// SetOrderPaid does nothing
func (n *NoopOrderNotifier) SetOrderPaid(ctx context.Context, orderID string) error {
	return nil
}
