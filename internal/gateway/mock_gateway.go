package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// MockClient implements Client for development and load testing when no
// Atmos credentials are configured
type MockClient struct {
	config *MockClientConfig

	nextID       atomic.Int64
	mu           sync.RWMutex
	transactions map[int64]mockTransaction
}

type mockTransaction struct {
	Account     string
	AmountTiyin int64
	CreatedAt   time.Time
}

// MockClientConfig holds configuration for the mock client
type MockClientConfig struct {
	// StoreID is echoed into generated payment URLs
	StoreID string

	// DelayMs is the simulated gateway latency in milliseconds
	DelayMs int
}

// DefaultMockClientConfig returns default configuration
func DefaultMockClientConfig() *MockClientConfig {
	return &MockClientConfig{
		StoreID: "0000",
		DelayMs: 50,
	}
}

// NewMockClient creates a new mock gateway client
func NewMockClient(config *MockClientConfig) *MockClient {
	if config == nil {
		config = DefaultMockClientConfig()
	}

	c := &MockClient{
		config:       config,
		transactions: make(map[int64]mockTransaction),
	}
	// Start IDs in a realistic range
	c.nextID.Store(100000 + rand.Int63n(900000))
	return c
}

// GetAccessToken returns a static token
func (c *MockClient) GetAccessToken(ctx context.Context) (string, error) {
	return "mock-access-token", nil
}

// CreatePaymentLink registers a mock transaction and returns a fake
// checkout URL in the test-host format
func (c *MockClient) CreatePaymentLink(ctx context.Context, amount decimal.Decimal, account string) (*CreateLinkResult, error) {
	if account == "" {
		return nil, fmt.Errorf("account is required")
	}

	// Simulate gateway latency
	if c.config.DelayMs > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(c.config.DelayMs) * time.Millisecond):
		}
	}

	id := c.nextID.Add(1)

	c.mu.Lock()
	c.transactions[id] = mockTransaction{
		Account:     account,
		AmountTiyin: amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		CreatedAt:   time.Now().UTC(),
	}
	c.mu.Unlock()

	return &CreateLinkResult{
		TransactionID: id,
		PaymentURL:    fmt.Sprintf("%s?storeId=%s&transactionId=%d", testCheckoutBaseURL, c.config.StoreID, id),
	}, nil
}

// Transaction returns a registered mock transaction (for testing)
func (c *MockClient) Transaction(id int64) (string, int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tx, ok := c.transactions[id]
	return tx.Account, tx.AmountTiyin, ok
}

// Count returns the number of registered mock transactions (for testing)
func (c *MockClient) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.transactions)
}
