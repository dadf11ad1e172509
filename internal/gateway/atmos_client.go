package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sardorbek/atmos-paylink/internal/domain"
)

const (
	// DefaultBaseURL is the Atmos partner API host
	DefaultBaseURL = "https://partner.atmos.uz"

	// Hosted checkout hosts, selected by test mode
	checkoutBaseURL     = "https://checkout.pays.uz/invoice/get"
	testCheckoutBaseURL = "https://test-checkout.pays.uz/invoice/get"

	// defaultTimeout bounds every outbound call to the gateway
	defaultTimeout = 30 * time.Second
)

// AtmosConfig holds configuration for the Atmos gateway client
type AtmosConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	StoreID        string
	TerminalID     string
	IsTestMode     bool
	Timeout        time.Duration
}

// AtmosClient implements Client against the Atmos partner API.
//
// The access token is cached for the process lifetime. Two requests racing
// on first acquisition may both hit the token endpoint; tokens are fungible
// so last write wins, but the mutex keeps the common path to a single call.
type AtmosClient struct {
	config     *AtmosConfig
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
}

// NewAtmosClient creates a new Atmos gateway client
func NewAtmosClient(cfg *AtmosConfig) (*AtmosClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("atmos config is required")
	}
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return nil, fmt.Errorf("atmos consumer credentials are required")
	}
	if cfg.StoreID == "" {
		return nil, fmt.Errorf("atmos store id is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &AtmosClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type createRequest struct {
	Amount     int64  `json:"amount"`
	Account    string `json:"account"`
	StoreID    string `json:"store_id"`
	Lang       string `json:"lang"`
	TerminalID string `json:"terminal_id,omitempty"`
}

type createResponse struct {
	TransactionID int64 `json:"transaction_id"`
}

// GetAccessToken returns the cached token or performs the token exchange
func (c *AtmosClient) GetAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Authorization", c.basicAuthHeader())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTokenExchange, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", domain.ErrTokenExchange, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrTokenExchange, resp.StatusCode, string(body))
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", domain.ErrTokenExchange, err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access_token in response", domain.ErrTokenExchange)
	}

	c.accessToken = tokenResp.AccessToken
	return c.accessToken, nil
}

// InvalidateToken drops the cached token so the next call re-authenticates
func (c *AtmosClient) InvalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = ""
}

// CreatePaymentLink registers the transaction with Atmos and derives the
// hosted checkout URL
func (c *AtmosClient) CreatePaymentLink(ctx context.Context, amount decimal.Decimal, account string) (*CreateLinkResult, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := createRequest{
		Amount:  domain.AmountToTiyin(amount),
		Account: account,
		StoreID: c.config.StoreID,
		Lang:    "ru",
	}
	if c.config.TerminalID != "" {
		payload.TerminalID = c.config.TerminalID
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal create request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/merchant/pay/create", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrGatewayRequest, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrGatewayRequest, resp.StatusCode, string(respBody))
	}

	var createResp createResponse
	if err := json.Unmarshal(respBody, &createResp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", domain.ErrGatewayRequest, err)
	}

	return &CreateLinkResult{
		TransactionID: createResp.TransactionID,
		PaymentURL:    c.paymentURL(createResp.TransactionID),
	}, nil
}

// paymentURL templates the hosted checkout URL for a gateway transaction
func (c *AtmosClient) paymentURL(transactionID int64) string {
	base := checkoutBaseURL
	if c.config.IsTestMode {
		base = testCheckoutBaseURL
	}
	return fmt.Sprintf("%s?storeId=%s&transactionId=%d", base, c.config.StoreID, transactionID)
}

func (c *AtmosClient) basicAuthHeader() string {
	credentials := c.config.ConsumerKey + ":" + c.config.ConsumerSecret
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}
