package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sardorbek/atmos-paylink/internal/domain"
)

// newAtmosTestServer stands in for the partner API: /token issues a static
// bearer and counts hits, /merchant/pay/create records the last create body.
type atmosTestServer struct {
	*httptest.Server

	tokenCalls  atomic.Int64
	createCalls atomic.Int64
	lastCreate  atomic.Value // createRequest
}

func newAtmosTestServer(t *testing.T) *atmosTestServer {
	t.Helper()

	s := &atmosTestServer{}
	mux := http.NewServeMux()

	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		s.tokenCalls.Add(1)

		if !strings.HasPrefix(r.Header.Get("Authorization"), "Basic ") {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"invalid_client"}`)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"unsupported_grant_type"}`)
			return
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "token-abc",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})

	mux.HandleFunc("/merchant/pay/create", func(w http.ResponseWriter, r *http.Request) {
		s.createCalls.Add(1)

		if r.Header.Get("Authorization") != "Bearer token-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"invalid_token"}`)
			return
		}

		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.lastCreate.Store(req)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"transaction_id": 987654,
		})
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func newTestClient(t *testing.T, baseURL string) *AtmosClient {
	t.Helper()

	client, err := NewAtmosClient(&AtmosConfig{
		BaseURL:        baseURL,
		ConsumerKey:    "consumer-key",
		ConsumerSecret: "consumer-secret",
		StoreID:        "1981",
		IsTestMode:     true,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func TestAtmosClient_GetAccessToken(t *testing.T) {
	server := newAtmosTestServer(t)
	client := newTestClient(t, server.URL)

	token, err := client.GetAccessToken(context.Background())
	if err != nil {
		t.Fatalf("GetAccessToken failed: %v", err)
	}
	if token != "token-abc" {
		t.Errorf("Expected token 'token-abc', got '%s'", token)
	}
}

func TestAtmosClient_TokenCached(t *testing.T) {
	server := newAtmosTestServer(t)
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := client.CreatePaymentLink(ctx, decimal.NewFromInt(5000), "order-1"); err != nil {
			t.Fatalf("CreatePaymentLink failed: %v", err)
		}
	}

	if got := server.tokenCalls.Load(); got != 1 {
		t.Errorf("Expected 1 token exchange, got %d", got)
	}
	if got := server.createCalls.Load(); got != 3 {
		t.Errorf("Expected 3 create calls, got %d", got)
	}
}

func TestAtmosClient_InvalidateToken(t *testing.T) {
	server := newAtmosTestServer(t)
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	if _, err := client.GetAccessToken(ctx); err != nil {
		t.Fatalf("GetAccessToken failed: %v", err)
	}
	client.InvalidateToken()
	if _, err := client.GetAccessToken(ctx); err != nil {
		t.Fatalf("GetAccessToken after invalidate failed: %v", err)
	}

	if got := server.tokenCalls.Load(); got != 2 {
		t.Errorf("Expected 2 token exchanges after invalidate, got %d", got)
	}
}

func TestAtmosClient_CreatePaymentLink(t *testing.T) {
	server := newAtmosTestServer(t)
	client := newTestClient(t, server.URL)

	amount := decimal.RequireFromString("5000.50")
	result, err := client.CreatePaymentLink(context.Background(), amount, "order-1")
	if err != nil {
		t.Fatalf("CreatePaymentLink failed: %v", err)
	}

	if result.TransactionID != 987654 {
		t.Errorf("Expected transaction ID 987654, got %d", result.TransactionID)
	}
	expectedURL := "https://test-checkout.pays.uz/invoice/get?storeId=1981&transactionId=987654"
	if result.PaymentURL != expectedURL {
		t.Errorf("Expected payment URL %s, got %s", expectedURL, result.PaymentURL)
	}

	// Amount goes over the wire in tiyin
	sent, _ := server.lastCreate.Load().(createRequest)
	if sent.Amount != 500050 {
		t.Errorf("Expected amount 500050 tiyin, got %d", sent.Amount)
	}
	if sent.Account != "order-1" {
		t.Errorf("Expected account 'order-1', got '%s'", sent.Account)
	}
	if sent.StoreID != "1981" {
		t.Errorf("Expected store_id '1981', got '%s'", sent.StoreID)
	}
	if sent.Lang != "ru" {
		t.Errorf("Expected lang 'ru', got '%s'", sent.Lang)
	}
}

func TestAtmosClient_TokenExchangeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid_client"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.CreatePaymentLink(context.Background(), decimal.NewFromInt(100), "order-1")
	if !errors.Is(err, domain.ErrTokenExchange) {
		t.Errorf("Expected ErrTokenExchange, got %v", err)
	}
	// Upstream status and body are surfaced for operators
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "invalid_client") {
		t.Errorf("Expected error to carry upstream status and body, got: %v", err)
	}
}

func TestAtmosClient_CreateError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "token-abc"})
	})
	mux.HandleFunc("/merchant/pay/create", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message":"store not active"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.CreatePaymentLink(context.Background(), decimal.NewFromInt(100), "order-1")
	if !errors.Is(err, domain.ErrGatewayRequest) {
		t.Errorf("Expected ErrGatewayRequest, got %v", err)
	}
	if !strings.Contains(err.Error(), "store not active") {
		t.Errorf("Expected error to carry upstream body, got: %v", err)
	}
}

func TestAtmosClient_ProductionCheckoutURL(t *testing.T) {
	server := newAtmosTestServer(t)

	client, err := NewAtmosClient(&AtmosConfig{
		BaseURL:        server.URL,
		ConsumerKey:    "consumer-key",
		ConsumerSecret: "consumer-secret",
		StoreID:        "1981",
		IsTestMode:     false,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	result, err := client.CreatePaymentLink(context.Background(), decimal.NewFromInt(100), "order-1")
	if err != nil {
		t.Fatalf("CreatePaymentLink failed: %v", err)
	}
	if !strings.HasPrefix(result.PaymentURL, "https://checkout.pays.uz/invoice/get?") {
		t.Errorf("Expected production checkout host, got %s", result.PaymentURL)
	}
}

func TestNewAtmosClient_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  *AtmosConfig
	}{
		{"nil config", nil},
		{"missing credentials", &AtmosConfig{StoreID: "1981"}},
		{"missing store id", &AtmosConfig{ConsumerKey: "k", ConsumerSecret: "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAtmosClient(tt.cfg); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}
