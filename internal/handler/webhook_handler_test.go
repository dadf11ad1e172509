package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sardorbek/atmos-paylink/internal/domain"
	"github.com/sardorbek/atmos-paylink/internal/dto"
	"github.com/sardorbek/atmos-paylink/internal/gateway"
	"github.com/sardorbek/atmos-paylink/internal/service"
)

const (
	testStoreID = "1981"
	testAPIKey  = "test-api-key"
)

// mockPaylinkService implements service.PaylinkService for testing
type mockPaylinkService struct {
	byAccount map[string]*domain.Transaction

	// webhookErr, when set, is returned from HandleWebhook unconditionally
	webhookErr error
}

func newMockPaylinkService() *mockPaylinkService {
	return &mockPaylinkService{
		byAccount: make(map[string]*domain.Transaction),
	}
}

func (m *mockPaylinkService) CreatePaymentLink(ctx context.Context, req *service.CreatePaylinkRequest) (*service.CreatePaylinkResult, error) {
	if req.Account == "" {
		return nil, domain.ErrAccountRequired
	}
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if _, exists := m.byAccount[req.Account]; exists {
		return nil, domain.ErrTransactionExists
	}

	tx, err := domain.NewTransaction(req.Account, req.Amount, 123456)
	if err != nil {
		return nil, err
	}
	m.byAccount[req.Account] = tx
	return &service.CreatePaylinkResult{
		Transaction: tx,
		PaymentURL:  "https://test-checkout.pays.uz/invoice/get?storeId=" + testStoreID + "&transactionId=123456",
	}, nil
}

func (m *mockPaylinkService) HandleWebhook(ctx context.Context, payload *dto.WebhookNotification) (*domain.Transaction, error) {
	if m.webhookErr != nil {
		return nil, m.webhookErr
	}

	fields := gateway.SignatureFields{
		StoreID:       payload.StoreID,
		TransactionID: payload.TransactionIDString(),
		Invoice:       payload.Invoice,
		Amount:        payload.AmountString(),
	}
	if !gateway.VerifySignature(fields, testAPIKey, payload.Sign) {
		return nil, domain.ErrInvalidSignature
	}

	tx, ok := m.byAccount[payload.Invoice]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	tx.MarkPaid(payload.TransactionID)
	return tx, nil
}

func (m *mockPaylinkService) GetTransaction(ctx context.Context, account string) (*domain.Transaction, error) {
	tx, ok := m.byAccount[account]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return tx, nil
}

func setupWebhookRouter(svc service.PaylinkService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewWebhookHandler(svc)
	router.POST("/payments/atmos/webhook/", handler.HandleAtmosWebhook)

	return router
}

// signedWebhookBody builds a webhook JSON body carrying a valid signature
func signedWebhookBody(t *testing.T, account string, gatewayTxID, amountTiyin int64) []byte {
	t.Helper()

	payload := dto.WebhookNotification{
		StoreID:       testStoreID,
		TransactionID: gatewayTxID,
		Amount:        amountTiyin,
		Invoice:       account,
	}
	payload.Sign = gateway.ComputeSignature(gateway.SignatureFields{
		StoreID:       testStoreID,
		TransactionID: strconv.FormatInt(gatewayTxID, 10),
		Invoice:       account,
		Amount:        strconv.FormatInt(amountTiyin, 10),
	}, testAPIKey)

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal webhook payload: %v", err)
	}
	return body
}

func postWebhook(router *gin.Engine, body []byte) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", "/payments/atmos/webhook/", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeWebhookResponse(t *testing.T, w *httptest.ResponseRecorder) dto.WebhookResponse {
	t.Helper()
	var resp dto.WebhookResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestWebhookHandler_Success(t *testing.T) {
	svc := newMockPaylinkService()
	router := setupWebhookRouter(svc)

	tx, _ := domain.NewTransaction("100500", decimal.NewFromInt(100), 123456)
	svc.byAccount["100500"] = tx

	w := postWebhook(router, signedWebhookBody(t, "100500", 777, 10000))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	resp := decodeWebhookResponse(t, w)
	if resp.Status != 1 {
		t.Errorf("Expected status 1, got %d", resp.Status)
	}
	if resp.Message != "Успешно" {
		t.Errorf("Expected message 'Успешно', got '%s'", resp.Message)
	}

	if !tx.IsPaid() {
		t.Error("Expected transaction to be paid")
	}
}

func TestWebhookHandler_InvalidBody(t *testing.T) {
	router := setupWebhookRouter(newMockPaylinkService())

	// Missing required fields
	w := postWebhook(router, []byte(`{"store_id":"1981"}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	resp := decodeWebhookResponse(t, w)
	if resp.Status != 0 {
		t.Errorf("Expected status 0, got %d", resp.Status)
	}
}

func TestWebhookHandler_MalformedJSON(t *testing.T) {
	router := setupWebhookRouter(newMockPaylinkService())

	w := postWebhook(router, []byte(`not json`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestWebhookHandler_InvalidSignature(t *testing.T) {
	svc := newMockPaylinkService()
	router := setupWebhookRouter(svc)

	tx, _ := domain.NewTransaction("100500", decimal.NewFromInt(100), 123456)
	svc.byAccount["100500"] = tx

	payload := dto.WebhookNotification{
		StoreID:       testStoreID,
		TransactionID: 777,
		Amount:        10000,
		Invoice:       "100500",
		Sign:          "forged-signature",
	}
	body, _ := json.Marshal(payload)

	w := postWebhook(router, body)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
	}
	resp := decodeWebhookResponse(t, w)
	if resp.Status != 0 {
		t.Errorf("Expected status 0, got %d", resp.Status)
	}
	if tx.IsPaid() {
		t.Error("Expected transaction to stay unpaid")
	}
}

func TestWebhookHandler_UnknownInvoice(t *testing.T) {
	router := setupWebhookRouter(newMockPaylinkService())

	w := postWebhook(router, signedWebhookBody(t, "missing", 777, 10000))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
	}
	resp := decodeWebhookResponse(t, w)
	if resp.Status != 0 {
		t.Errorf("Expected status 0, got %d", resp.Status)
	}
}

func TestWebhookHandler_InternalError(t *testing.T) {
	svc := newMockPaylinkService()
	svc.webhookErr = errors.New("connection refused")
	router := setupWebhookRouter(svc)

	w := postWebhook(router, signedWebhookBody(t, "100500", 777, 10000))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	resp := decodeWebhookResponse(t, w)
	if resp.Status != 0 {
		t.Errorf("Expected status 0, got %d", resp.Status)
	}
	if resp.Message != "Internal server error" {
		t.Errorf("Expected generic message, got '%s'", resp.Message)
	}
}
