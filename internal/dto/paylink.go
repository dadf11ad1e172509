package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sardorbek/atmos-paylink/internal/domain"
)

// CreatePaylinkRequest represents a request to create a payment link
type CreatePaylinkRequest struct {
	Account string          `json:"account" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
}

// PaylinkResponse represents a payment-link transaction response
type PaylinkResponse struct {
	ID                   string                   `json:"id"`
	GatewayTransactionID *int64                   `json:"gateway_transaction_id,omitempty"`
	Account              string                   `json:"account"`
	Amount               decimal.Decimal          `json:"amount"`
	Status               domain.TransactionStatus `json:"status"`
	PaymentURL           string                   `json:"payment_url,omitempty"`
	CreatedAt            time.Time                `json:"created_at"`
	UpdatedAt            time.Time                `json:"updated_at"`
}

// FromTransaction converts a domain Transaction to PaylinkResponse.
// paymentURL is derived, not persisted; pass "" when unknown.
func FromTransaction(tx *domain.Transaction, paymentURL string) *PaylinkResponse {
	return &PaylinkResponse{
		ID:                   tx.LocalID,
		GatewayTransactionID: tx.GatewayTransactionID,
		Account:              tx.Account,
		Amount:               tx.Amount,
		Status:               tx.Status,
		PaymentURL:           paymentURL,
		CreatedAt:            tx.CreatedAt,
		UpdatedAt:            tx.UpdatedAt,
	}
}

// APIResponse is the envelope for paylink API responses
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError carries an error code and message
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewSuccessResponse wraps data in a success envelope
func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{Success: true, Data: data}
}

// NewErrorResponse wraps an error code and message in an error envelope
func NewErrorResponse(code, message string) APIResponse {
	return APIResponse{Success: false, Error: &APIError{Code: code, Message: message}}
}
