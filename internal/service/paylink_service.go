package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sardorbek/atmos-paylink/internal/domain"
	"github.com/sardorbek/atmos-paylink/internal/dto"
)

// CreatePaylinkRequest carries the inputs for payment-link creation
type CreatePaylinkRequest struct {
	Account string
	Amount  decimal.Decimal
}

// CreatePaylinkResult is the transaction plus its derived payment URL. The
// URL is recomputable from configuration and is not persisted.
type CreatePaylinkResult struct {
	Transaction *domain.Transaction
	PaymentURL  string
}

// PaylinkServiceConfig holds service-level settings
type PaylinkServiceConfig struct {
	// StoreID as registered with Atmos; part of the webhook signature
	StoreID string
	// APIKey is the shared webhook signature secret
	APIKey string
}

// PaylinkService orchestrates payment-link creation and webhook processing
type PaylinkService interface {
	// CreatePaymentLink registers a transaction with the gateway and stores
	// the local record. At most one transaction may exist per account.
	CreatePaymentLink(ctx context.Context, req *CreatePaylinkRequest) (*CreatePaylinkResult, error)

	// HandleWebhook authenticates and applies a payment notification. It is
	// safe to call more than once for the same payload: repeat deliveries
	// are a no-op and the order subsystem is notified at most once.
	HandleWebhook(ctx context.Context, payload *dto.WebhookNotification) (*domain.Transaction, error)

	// GetTransaction retrieves a transaction by account
	GetTransaction(ctx context.Context, account string) (*domain.Transaction, error)
}
