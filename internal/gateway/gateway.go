package gateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// CreateLinkResult is the outcome of a successful payment-link creation
type CreateLinkResult struct {
	// TransactionID is the gateway-assigned transaction ID. It is advisory:
	// the webhook may carry a different one for the same account.
	TransactionID int64

	// PaymentURL is the hosted checkout URL for the customer. It is derived
	// from configuration and TransactionID and is never persisted.
	PaymentURL string
}

// Client is the outbound interface to the Atmos gateway
type Client interface {
	// GetAccessToken returns a bearer token for the merchant API. The token
	// is fetched once per process lifetime and cached in memory.
	GetAccessToken(ctx context.Context) (string, error)

	// CreatePaymentLink registers a transaction with the gateway and returns
	// the hosted payment URL. amount is in major units (som); the wire
	// carries minor units (tiyin).
	CreatePaymentLink(ctx context.Context, amount decimal.Decimal, account string) (*CreateLinkResult, error)
}
