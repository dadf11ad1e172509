package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus represents the status of a payment-link transaction (matches DB ENUM)
type TransactionStatus string

const (
	TransactionStatusCreated   TransactionStatus = "created"
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusPaid      TransactionStatus = "paid"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Transaction represents one payment-link attempt against the Atmos gateway.
//
// Account is the stable join key between local and gateway state: the
// webhook correlates solely on it. GatewayTransactionID is advisory: the
// gateway may issue a different ID at payment time than at creation time,
// and the webhook overwrites it.
type Transaction struct {
	LocalID              string            `json:"id"`
	GatewayTransactionID *int64            `json:"gateway_transaction_id,omitempty"`
	Account              string            `json:"account"`
	Amount               decimal.Decimal   `json:"amount"`
	Status               TransactionStatus `json:"status"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// NewTransaction creates a new transaction in the created status
func NewTransaction(account string, amount decimal.Decimal, gatewayTxID int64) (*Transaction, error) {
	if account == "" {
		return nil, ErrAccountRequired
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	now := time.Now().UTC()
	return &Transaction{
		LocalID:              uuid.New().String(),
		GatewayTransactionID: &gatewayTxID,
		Account:              account,
		Amount:               amount,
		Status:               TransactionStatusCreated,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// MarkPaid transitions the transaction to paid and replaces the gateway
// transaction ID with the one delivered in the webhook. Re-applying it to
// an already-paid transaction is a no-op.
func (t *Transaction) MarkPaid(gatewayTxID int64) bool {
	if t.Status == TransactionStatusPaid {
		return false
	}
	t.Status = TransactionStatusPaid
	t.GatewayTransactionID = &gatewayTxID
	t.UpdatedAt = time.Now().UTC()
	return true
}

// IsPaid returns true if the transaction has been paid
func (t *Transaction) IsPaid() bool {
	return t.Status == TransactionStatusPaid
}

// AmountTiyin returns the amount in tiyin (minor units) as sent on the wire
// to the gateway. Amounts are stored in som (major units).
func (t *Transaction) AmountTiyin() int64 {
	return AmountToTiyin(t.Amount)
}

// AmountToTiyin converts a major-unit amount to tiyin via round(amount * 100).
func AmountToTiyin(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// AmountFromTiyin converts a tiyin amount back to major units.
func AmountFromTiyin(tiyin int64) decimal.Decimal {
	return decimal.NewFromInt(tiyin).Div(decimal.NewFromInt(100))
}
