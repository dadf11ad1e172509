package dto

import (
	"time"
)

// Topic names for paylink events
const (
	TopicPaymentPaid = "paylink.payment-paid"
)

// PaymentPaidEvent is published after a webhook transitions a transaction
// to paid. Delivery is best-effort; consumers must tolerate duplicates.
type PaymentPaidEvent struct {
	EventType            string    `json:"event_type"`
	TransactionID        string    `json:"transaction_id"`
	GatewayTransactionID int64     `json:"gateway_transaction_id"`
	Account              string    `json:"account"`
	AmountTiyin          int64     `json:"amount_tiyin"`
	Timestamp            time.Time `json:"timestamp"`
}

// Key returns the Kafka message key for partitioning
func (e *PaymentPaidEvent) Key() string {
	return e.Account
}
