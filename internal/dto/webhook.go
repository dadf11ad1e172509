package dto

import "strconv"

// WebhookNotification is the JSON body Atmos posts when the customer
// completes payment. Amount is in tiyin. Invoice carries the account the
// link was created for; TransactionID may differ from the one issued at
// creation time.
type WebhookNotification struct {
	StoreID         string `json:"store_id" binding:"required"`
	TransactionID   int64  `json:"transaction_id" binding:"required"`
	TransactionTime string `json:"transaction_time"`
	Amount          int64  `json:"amount" binding:"required,gt=0"`
	Invoice         string `json:"invoice" binding:"required"`
	Sign            string `json:"sign" binding:"required"`
}

// AmountString returns the amount as the decimal string form used in the
// signature concatenation
func (w *WebhookNotification) AmountString() string {
	return strconv.FormatInt(w.Amount, 10)
}

// TransactionIDString returns the transaction ID as the string form used in
// the signature concatenation
func (w *WebhookNotification) TransactionIDString() string {
	return strconv.FormatInt(w.TransactionID, 10)
}

// WebhookResponse is the fixed response contract Atmos expects:
// status 1 on success, 0 on any failure.
type WebhookResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
