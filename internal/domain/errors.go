package domain

import "errors"

// Common domain errors
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransactionExists   = errors.New("transaction already exists for this account")
	ErrAccountRequired     = errors.New("account is required")
	ErrInvalidAmount       = errors.New("amount must be greater than 0")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrTokenExchange       = errors.New("token exchange failed")
	ErrGatewayRequest      = errors.New("gateway request failed")
	ErrOrderNotFound       = errors.New("order not found")
)
