package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewTransaction(t *testing.T) {
	amount := decimal.RequireFromString("5000.50")
	tx, err := NewTransaction("order-1", amount, 123456)
	if err != nil {
		t.Fatalf("NewTransaction failed: %v", err)
	}

	if tx.LocalID == "" {
		t.Error("Expected local ID to be set")
	}
	if tx.Account != "order-1" {
		t.Errorf("Expected account 'order-1', got '%s'", tx.Account)
	}
	if tx.Status != TransactionStatusCreated {
		t.Errorf("Expected status 'created', got '%s'", tx.Status)
	}
	if tx.GatewayTransactionID == nil || *tx.GatewayTransactionID != 123456 {
		t.Errorf("Expected gateway transaction ID 123456, got %v", tx.GatewayTransactionID)
	}
	if !tx.Amount.Equal(amount) {
		t.Errorf("Expected amount %s, got %s", amount, tx.Amount)
	}
}

func TestNewTransaction_Validation(t *testing.T) {
	if _, err := NewTransaction("", decimal.NewFromInt(100), 1); err != ErrAccountRequired {
		t.Errorf("Expected ErrAccountRequired, got %v", err)
	}
	if _, err := NewTransaction("order-1", decimal.Zero, 1); err != ErrInvalidAmount {
		t.Errorf("Expected ErrInvalidAmount for zero, got %v", err)
	}
	if _, err := NewTransaction("order-1", decimal.NewFromInt(-5), 1); err != ErrInvalidAmount {
		t.Errorf("Expected ErrInvalidAmount for negative, got %v", err)
	}
}

func TestTransaction_MarkPaid(t *testing.T) {
	tx, _ := NewTransaction("order-1", decimal.NewFromInt(100), 111)

	if !tx.MarkPaid(222) {
		t.Error("Expected first MarkPaid to transition")
	}
	if tx.Status != TransactionStatusPaid {
		t.Errorf("Expected status 'paid', got '%s'", tx.Status)
	}
	// Webhook ID replaces the one issued at creation time
	if tx.GatewayTransactionID == nil || *tx.GatewayTransactionID != 222 {
		t.Errorf("Expected gateway transaction ID 222, got %v", tx.GatewayTransactionID)
	}

	// Second application is a no-op
	if tx.MarkPaid(333) {
		t.Error("Expected repeat MarkPaid to be a no-op")
	}
	if *tx.GatewayTransactionID != 222 {
		t.Errorf("Expected gateway transaction ID to stay 222, got %d", *tx.GatewayTransactionID)
	}
}

func TestAmountTiyinConversion(t *testing.T) {
	tests := []struct {
		amount string
		tiyin  int64
	}{
		{"5000", 500000},
		{"5000.50", 500050},
		{"0.01", 1},
		{"0.005", 1}, // rounds half up
		{"1234567.89", 123456789},
	}

	for _, tt := range tests {
		amount := decimal.RequireFromString(tt.amount)
		if got := AmountToTiyin(amount); got != tt.tiyin {
			t.Errorf("AmountToTiyin(%s): expected %d, got %d", tt.amount, tt.tiyin, got)
		}
	}
}

func TestAmountFromTiyin_RoundTrip(t *testing.T) {
	for _, tiyin := range []int64{1, 100, 500050, 123456789} {
		back := AmountToTiyin(AmountFromTiyin(tiyin))
		if back != tiyin {
			t.Errorf("Round trip for %d tiyin: got %d", tiyin, back)
		}
	}
}
