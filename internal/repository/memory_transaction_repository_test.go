package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sardorbek/atmos-paylink/internal/domain"
)

func newTestTransaction(t *testing.T, account string) *domain.Transaction {
	t.Helper()
	tx, err := domain.NewTransaction(account, decimal.NewFromInt(5000), 123456)
	if err != nil {
		t.Fatalf("Failed to build transaction: %v", err)
	}
	return tx
}

func TestMemoryRepository_Create(t *testing.T) {
	repo := NewMemoryTransactionRepository()
	ctx := context.Background()

	tx := newTestTransaction(t, "order-1")
	if err := repo.Create(ctx, tx); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if repo.Count() != 1 {
		t.Errorf("Expected 1 transaction, got %d", repo.Count())
	}
}

func TestMemoryRepository_Create_Duplicate(t *testing.T) {
	repo := NewMemoryTransactionRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, newTestTransaction(t, "order-1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	err := repo.Create(ctx, newTestTransaction(t, "order-1"))
	if !errors.Is(err, domain.ErrTransactionExists) {
		t.Errorf("Expected ErrTransactionExists, got %v", err)
	}
	if repo.Count() != 1 {
		t.Errorf("Expected 1 transaction, got %d", repo.Count())
	}
}

func TestMemoryRepository_GetByAccount(t *testing.T) {
	repo := NewMemoryTransactionRepository()
	ctx := context.Background()

	created := newTestTransaction(t, "order-1")
	if err := repo.Create(ctx, created); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByAccount(ctx, "order-1")
	if err != nil {
		t.Fatalf("GetByAccount failed: %v", err)
	}
	if got.LocalID != created.LocalID {
		t.Errorf("Expected transaction %s, got %s", created.LocalID, got.LocalID)
	}

	// Mutating the returned copy must not alter stored state
	got.Status = domain.TransactionStatusFailed
	again, _ := repo.GetByAccount(ctx, "order-1")
	if again.Status != domain.TransactionStatusCreated {
		t.Errorf("Expected stored status 'created', got '%s'", again.Status)
	}
}

func TestMemoryRepository_GetByAccount_NotFound(t *testing.T) {
	repo := NewMemoryTransactionRepository()

	_, err := repo.GetByAccount(context.Background(), "missing")
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("Expected ErrTransactionNotFound, got %v", err)
	}
}

func TestMemoryRepository_MarkPaid(t *testing.T) {
	repo := NewMemoryTransactionRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, newTestTransaction(t, "order-1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tx, transitioned, err := repo.MarkPaid(ctx, "order-1", 777)
	if err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if !transitioned {
		t.Error("Expected first MarkPaid to transition")
	}
	if tx.Status != domain.TransactionStatusPaid {
		t.Errorf("Expected status 'paid', got '%s'", tx.Status)
	}
	if tx.GatewayTransactionID == nil || *tx.GatewayTransactionID != 777 {
		t.Errorf("Expected gateway transaction ID 777, got %v", tx.GatewayTransactionID)
	}
}

func TestMemoryRepository_MarkPaid_Idempotent(t *testing.T) {
	repo := NewMemoryTransactionRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, newTestTransaction(t, "order-1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, transitioned, _ := repo.MarkPaid(ctx, "order-1", 777); !transitioned {
		t.Fatal("Expected first MarkPaid to transition")
	}

	tx, transitioned, err := repo.MarkPaid(ctx, "order-1", 888)
	if err != nil {
		t.Fatalf("Second MarkPaid failed: %v", err)
	}
	if transitioned {
		t.Error("Expected second MarkPaid to be a no-op")
	}
	// First delivery's ID sticks
	if *tx.GatewayTransactionID != 777 {
		t.Errorf("Expected gateway transaction ID to stay 777, got %d", *tx.GatewayTransactionID)
	}
}

func TestMemoryRepository_MarkPaid_NotFound(t *testing.T) {
	repo := NewMemoryTransactionRepository()

	_, _, err := repo.MarkPaid(context.Background(), "missing", 777)
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("Expected ErrTransactionNotFound, got %v", err)
	}
}
