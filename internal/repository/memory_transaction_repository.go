package repository

import (
	"context"
	"sync"

	"github.com/sardorbek/atmos-paylink/internal/domain"
)

// MemoryTransactionRepository implements TransactionRepository using
// in-memory storage. This is useful for testing and development.
type MemoryTransactionRepository struct {
	byAccount map[string]*domain.Transaction
	mu        sync.RWMutex
}

// NewMemoryTransactionRepository creates a new in-memory transaction repository
func NewMemoryTransactionRepository() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{
		byAccount: make(map[string]*domain.Transaction),
	}
}

// Create inserts a new transaction record
func (r *MemoryTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byAccount[tx.Account]; exists {
		return domain.ErrTransactionExists
	}

	// Clone to avoid external modifications
	t := *tx
	r.byAccount[tx.Account] = &t

	return nil
}

// GetByAccount retrieves a transaction by account
func (r *MemoryTransactionRepository) GetByAccount(ctx context.Context, account string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tx, exists := r.byAccount[account]
	if !exists {
		return nil, domain.ErrTransactionNotFound
	}

	// Return a copy
	t := *tx
	return &t, nil
}

// MarkPaid transitions the transaction for account to paid
func (r *MemoryTransactionRepository) MarkPaid(ctx context.Context, account string, gatewayTxID int64) (*domain.Transaction, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, exists := r.byAccount[account]
	if !exists {
		return nil, false, domain.ErrTransactionNotFound
	}

	transitioned := tx.MarkPaid(gatewayTxID)

	t := *tx
	return &t, transitioned, nil
}

// Clear clears all data (for testing)
func (r *MemoryTransactionRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byAccount = make(map[string]*domain.Transaction)
}

// Count returns the total number of transactions (for testing)
func (r *MemoryTransactionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byAccount)
}
