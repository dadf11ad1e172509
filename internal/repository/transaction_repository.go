package repository

import (
	"context"

	"github.com/sardorbek/atmos-paylink/internal/domain"
)

// TransactionRepository defines the interface for transaction data access
type TransactionRepository interface {
	// Create inserts a new transaction record. At most one transaction may
	// exist per account; a second insert for the same account fails with
	// domain.ErrTransactionExists.
	Create(ctx context.Context, tx *domain.Transaction) error

	// GetByAccount retrieves a transaction by its account (invoice) key
	GetByAccount(ctx context.Context, account string) (*domain.Transaction, error)

	// MarkPaid transitions the transaction for account to paid and replaces
	// its gateway transaction ID. The returned bool reports whether the
	// transition happened: false means the transaction was already paid and
	// the record is unchanged (duplicate webhook delivery).
	MarkPaid(ctx context.Context, account string, gatewayTxID int64) (*domain.Transaction, bool, error)
}
