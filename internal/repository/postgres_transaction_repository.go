package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/sardorbek/atmos-paylink/internal/domain"
	"github.com/sardorbek/atmos-paylink/pkg/database"
)

// PostgreSQL error code for unique violation
const pgUniqueViolationCode = "23505"

// PostgresTransactionRepository implements TransactionRepository using PostgreSQL
type PostgresTransactionRepository struct {
	db *database.PostgresDB
}

// NewPostgresTransactionRepository creates a new PostgreSQL transaction repository
func NewPostgresTransactionRepository(db *database.PostgresDB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

// EnsureSchema creates the transactions table if it does not exist
func (r *PostgresTransactionRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS atmos_transactions (
			id UUID PRIMARY KEY,
			gateway_transaction_id BIGINT,
			account TEXT NOT NULL,
			amount NUMERIC(18,2) NOT NULL,
			status TEXT NOT NULL DEFAULT 'created',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT atmos_transactions_account_key UNIQUE (account)
		)`

	if _, err := r.db.Pool().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Create inserts a new transaction record. The unique constraint on account
// serializes concurrent creation attempts for the same account.
func (r *PostgresTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO atmos_transactions (
			id, gateway_transaction_id, account, amount, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`

	_, err := r.db.Pool().Exec(ctx, query,
		tx.LocalID,
		tx.GatewayTransactionID,
		tx.Account,
		tx.Amount.StringFixed(2),
		string(tx.Status),
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return domain.ErrTransactionExists
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// GetByAccount retrieves a transaction by account
func (r *PostgresTransactionRepository) GetByAccount(ctx context.Context, account string) (*domain.Transaction, error) {
	query := `
		SELECT id, gateway_transaction_id, account, amount::text, status, created_at, updated_at
		FROM atmos_transactions
		WHERE account = $1`

	row := r.db.Pool().QueryRow(ctx, query, account)
	return scanTransaction(row)
}

// MarkPaid transitions the transaction for account to paid in a single
// conditional UPDATE so that duplicate webhook deliveries leave the record
// untouched.
func (r *PostgresTransactionRepository) MarkPaid(ctx context.Context, account string, gatewayTxID int64) (*domain.Transaction, bool, error) {
	query := `
		UPDATE atmos_transactions
		SET gateway_transaction_id = $2, status = 'paid', updated_at = now()
		WHERE account = $1 AND status <> 'paid'
		RETURNING id, gateway_transaction_id, account, amount::text, status, created_at, updated_at`

	row := r.db.Pool().QueryRow(ctx, query, account, gatewayTxID)
	tx, err := scanTransaction(row)
	if err == nil {
		return tx, true, nil
	}
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		return nil, false, err
	}

	// No row updated: either unknown account or already paid
	tx, err = r.GetByAccount(ctx, account)
	if err != nil {
		return nil, false, err
	}
	return tx, false, nil
}

// scanTransaction scans a single transaction row
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	var status string
	var amount string

	err := row.Scan(
		&tx.LocalID,
		&tx.GatewayTransactionID,
		&tx.Account,
		&amount,
		&status,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	tx.Status = domain.TransactionStatus(status)
	tx.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount %q: %w", amount, err)
	}

	return &tx, nil
}
