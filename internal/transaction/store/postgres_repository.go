/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. Amount columns are NUMERIC; they cross the driver boundary as
 * text so the decimal type keeps exact precision in both directions.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: PostgreSQL driver and connection pooling.
 * - github.com/shopspring/decimal: Exact decimal amounts.
 */

package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tonysanes/yape-challange/internal/transaction/domain"
)

// PostgresRepository is a concrete implementation of the Repository
// interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const transactionColumns = `id, transaction_id, account_external_id_debit, account_external_id_credit, transfer_type_id, value::text, status, created_at, updated_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		tx       domain.Transaction
		valueStr string
	)
	err := row.Scan(
		&tx.ID,
		&tx.TransactionID,
		&tx.AccountExternalIDDebit,
		&tx.AccountExternalIDCredit,
		&tx.TransferTypeID,
		&valueStr,
		&tx.Status,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return nil, err
	}
	tx.Value = value
	return &tx, nil
}

// CreateTransaction inserts a new transaction row.
func (r *PostgresRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, account_external_id_debit, account_external_id_credit, transfer_type_id, value, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.db.QueryRow(ctx, query,
		tx.TransactionID,
		tx.AccountExternalIDDebit,
		tx.AccountExternalIDCredit,
		tx.TransferTypeID,
		tx.Value.String(),
		tx.Status,
		tx.CreatedAt,
		tx.UpdatedAt,
	).Scan(&tx.ID)
}

// FindTransactionByTransactionID retrieves a transaction by its public id.
func (r *PostgresRepository) FindTransactionByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`
	tx, err := scanTransaction(r.db.QueryRow(ctx, query, transactionID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// FindAllTransactions retrieves every transaction, newest first.
func (r *PostgresRepository) FindAllTransactions(ctx context.Context) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}
	return transactions, rows.Err()
}

// UpdateTransactionStatus overwrites the status on the row for the public id
// and bumps updated_at.
func (r *PostgresRepository) UpdateTransactionStatus(ctx context.Context, transactionID, status string, updatedAt time.Time) (*domain.Transaction, error) {
	query := `
		UPDATE transactions
		SET status = $2, updated_at = $3
		WHERE transaction_id = $1
		RETURNING ` + transactionColumns
	tx, err := scanTransaction(r.db.QueryRow(ctx, query, transactionID, status, updatedAt))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}
