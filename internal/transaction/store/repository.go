/**
 * @description
 * This file defines the `Repository` interface for the transaction-service's
 * data access layer. The interface decouples the state machine from the
 * PostgreSQL implementation and gives tests a seam for stub repositories.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - internal/transaction/domain: Domain models.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/tonysanes/yape-challange/internal/transaction/domain"
)

var (
	// ErrTransactionNotFound is returned when no row matches the requested
	// transactionId.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// CreateTransaction inserts a new transaction row and fills the surrogate
	// id on the passed record.
	CreateTransaction(ctx context.Context, tx *domain.Transaction) error

	// FindTransactionByTransactionID returns the row for the public id, or
	// ErrTransactionNotFound.
	FindTransactionByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindAllTransactions returns every transaction row; an empty slice when
	// none exist.
	FindAllTransactions(ctx context.Context) ([]domain.Transaction, error)

	// UpdateTransactionStatus sets status and updatedAt on the row for the
	// public id and returns the updated record, or ErrTransactionNotFound.
	UpdateTransactionStatus(ctx context.Context, transactionID, status string, updatedAt time.Time) (*domain.Transaction, error)
}
