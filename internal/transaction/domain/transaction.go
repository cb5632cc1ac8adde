/**
 * @description
 * This file defines the domain models for the transaction-service: the
 * transaction record persisted in PostgreSQL and the DTO for incoming
 * creation requests.
 *
 * @notes
 * - The table keeps a surrogate bigint primary key; `transactionId` is the
 *   public identity, generated at creation and immutable afterwards.
 * - Amounts are decimals (`value`), never floats, to keep financial
 *   precision intact end to end.
 */

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the central record owned by the transaction-service. It
// maps directly to the `transactions` table.
type Transaction struct {
	ID                      int64           `json:"-"`
	TransactionID           string          `json:"transactionId"`
	AccountExternalIDDebit  string          `json:"accountExternalIdDebit"`
	AccountExternalIDCredit string          `json:"accountExternalIdCredit"`
	TransferTypeID          int             `json:"transferTypeId"`
	Value                   decimal.Decimal `json:"value"`
	Status                  string          `json:"status"`
	CreatedAt               time.Time       `json:"createdAt"`
	UpdatedAt               time.Time       `json:"updatedAt"`
}

// CreateTransactionRequest is the DTO for incoming transaction creation API
// requests. TransferTypeID is a pointer so a missing field can be told apart
// from an explicit zero.
type CreateTransactionRequest struct {
	AccountExternalIDDebit  string          `json:"accountExternalIdDebit"`
	AccountExternalIDCredit string          `json:"accountExternalIdCredit"`
	TransferTypeID          *int            `json:"transferTypeId"`
	Value                   decimal.Decimal `json:"value"`
}
