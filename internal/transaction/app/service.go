/**
 * @description
 * This file contains the core state machine of the transaction-service.
 * A transaction is created in PENDING, a creation event is published for the
 * antifraud-service, and the status reported back by that service is applied
 * as the terminal state (ACCEPTED or REJECTED).
 *
 * @notes
 * - Persist-then-publish: the row is written before the creation event is
 *   sent. A crash between the two steps leaves the transaction PENDING with
 *   no compensating event; there is deliberately no retry here.
 * - ApplyStatus overwrites whatever status is stored. Per-transaction
 *   partition ordering makes concurrent updates for one transaction
 *   impossible in normal operation.
 *
 * @dependencies
 * - github.com/google/uuid: transactionId generation.
 * - internal/events, internal/transaction/store, internal/transaction/domain.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tonysanes/yape-challange/internal/events"
	"github.com/tonysanes/yape-challange/internal/transaction/domain"
	"github.com/tonysanes/yape-challange/internal/transaction/store"
)

// ErrValidation marks a malformed creation request. No event is produced for
// a request that fails validation.
var ErrValidation = errors.New("invalid transaction request")

// EventPublisher is the slice of the Kafka producer the service needs.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, body interface{}) (partition int32, offset int64, err error)
}

// Service implements the transaction state machine.
type Service struct {
	repo          store.Repository
	publisher     EventPublisher
	creationTopic string
}

// NewService creates a Service with its dependencies passed in explicitly.
func NewService(repo store.Repository, publisher EventPublisher, creationTopic string) *Service {
	return &Service{
		repo:          repo,
		publisher:     publisher,
		creationTopic: creationTopic,
	}
}

func validateCreateRequest(req domain.CreateTransactionRequest) error {
	if strings.TrimSpace(req.AccountExternalIDDebit) == "" {
		return fmt.Errorf("%w: accountExternalIdDebit is required", ErrValidation)
	}
	if strings.TrimSpace(req.AccountExternalIDCredit) == "" {
		return fmt.Errorf("%w: accountExternalIdCredit is required", ErrValidation)
	}
	if req.TransferTypeID == nil {
		return fmt.Errorf("%w: transferTypeId is required", ErrValidation)
	}
	if !req.Value.IsPositive() {
		return fmt.Errorf("%w: value must be positive", ErrValidation)
	}
	return nil
}

// CreateTransaction validates the request, persists the transaction in
// PENDING, and publishes the creation event keyed by the new transactionId.
// A publish failure fails the whole operation so the caller sees the error.
func (s *Service) CreateTransaction(ctx context.Context, req domain.CreateTransactionRequest) (*domain.Transaction, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	tx := &domain.Transaction{
		TransactionID:           uuid.NewString(),
		AccountExternalIDDebit:  req.AccountExternalIDDebit,
		AccountExternalIDCredit: req.AccountExternalIDCredit,
		TransferTypeID:          *req.TransferTypeID,
		Value:                   req.Value,
		Status:                  events.StatusPending,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		log.Printf("level=error component=transaction-service msg=\"transaction persist failed\" err=%v", err)
		return nil, fmt.Errorf("persist transaction: %w", err)
	}
	log.Printf("level=info component=transaction-service msg=\"transaction saved\" transaction_id=%s", tx.TransactionID)

	event := &events.TransactionCreatedEvent{
		TransactionID:     tx.TransactionID,
		TransactionType:   events.TransactionType{Name: strconv.Itoa(tx.TransferTypeID)},
		TransactionStatus: events.TransactionStatus{Name: tx.Status},
		Value:             tx.Value,
		CreatedAt:         events.NewEventTime(tx.CreatedAt),
	}

	if _, _, err := s.publisher.Publish(ctx, s.creationTopic, tx.TransactionID, event); err != nil {
		return nil, fmt.Errorf("publish creation event: %w", err)
	}

	log.Printf("level=info component=transaction-service msg=\"transaction created and event published\" transaction_id=%s", tx.TransactionID)
	return tx, nil
}

// ApplyStatus transitions the transaction to the reported status and bumps
// updatedAt. Returns store.ErrTransactionNotFound for an unknown id.
func (s *Service) ApplyStatus(ctx context.Context, transactionID, newStatus string) (*domain.Transaction, error) {
	tx, err := s.repo.UpdateTransactionStatus(ctx, transactionID, newStatus, time.Now().UTC().Truncate(time.Second))
	if err != nil {
		return nil, err
	}
	log.Printf("level=info component=transaction-service msg=\"transaction status updated\" transaction_id=%s status=%s", tx.TransactionID, tx.Status)
	return tx, nil
}

// GetTransaction returns the transaction for the public id, or
// store.ErrTransactionNotFound.
func (s *Service) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.repo.FindTransactionByTransactionID(ctx, transactionID)
}

// ListTransactions returns all transactions; an empty slice when none exist.
func (s *Service) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return s.repo.FindAllTransactions(ctx)
}
