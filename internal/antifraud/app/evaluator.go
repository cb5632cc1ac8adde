/**
 * @description
 * This file contains the risk evaluation rule of the antifraud-service and
 * the construction of the status-update event it reports back. The service
 * holds no state of its own: every decision is a pure function of the
 * transaction value and the configured threshold.
 *
 * @dependencies
 * - github.com/shopspring/decimal: Threshold comparison on exact decimals.
 * - internal/events: Wire contract shared with the transaction-service.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tonysanes/yape-challange/internal/events"
)

// EventPublisher is the slice of the Kafka producer the evaluator needs.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, body interface{}) (partition int32, offset int64, err error)
}

// Evaluator decides whether a transaction is accepted or rejected and
// publishes the verdict on the anti-fraud-validation topic.
type Evaluator struct {
	publisher       EventPublisher
	validationTopic string
	threshold       decimal.Decimal
	updatedBy       string
}

// NewEvaluator creates an Evaluator with its dependencies passed in
// explicitly. updatedBy identifies this evaluator in outgoing events.
func NewEvaluator(publisher EventPublisher, validationTopic string, threshold decimal.Decimal, updatedBy string) *Evaluator {
	return &Evaluator{
		publisher:       publisher,
		validationTopic: validationTopic,
		threshold:       threshold,
		updatedBy:       updatedBy,
	}
}

// Decide applies the risk rule: REJECTED when the value exceeds the
// threshold, ACCEPTED otherwise. A value equal to the threshold is accepted.
func (e *Evaluator) Decide(value decimal.Decimal) string {
	if value.GreaterThan(e.threshold) {
		return events.StatusRejected
	}
	return events.StatusAccepted
}

// EvaluateAndPublish decides on the created transaction and publishes the
// status-update event keyed by the transactionId, so the verdict lands on
// the same partition ordering as the creation event.
func (e *Evaluator) EvaluateAndPublish(ctx context.Context, created events.TransactionCreatedEvent) error {
	decision := e.Decide(created.Value)

	event := &events.TransactionStatusUpdatedEvent{
		TransactionID: created.TransactionID,
		OldStatus:     created.TransactionStatus.Name,
		NewStatus:     decision,
		UpdatedBy:     e.updatedBy,
		UpdatedAt:     events.NewEventTime(time.Now().UTC()),
	}

	if _, _, err := e.publisher.Publish(ctx, e.validationTopic, created.TransactionID, event); err != nil {
		return fmt.Errorf("publish status update: %w", err)
	}

	log.Printf("level=info component=antifraud-service msg=\"status update published\" transaction_id=%s decision=%s", created.TransactionID, decision)
	return nil
}
