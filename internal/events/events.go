/**
 * @description
 * This package defines the event envelopes exchanged between the
 * transaction-service and the antifraud-service over Kafka. The two services
 * are deployed independently, so these types are the wire contract: field
 * names, the timestamp format, and the status values must stay in sync on
 * both sides.
 *
 * @notes
 * - Timestamps are serialized with second precision and no offset
 *   ("2006-01-02T15:04:05"). Producers always stamp them in UTC; consumers
 *   must assume the same.
 * - `eventId` and `eventTimestamp` are filled by the producer when absent,
 *   never by a consumer. Consumers must tolerate duplicate eventIds because
 *   delivery is at-least-once.
 *
 * @dependencies
 * - github.com/shopspring/decimal: Amounts are decimals on the wire, matching
 *   the relational column they come from.
 */

package events

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction status values shared by both services.
const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
)

// eventTimeLayout is the fixed textual timestamp format used on the wire.
const eventTimeLayout = "2006-01-02T15:04:05"

func init() {
	// Amounts travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// EventTime is a wall-clock timestamp carried inside an envelope. It
// serializes as "yyyy-MM-ddTHH:mm:ss" and marshals to null when unset.
type EventTime struct {
	time.Time
}

// NewEventTime truncates t to second precision, which is all the wire format
// can carry, so that a round trip compares equal.
func NewEventTime(t time.Time) EventTime {
	return EventTime{t.Truncate(time.Second)}
}

func (t EventTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(eventTimeLayout) + `"`), nil
}

func (t *EventTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		t.Time = time.Time{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid event timestamp %q", s)
	}
	parsed, err := time.ParseInLocation(eventTimeLayout, s[1:len(s)-1], time.UTC)
	if err != nil {
		return fmt.Errorf("invalid event timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// TransactionType carries the transfer type as a named object, mirroring the
// shape the downstream consumer expects.
type TransactionType struct {
	Name string `json:"name"`
}

// TransactionStatus carries a status value as a named object.
type TransactionStatus struct {
	Name string `json:"name"`
}

// TransactionCreatedEvent is published by the transaction-service on the
// transaction-creation topic after a transaction has been persisted.
type TransactionCreatedEvent struct {
	TransactionID     string            `json:"transactionId"`
	TransactionType   TransactionType   `json:"transactionType"`
	TransactionStatus TransactionStatus `json:"transactionStatus"`
	Value             decimal.Decimal   `json:"value"`
	CreatedAt         EventTime         `json:"createdAt"`
	EventID           string            `json:"eventId"`
	EventTimestamp    EventTime         `json:"eventTimestamp"`
}

// StampEventIdentity fills eventId and eventTimestamp when they are absent.
// Called by the producer just before serialization.
func (e *TransactionCreatedEvent) StampEventIdentity(eventID string, at time.Time) {
	if e.EventID == "" {
		e.EventID = eventID
	}
	if e.EventTimestamp.IsZero() {
		e.EventTimestamp = NewEventTime(at)
	}
}

// TransactionStatusUpdatedEvent is published by the antifraud-service on the
// anti-fraud-validation topic once it has evaluated a transaction.
type TransactionStatusUpdatedEvent struct {
	TransactionID  string    `json:"transactionId"`
	OldStatus      string    `json:"oldStatus"`
	NewStatus      string    `json:"newStatus"`
	Reason         string    `json:"reason,omitempty"`
	UpdatedBy      string    `json:"updatedBy"`
	UpdatedAt      EventTime `json:"updatedAt"`
	EventID        string    `json:"eventId"`
	EventTimestamp EventTime `json:"eventTimestamp"`
}

// StampEventIdentity fills eventId and eventTimestamp when they are absent.
func (e *TransactionStatusUpdatedEvent) StampEventIdentity(eventID string, at time.Time) {
	if e.EventID == "" {
		e.EventID = eventID
	}
	if e.EventTimestamp.IsZero() {
		e.EventTimestamp = NewEventTime(at)
	}
}
