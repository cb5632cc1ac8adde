package events

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTransactionCreatedEventRoundTrip(t *testing.T) {
	created := TransactionCreatedEvent{
		TransactionID:     "7f9b2c1e-0000-4000-8000-000000000001",
		TransactionType:   TransactionType{Name: "1"},
		TransactionStatus: TransactionStatus{Name: StatusPending},
		Value:             decimal.RequireFromString("120.50"),
		CreatedAt:         NewEventTime(time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)),
		EventID:           "evt-1",
		EventTimestamp:    NewEventTime(time.Date(2024, 3, 9, 15, 4, 6, 0, time.UTC)),
	}

	payload, err := json.Marshal(created)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded TransactionCreatedEvent
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded.TransactionID != created.TransactionID {
		t.Fatalf("transactionId mismatch: %q vs %q", decoded.TransactionID, created.TransactionID)
	}
	if decoded.TransactionType != created.TransactionType {
		t.Fatalf("transactionType mismatch: %+v vs %+v", decoded.TransactionType, created.TransactionType)
	}
	if decoded.TransactionStatus != created.TransactionStatus {
		t.Fatalf("transactionStatus mismatch: %+v vs %+v", decoded.TransactionStatus, created.TransactionStatus)
	}
	if !decoded.Value.Equal(created.Value) {
		t.Fatalf("value mismatch: %s vs %s", decoded.Value, created.Value)
	}
	if !decoded.CreatedAt.Equal(created.CreatedAt.Time) {
		t.Fatalf("createdAt mismatch: %v vs %v", decoded.CreatedAt, created.CreatedAt)
	}
	if decoded.EventID != created.EventID {
		t.Fatalf("eventId mismatch: %q vs %q", decoded.EventID, created.EventID)
	}
	if !decoded.EventTimestamp.Equal(created.EventTimestamp.Time) {
		t.Fatalf("eventTimestamp mismatch: %v vs %v", decoded.EventTimestamp, created.EventTimestamp)
	}
}

func TestTransactionStatusUpdatedEventRoundTrip(t *testing.T) {
	updated := TransactionStatusUpdatedEvent{
		TransactionID:  "7f9b2c1e-0000-4000-8000-000000000002",
		OldStatus:      StatusPending,
		NewStatus:      StatusAccepted,
		UpdatedBy:      "antifraud-service",
		UpdatedAt:      NewEventTime(time.Date(2024, 3, 9, 16, 0, 0, 0, time.UTC)),
		EventID:        "evt-2",
		EventTimestamp: NewEventTime(time.Date(2024, 3, 9, 16, 0, 1, 0, time.UTC)),
	}

	payload, err := json.Marshal(updated)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	// The evaluator never sets a reason; an empty one must stay off the wire.
	if strings.Contains(string(payload), "reason") {
		t.Fatalf("expected empty reason to be omitted, got %s", payload)
	}

	var decoded TransactionStatusUpdatedEvent
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded.OldStatus != updated.OldStatus || decoded.NewStatus != updated.NewStatus {
		t.Fatalf("status mismatch: %+v", decoded)
	}
	if decoded.UpdatedBy != updated.UpdatedBy {
		t.Fatalf("updatedBy mismatch: %q", decoded.UpdatedBy)
	}
	if !decoded.UpdatedAt.Equal(updated.UpdatedAt.Time) {
		t.Fatalf("updatedAt mismatch: %v vs %v", decoded.UpdatedAt, updated.UpdatedAt)
	}
	if decoded.Reason != "" {
		t.Fatalf("expected empty reason, got %q", decoded.Reason)
	}
}

func TestEventTimeWireFormat(t *testing.T) {
	et := NewEventTime(time.Date(2024, 12, 31, 23, 59, 58, 999_000_000, time.UTC))

	payload, err := json.Marshal(et)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(payload) != `"2024-12-31T23:59:58"` {
		t.Fatalf("unexpected wire format: %s", payload)
	}
}

func TestEventTimeMarshalsZeroAsNull(t *testing.T) {
	payload, err := json.Marshal(EventTime{})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(payload) != "null" {
		t.Fatalf("expected null for zero timestamp, got %s", payload)
	}

	var decoded EventTime
	if err := json.Unmarshal([]byte("null"), &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !decoded.IsZero() {
		t.Fatalf("expected zero timestamp, got %v", decoded)
	}
}

func TestEventTimeRejectsMalformedValue(t *testing.T) {
	var decoded EventTime
	if err := json.Unmarshal([]byte(`"2024-12-31 23:59:58"`), &decoded); err == nil {
		t.Fatal("expected error for timestamp without the T separator")
	}
}

func TestValueSerializesAsNumber(t *testing.T) {
	created := TransactionCreatedEvent{
		TransactionID: "tx-1",
		Value:         decimal.RequireFromString("999"),
	}

	payload, err := json.Marshal(created)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(payload), `"value":999`) {
		t.Fatalf("expected unquoted numeric value, got %s", payload)
	}
}

func TestStampEventIdentityFillsOnlyAbsentFields(t *testing.T) {
	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	var created TransactionCreatedEvent
	created.StampEventIdentity("evt-generated", now)
	if created.EventID != "evt-generated" {
		t.Fatalf("expected generated eventId, got %q", created.EventID)
	}
	if !created.EventTimestamp.Equal(now) {
		t.Fatalf("expected generated eventTimestamp, got %v", created.EventTimestamp)
	}

	// A second stamping must not overwrite: retried publishes stay
	// self-identifying.
	created.StampEventIdentity("evt-other", now.Add(time.Hour))
	if created.EventID != "evt-generated" {
		t.Fatalf("expected eventId to survive restamping, got %q", created.EventID)
	}
	if !created.EventTimestamp.Equal(now) {
		t.Fatalf("expected eventTimestamp to survive restamping, got %v", created.EventTimestamp)
	}
}

func TestStampedEventRoundTrips(t *testing.T) {
	created := TransactionCreatedEvent{
		TransactionID:     "tx-9",
		TransactionType:   TransactionType{Name: "3"},
		TransactionStatus: TransactionStatus{Name: StatusPending},
		Value:             decimal.RequireFromString("42.42"),
		CreatedAt:         NewEventTime(time.Now().UTC()),
	}
	created.StampEventIdentity("evt-stamped", time.Now().UTC())

	payload, err := json.Marshal(&created)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded TransactionCreatedEvent
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.EventID != "evt-stamped" {
		t.Fatalf("expected stamped eventId, got %q", decoded.EventID)
	}
	if !decoded.EventTimestamp.Equal(created.EventTimestamp.Time) {
		t.Fatalf("eventTimestamp mismatch: %v vs %v", decoded.EventTimestamp, created.EventTimestamp)
	}
}
