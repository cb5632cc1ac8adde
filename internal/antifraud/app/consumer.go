package app

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/tonysanes/yape-challange/internal/events"
)

// TransactionCreatedConsumer handles creation events from the
// transaction-creation topic and forwards each one to the evaluator after a
// simulated processing delay.
type TransactionCreatedConsumer struct {
	evaluator *Evaluator
	delay     time.Duration
}

func NewTransactionCreatedConsumer(evaluator *Evaluator, delay time.Duration) *TransactionCreatedConsumer {
	return &TransactionCreatedConsumer{evaluator: evaluator, delay: delay}
}

// HandleMessage is invoked by the consumer loop for each record. The offset
// is advanced whatever this returns. A publish failure here is terminal for
// the verdict: the evaluator has no caller to answer and keeps no record of
// the decision.
func (c *TransactionCreatedConsumer) HandleMessage(body []byte) bool {
	var event events.TransactionCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("level=error component=creation-consumer msg=\"payload unmarshal failed; dropping record\" err=%v", err)
		return true
	}

	if event.TransactionID == "" {
		log.Printf("level=error component=creation-consumer msg=\"creation event without transactionId; dropping record\" event_id=%s", event.EventID)
		return true
	}

	log.Printf("level=info component=creation-consumer msg=\"processing transaction\" transaction_id=%s value=%s", event.TransactionID, event.Value.String())

	// Simulated evaluation latency; the whole decide-and-publish step is a
	// bounded but non-zero-latency operation for callers.
	if c.delay > 0 {
		time.Sleep(c.delay)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := c.evaluator.EvaluateAndPublish(ctx, event); err != nil {
		log.Printf("level=error component=creation-consumer msg=\"evaluation publish failed\" transaction_id=%s err=%v", event.TransactionID, err)
		return false
	}

	return true
}
