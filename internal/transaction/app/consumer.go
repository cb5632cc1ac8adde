package app

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/tonysanes/yape-challange/internal/events"
)

// StatusUpdateConsumer handles status-update events coming back from the
// antifraud-service on the anti-fraud-validation topic.
type StatusUpdateConsumer struct {
	service *Service
}

func NewStatusUpdateConsumer(service *Service) *StatusUpdateConsumer {
	return &StatusUpdateConsumer{service: service}
}

// HandleMessage is invoked by the consumer loop for each record. The offset
// is advanced whatever this returns; the return value only drives logging.
// Undecodable payloads are dropped; there is no dead-letter path.
func (c *StatusUpdateConsumer) HandleMessage(body []byte) bool {
	var event events.TransactionStatusUpdatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("level=error component=status-consumer msg=\"payload unmarshal failed; dropping record\" err=%v", err)
		return true
	}

	if event.TransactionID == "" || event.NewStatus == "" {
		log.Printf("level=error component=status-consumer msg=\"incomplete status event; dropping record\" event_id=%s", event.EventID)
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	log.Printf("level=info component=status-consumer msg=\"processing status update\" transaction_id=%s old_status=%s new_status=%s event_id=%s", event.TransactionID, event.OldStatus, event.NewStatus, event.EventID)

	if _, err := c.service.ApplyStatus(ctx, event.TransactionID, event.NewStatus); err != nil {
		log.Printf("level=error component=status-consumer msg=\"status update failed\" transaction_id=%s err=%v", event.TransactionID, err)
		return false
	}

	return true
}
