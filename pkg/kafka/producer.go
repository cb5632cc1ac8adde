/**
 * @description
 * This file implements the Kafka event producer shared by both services.
 * It owns the delivery guarantees of the pipeline: acks from all in-sync
 * replicas, idempotent produce, and a bounded in-flight request count so the
 * broker-side sequencing that deduplicates retried sends keeps its ordering
 * guarantee. Records are keyed by transactionId, which pins every event for
 * a transaction to one partition.
 *
 * @dependencies
 * - github.com/twmb/franz-go/pkg/kgo: Pure-Go Kafka client.
 * - github.com/google/uuid: Event id generation.
 */

package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Stampable is implemented by envelopes whose eventId and eventTimestamp the
// producer must fill when absent. Stamping happens before serialization so a
// retried publish of the same envelope is self-identifying downstream.
type Stampable interface {
	StampEventIdentity(eventID string, at time.Time)
}

// Producer publishes JSON envelopes to Kafka topics.
type Producer struct {
	client *kgo.Client
}

// NewProducer creates a producer connected to the given brokers.
func NewProducer(brokers []string, clientID string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers provided")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		// Durably replicated before the send is reported successful.
		kgo.RequiredAcks(kgo.AllISRAcks()),
		// Idempotent produce is kgo's default; the in-flight bound keeps its
		// sequencing valid.
		kgo.MaxProduceRequestsInflightPerBroker(5),
		// Murmur2 key hashing: equal keys always land on the same partition.
		kgo.RecordPartitioner(kgo.StickyKeyPartitioner(nil)),
	)
	if err != nil {
		return nil, err
	}

	return &Producer{client: client}, nil
}

// Publish stamps, serializes, and appends one record to the topic, keyed by
// key. It blocks until the broker acknowledges the write and returns the
// physical placement on success.
func (p *Producer) Publish(ctx context.Context, topic, key string, body interface{}) (partition int32, offset int64, err error) {
	if s, ok := body.(Stampable); ok {
		s.StampEventIdentity(uuid.NewString(), time.Now().UTC())
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return 0, 0, fmt.Errorf("serialize event: %w", err)
	}

	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		log.Printf("level=error component=kafka-producer msg=\"publish failed\" topic=%s key=%s err=%v", topic, key, err)
		return 0, 0, fmt.Errorf("publish to %s: %w", topic, err)
	}

	log.Printf("level=info component=kafka-producer msg=\"event published\" topic=%s key=%s partition=%d offset=%d", topic, key, record.Partition, record.Offset)
	return record.Partition, record.Offset, nil
}

// Close flushes buffered records and releases the client.
func (p *Producer) Close() {
	if p.client != nil {
		p.client.Close()
	}
}
