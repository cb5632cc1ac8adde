/**
 * @description
 * This file implements the consumer loop shared by both services. Each
 * Consumer subscribes one consumer group to one topic with auto-commit
 * disabled; offsets are committed manually after the business handler has
 * run, whether it succeeded or failed. Handler failures are logged and the
 * record is acknowledged anyway: there is no retry and no dead-letter path,
 * so a failed record is never redelivered.
 *
 * Partitions within one poll batch are processed concurrently; records
 * within a partition are handled strictly in arrival order, which preserves
 * per-transaction event ordering because records are keyed by transactionId.
 *
 * @dependencies
 * - github.com/twmb/franz-go/pkg/kgo: Pure-Go Kafka client.
 */

package kafka

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const defaultMaxPollRecords = 100

// Consumer owns one consumer-group subscription to one topic.
type Consumer struct {
	client         *kgo.Client
	topic          string
	maxPollRecords int
}

// NewConsumer creates a consumer for the topic within the given group.
// Offsets start from the earliest record when the group has no committed
// position yet.
func NewConsumer(brokers []string, groupID, topic string, maxPollRecords int) (*Consumer, error) {
	if maxPollRecords <= 0 {
		maxPollRecords = defaultMaxPollRecords
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
		kgo.DisableAutoCommit(),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return nil, err
	}

	return &Consumer{client: client, topic: topic, maxPollRecords: maxPollRecords}, nil
}

// Subscription is the handle for a running consumer loop. Stop cancels new
// polls, waits for in-flight handlers to finish, and returns once their
// offsets are committed.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop shuts the loop down and blocks until it has exited.
func (s *Subscription) Stop() {
	s.cancel()
	<-s.done
}

// Consume starts the poll loop in its own goroutine. The handler receives
// each record's payload; its return value is informational only, the offset
// is committed either way.
func (c *Consumer) Consume(handler func(payload []byte) bool) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}

	log.Printf("level=info component=kafka-consumer msg=\"subscription started\" topic=%s", c.topic)
	go c.run(ctx, handler, sub.done)

	return sub
}

func (c *Consumer) run(ctx context.Context, handler func([]byte) bool, done chan struct{}) {
	defer close(done)

	for {
		fetches := c.client.PollRecords(ctx, c.maxPollRecords)
		if fetches.IsClientClosed() {
			return
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Printf("level=error component=kafka-consumer msg=\"fetch error\" topic=%s partition=%d err=%v", topic, partition, err)
		})

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			processed []*kgo.Record
		)
		fetches.EachPartition(func(p kgo.FetchTopicPartition) {
			if len(p.Records) == 0 {
				return
			}
			wg.Add(1)
			go func(records []*kgo.Record) {
				defer wg.Done()
				for _, record := range records {
					if !handler(record.Value) {
						log.Printf("level=error component=kafka-consumer msg=\"handler failed; acknowledging anyway\" topic=%s partition=%d offset=%d key=%s", record.Topic, record.Partition, record.Offset, string(record.Key))
					}
					mu.Lock()
					processed = append(processed, record)
					mu.Unlock()
				}
			}(p.Records)
		})
		wg.Wait()

		if len(processed) > 0 {
			// Commit on a fresh context so records that were already handled
			// are acknowledged even when the loop is shutting down.
			commitCtx, cancelCommit := context.WithTimeout(context.Background(), 10*time.Second)
			if err := c.client.CommitRecords(commitCtx, processed...); err != nil {
				log.Printf("level=error component=kafka-consumer msg=\"offset commit failed\" topic=%s err=%v", c.topic, err)
			}
			cancelCommit()
		}

		if ctx.Err() != nil {
			log.Printf("level=info component=kafka-consumer msg=\"subscription released\" topic=%s", c.topic)
			return
		}
	}
}

// Close releases the underlying client. Callers should Stop any live
// subscription first.
func (c *Consumer) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
