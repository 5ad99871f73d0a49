// internal/journal/journal.go

// Package journal pushes accepted transitions onto a Redis list so a replay
// or audit consumer can reconstruct a game after the fact. The journal is
// optional; the coordinator runs identically without one.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list transition records are pushed to.
const DefaultQueueName = "tabooo_transitions"

// TransitionRecord holds the minimal info needed to replay one dispatch.
type TransitionRecord struct {
	RecordID  uuid.UUID `json:"record_id"`
	Seq       int       `json:"seq"`
	ClientID  string    `json:"client_id"`
	Event     string    `json:"event"`
	FromPhase string    `json:"from_phase"`
	ToPhase   string    `json:"to_phase"`
	Accepted  bool      `json:"accepted"`
	Timestamp int64     `json:"timestamp"`
}

// Journal wraps the Redis client and target queue.
type Journal struct {
	rdb   *redis.Client
	queue string
}

// Connect dials Redis at addr and verifies the connection. An empty queue
// name falls back to DefaultQueueName.
func Connect(addr, queue string, db int) (*Journal, error) {
	if queue == "" {
		queue = DefaultQueueName
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("journal: connect to Redis at %s: %w", addr, err)
	}
	return &Journal{rdb: rdb, queue: queue}, nil
}

// Publish serializes rec and pushes it onto the queue.
func (j *Journal) Publish(ctx context.Context, rec TransitionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("journal: marshal record: %w", err)
	}
	if err := j.rdb.RPush(ctx, j.queue, data).Err(); err != nil {
		return fmt.Errorf("journal: RPush to %q: %w", j.queue, err)
	}
	return nil
}

// Close releases the underlying Redis client.
func (j *Journal) Close() error {
	return j.rdb.Close()
}
