package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// dlqMaxLen bounds the dead letter stream. Trimming is approximate
// so appends stay O(1).
const dlqMaxLen = 1024

// Message is one stream entry delivered to a consumer. ID is the
// Redis stream entry ID used for acknowledgement.
type Message struct {
	ID     string
	Fields map[string]string
}

// Config holds the stream topology and delivery tuning for a Log.
type Config struct {
	Stream           string
	Group            string
	DeadLetterStream string
	BatchSize        int
	BlockTime        time.Duration
	MinIdleTime      time.Duration
	MaxDeliveries    int64
}

// Log is an append-only event log backed by a Redis stream with
// consumer group delivery. Producers call Append; consumers read
// through a group so each entry is delivered to exactly one group
// member at a time, and stays pending until acknowledged.
type Log struct {
	client *redis.Client
	cfg    Config
}

// NewLog wraps a Redis client as an event log. The client is owned
// by the caller.
func NewLog(client *redis.Client, cfg Config) *Log {
	return &Log{client: client, cfg: cfg}
}

// Stream returns the stream key this log appends to.
func (l *Log) Stream() string {
	return l.cfg.Stream
}

// Append adds an entry to the stream and returns its entry ID.
func (l *Log) Append(ctx context.Context, fields map[string]any) (string, error) {
	id, err := l.client.XAdd(ctx, &redis.XAddArgs{
		Stream: l.cfg.Stream,
		Values: fields,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to append to stream %s: %w", l.cfg.Stream, err)
	}
	return id, nil
}

// EnsureGroup creates the consumer group at the start of the stream,
// creating the stream itself if needed. Safe to call on every
// startup; an existing group is not an error.
func (l *Log) EnsureGroup(ctx context.Context) error {
	err := l.client.XGroupCreateMkStream(ctx, l.cfg.Stream, l.cfg.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group %s on %s: %w", l.cfg.Group, l.cfg.Stream, err)
	}
	return nil
}

// Read blocks up to the configured block time for new entries
// assigned to this consumer. Returns an empty slice when the block
// times out with nothing to deliver.
func (l *Log) Read(ctx context.Context, consumer string) ([]Message, error) {
	streams, err := l.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    l.cfg.Group,
		Consumer: consumer,
		Streams:  []string{l.cfg.Stream, ">"},
		Count:    int64(l.cfg.BatchSize),
		Block:    l.cfg.BlockTime,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read from stream %s: %w", l.cfg.Stream, err)
	}

	var msgs []Message
	for _, stream := range streams {
		for _, m := range stream.Messages {
			msgs = append(msgs, Message{ID: m.ID, Fields: stringFields(m.Values)})
		}
	}
	return msgs, nil
}

// Ack acknowledges processed entries, removing them from the group's
// pending list. Unacknowledged entries are redelivered via ClaimIdle.
func (l *Log) Ack(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := l.client.XAck(ctx, l.cfg.Stream, l.cfg.Group, ids...).Err(); err != nil {
		return fmt.Errorf("failed to ack %d entries on %s: %w", len(ids), l.cfg.Stream, err)
	}
	return nil
}

// ClaimIdle transfers entries that have been pending longer than the
// configured min idle time to this consumer. Covers entries whose
// original consumer crashed before acknowledging.
func (l *Log) ClaimIdle(ctx context.Context, consumer string) ([]Message, error) {
	claimed, _, err := l.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   l.cfg.Stream,
		Group:    l.cfg.Group,
		Consumer: consumer,
		MinIdle:  l.cfg.MinIdleTime,
		Start:    "0-0",
		Count:    int64(l.cfg.BatchSize),
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim idle entries on %s: %w", l.cfg.Stream, err)
	}

	var msgs []Message
	for _, m := range claimed {
		msgs = append(msgs, Message{ID: m.ID, Fields: stringFields(m.Values)})
	}
	return msgs, nil
}

// DeliveryCounts returns the delivery count for each of the given
// pending entry IDs owned by consumer. IDs must be in ascending
// stream order, as returned by ClaimIdle.
func (l *Log) DeliveryCounts(ctx context.Context, consumer string, ids []string) (map[string]int64, error) {
	if len(ids) == 0 {
		return map[string]int64{}, nil
	}

	pending, err := l.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream:   l.cfg.Stream,
		Group:    l.cfg.Group,
		Start:    ids[0],
		End:      ids[len(ids)-1],
		Count:    int64(len(ids)),
		Consumer: consumer,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read pending entries on %s: %w", l.cfg.Stream, err)
	}

	counts := make(map[string]int64, len(pending))
	for _, p := range pending {
		counts[p.ID] = p.RetryCount
	}
	return counts, nil
}

// MaxDeliveries returns the delivery bound after which an entry is
// dead lettered instead of retried.
func (l *Log) MaxDeliveries() int64 {
	return l.cfg.MaxDeliveries
}

// DeadLetter copies an entry to the dead letter stream, annotated
// with the failure reason and its original entry ID. The caller must
// still acknowledge the original entry afterwards.
func (l *Log) DeadLetter(ctx context.Context, msg Message, reason string) error {
	values := make(map[string]any, len(msg.Fields)+2)
	for k, v := range msg.Fields {
		values[k] = v
	}
	values["original_id"] = msg.ID
	values["error"] = reason

	err := l.client.XAdd(ctx, &redis.XAddArgs{
		Stream: l.cfg.DeadLetterStream,
		MaxLen: dlqMaxLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to dead letter entry %s: %w", msg.ID, err)
	}
	return nil
}

// PendingCount returns the number of entries delivered to the group
// but not yet acknowledged. Exposed as a gauge by the worker.
func (l *Log) PendingCount(ctx context.Context) (int64, error) {
	info, err := l.client.XPending(ctx, l.cfg.Stream, l.cfg.Group).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read pending count on %s: %w", l.cfg.Stream, err)
	}
	return info.Count, nil
}

func stringFields(values map[string]any) map[string]string {
	fields := make(map[string]string, len(values))
	for k, v := range values {
		if s, ok := v.(string); ok {
			fields[k] = s
			continue
		}
		fields[k] = fmt.Sprint(v)
	}
	return fields
}
