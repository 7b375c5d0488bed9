package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/nevermore/pkg/dialogue"
)

const defaultBuffer = 256

// Event is the wire form of a dialogue event.
type Event struct {
	Type      dialogue.EventKind `json:"type"`
	SessionID string             `json:"session_id"`
	NodeID    string             `json:"node_id,omitempty"`
	Time      time.Time          `json:"time"`
	Data      map[string]any     `json:"data,omitempty"`
}

// Channel is the Pub/Sub channel a session's events go to.
func Channel(sessionID uuid.UUID) string {
	return fmt.Sprintf("story-events:%s", sessionID.String())
}

// Broadcaster publishes story events to Redis Pub/Sub so tools outside the
// game process can follow a session.
//
// It is a dialogue.Observer. Observe never blocks: events are queued and
// published by Run. When the queue is full the event is dropped.
type Broadcaster struct {
	rdb       *redis.Client
	logger    *slog.Logger
	sessionID uuid.UUID
	queue     chan Event
	dropped   atomic.Int64
}

// Ensure Broadcaster implements dialogue.Observer
var _ dialogue.Observer = (*Broadcaster)(nil)

// NewBroadcaster creates a new event broadcaster for one session.
func NewBroadcaster(rdb *redis.Client, sessionID uuid.UUID, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		rdb:       rdb,
		logger:    logger,
		sessionID: sessionID,
		queue:     make(chan Event, defaultBuffer),
	}
}

// WithBuffer replaces the queue with one of size n. Call before Run.
func (b *Broadcaster) WithBuffer(n int) *Broadcaster {
	b.queue = make(chan Event, n)
	return b
}

// Dropped is the number of events discarded because the queue was full.
func (b *Broadcaster) Dropped() int64 {
	return b.dropped.Load()
}

// Observe converts and queues a dialogue event.
func (b *Broadcaster) Observe(ev dialogue.Event) {
	select {
	case b.queue <- b.convert(ev):
	default:
		if b.dropped.Add(1) == 1 {
			b.logger.Warn("Event queue full, dropping story events", "session_id", b.sessionID)
		}
	}
}

func (b *Broadcaster) convert(ev dialogue.Event) Event {
	out := Event{
		Type:      ev.Kind,
		SessionID: b.sessionID.String(),
		NodeID:    ev.NodeID,
		Time:      time.Now().UTC(),
	}

	data := map[string]any{}
	switch ev.Kind {
	case dialogue.EventChose:
		data["option"] = ev.Option
		data["label"] = ev.Label
	case dialogue.EventPresented:
		data["speaker"] = ev.Text
	case dialogue.EventJournal:
		data["entry"] = ev.Text
	case dialogue.EventCompleted:
		data["marker"] = ev.Text
	case dialogue.EventGoalChanged:
		data["goal"] = ev.Text
	case dialogue.EventFlagsSet:
		data["flags"] = ev.Flags
	case dialogue.EventFaulted:
		if ev.Err != nil {
			data["error"] = ev.Err.Error()
		}
	}
	if len(data) > 0 {
		out.Data = data
	}
	return out
}

// Run publishes queued events until ctx is cancelled, then publishes
// whatever is still queued using a short grace period.
func (b *Broadcaster) Run(ctx context.Context) {
	for {
		select {
		case ev := <-b.queue:
			_ = b.Publish(ctx, ev) // Logged by Publish
		case <-ctx.Done():
			b.drain()
			return
		}
	}
}

func (b *Broadcaster) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for {
		select {
		case ev := <-b.queue:
			if err := b.Publish(ctx, ev); err != nil {
				return
			}
		default:
			return
		}
	}
}

// Publish sends one event to the session channel.
func (b *Broadcaster) Publish(ctx context.Context, event Event) error {
	channel := Channel(b.sessionID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.rdb.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"node", event.NodeID,
	)
	return nil
}
