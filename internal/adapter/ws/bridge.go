package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bonsai-todo/bonsai/internal/port/events"
)

// Bridge forwards task lifecycle events from the queue to the owning user's
// WebSocket connections.
type Bridge struct {
	queue events.Queue
	hub   *Hub
	stop  func()
}

// NewBridge creates a bridge between the event queue and the hub.
func NewBridge(queue events.Queue, hub *Hub) *Bridge {
	return &Bridge{queue: queue, hub: hub}
}

// Start subscribes to all task subjects. Call Stop to end delivery.
func (b *Bridge) Start(ctx context.Context) error {
	stop, err := b.queue.Subscribe(ctx, "tasks.>", func(subject string, data []byte) error {
		var ev events.TaskEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decode task event: %w", err)
		}
		if ev.UserID == "" {
			return fmt.Errorf("task event without user_id on %s", subject)
		}
		b.hub.SendToUser(ctx, ev.UserID, Message{
			Type:    subject,
			Payload: json.RawMessage(data),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("bridge subscribe: %w", err)
	}
	b.stop = stop
	return nil
}

// Stop ends event delivery.
func (b *Bridge) Stop() {
	if b.stop != nil {
		b.stop()
	}
}
