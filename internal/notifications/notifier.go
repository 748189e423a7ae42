package notifications

import (
	"context"
	"encoding/json"
	"log/slog"

	"pulse/internal/middleware"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Notifier publishes mutation events into a Redis channel.
type Notifier struct {
	rdb     *redis.Client
	channel string
}

// NewNotifier creates a new Notifier publishing to the given channel.
func NewNotifier(rdb *redis.Client, channel string) *Notifier {
	return &Notifier{rdb: rdb, channel: channel}
}

// Emit publishes the event with a fresh event id. The caller invokes it only
// after its transaction has committed; a publish failure is therefore a
// delivery gap, which is counted and logged but cannot fail the mutation.
func (n *Notifier) Emit(ctx context.Context, event Event) {
	if n == nil || n.rdb == nil {
		return
	}
	event.EventID = uuid.NewString()

	payload, err := json.Marshal(event)
	if err != nil {
		middleware.EventPublishFailures.Inc()
		middleware.Logger.ErrorContext(ctx, "marshal mutation event",
			slog.String("event", event.Event),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := n.rdb.Publish(ctx, n.channel, payload).Err(); err != nil {
		middleware.EventPublishFailures.Inc()
		middleware.Logger.ErrorContext(ctx, "publish mutation event",
			slog.String("event", event.Event),
			slog.String("channel", n.channel),
			slog.String("error", err.Error()),
		)
	}
}

// Subscribe subscribes to the event channel and calls onEvent for each
// incoming event until ctx is done. Intended for the fan-out service and for
// integration tests.
func (n *Notifier) Subscribe(ctx context.Context, onEvent func(Event)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, n.channel)
	// Force the subscription to be established before returning.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					middleware.Logger.Warn("drop malformed mutation event",
						slog.String("error", err.Error()),
					)
					continue
				}
				onEvent(event)
			}
		}
	}()

	return nil
}
