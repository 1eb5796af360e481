// Package events delivers domain events to in-process subscribers.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/ev-demand-service/internal/domain"
	"github.com/couchcryptid/ev-demand-service/internal/observability"
)

// Handler reacts to a published event. A returned error is logged and does
// not stop delivery to other handlers.
type Handler func(ctx context.Context, event domain.Event) error

// Channel is a synchronous publish/subscribe channel keyed by event name.
// Every subscriber has been called by the time Publish returns.
type Channel struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewChannel creates an empty channel.
func NewChannel(logger *slog.Logger, metrics *observability.Metrics) *Channel {
	return &Channel{
		subscribers: make(map[string][]Handler),
		logger:      logger,
		metrics:     metrics,
	}
}

// Subscribe registers h for events named eventName.
func (c *Channel) Subscribe(eventName string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers[eventName] = append(c.subscribers[eventName], h)
	c.logger.Debug("event handler subscribed", "event", eventName, "handlers", len(c.subscribers[eventName]))
}

// Publish delivers event to each subscriber in registration order. Handler
// errors and panics are logged and counted.
func (c *Channel) Publish(ctx context.Context, event domain.Event) {
	c.mu.RLock()
	handlers := append([]Handler(nil), c.subscribers[event.Name()]...)
	c.mu.RUnlock()

	c.metrics.EventsPublished.WithLabelValues(event.Name()).Inc()
	if len(handlers) == 0 {
		c.logger.Debug("no subscribers for event", "event", event.Name())
		return
	}

	for _, h := range handlers {
		if err := c.deliver(ctx, h, event); err != nil {
			c.metrics.EventHandlerErrors.WithLabelValues(event.Name()).Inc()
			c.logger.Error("event handler failed",
				"event", event.Name(),
				"event_id", event.Metadata().ID,
				"area_id", event.Area().String(),
				"error", err,
			)
		}
	}
}

// PublishAll publishes events in order.
func (c *Channel) PublishAll(ctx context.Context, events []domain.Event) {
	for _, e := range events {
		c.Publish(ctx, e)
	}
}

func (c *Channel) deliver(ctx context.Context, h Handler, event domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, event)
}
