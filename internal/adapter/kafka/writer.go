// Package kafka publishes domain events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/ev-demand-service/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer used by EventWriter.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// EventWriter forwards demand events to a Kafka topic. Its Handle method is
// subscribed to the in-process event channel.
type EventWriter struct {
	writer messageWriter
	logger *slog.Logger
}

// NewEventWriter creates a Kafka producer for topic.
func NewEventWriter(brokers []string, topic string, logger *slog.Logger) *EventWriter {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &EventWriter{writer: w, logger: logger}
}

// Handle serializes one event and writes it synchronously. Messages are keyed
// by area so events for one area stay ordered within a partition.
func (w *EventWriter) Handle(ctx context.Context, event domain.Event) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event: %w", event.Name(), err)
	}
	w.logger.Debug("event written to kafka",
		"event", event.Name(),
		"event_id", event.Metadata().ID,
		"area_id", event.Area().String(),
	)
	return nil
}

func (w *EventWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an event into a Kafka message.
func serializeToMessage(event domain.Event) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s event: %w", event.Name(), err)
	}
	return kafkago.Message{
		Key:   []byte(event.Area().String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.Name())},
			{Key: "occurred_at", Value: []byte(event.Metadata().OccurredAt.Format(time.RFC3339))},
		},
	}, nil
}
