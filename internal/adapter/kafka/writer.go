// Package kafka exports alert transitions and decoded telemetry snapshots
// to a Kafka topic for downstream archival and analytics.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/an-gr-hh1/landslide-sync/internal/domain"
)

// Event is one exported sync event.
type Event struct {
	Kind       string                 `json:"kind"` // "alert_raised", "alert_cleared", "telemetry"
	Message    string                 `json:"message,omitempty"`
	Snapshot   *domain.SensorSnapshot `json:"snapshot,omitempty"`
	ObservedAt time.Time              `json:"observed_at"`
}

// Writer produces sync events to the export topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the export topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and writes one event. Export is best-effort
// observability: callers log failures and move on.
func (w *Writer) Publish(ctx context.Context, event Event) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Event into a Kafka message keyed by kind.
func serializeToMessage(event Event) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize sync event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Kind),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(event.Kind)},
			{Key: "observed_at", Value: []byte(event.ObservedAt.Format(time.RFC3339))},
		},
	}, nil
}
