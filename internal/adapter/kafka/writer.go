// Package kafka publishes scored hotspots to a downstream topic. The
// export is optional and best-effort: the pipeline logs and continues
// when a publish fails.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/hazewatch/hotspot-etl/internal/domain"
	"github.com/hazewatch/hotspot-etl/internal/observability"
)

// Writer produces scored hotspots to a Kafka topic.
// It implements pipeline.Exporter.
type Writer struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the given brokers and topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// ExportScored serializes and publishes a scored snapshot in a single
// WriteMessages call.
func (w *Writer) ExportScored(ctx context.Context, hotspots []domain.Hotspot) error {
	if len(hotspots) == 0 {
		return nil
	}
	scoredAt := domain.Now()
	msgs := make([]kafkago.Message, len(hotspots))
	for i := range hotspots {
		msg, err := serializeToMessage(hotspots[i], scoredAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write scored hotspots: %w", err)
	}
	w.metrics.RecordsExported.Add(float64(len(msgs)))
	w.logger.Debug("exported scored hotspots", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a scored hotspot into a Kafka message,
// keyed by the deterministic hotspot ID so re-exports of the same
// detection land on the same partition.
func serializeToMessage(h domain.Hotspot, scoredAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize hotspot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(h.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "sensor", Value: []byte(h.Sensor)},
			{Key: "scored_at", Value: []byte(scoredAt.Format(time.RFC3339))},
		},
	}, nil
}
