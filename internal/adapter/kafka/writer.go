// Package kafka publishes fire-ban status changes to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redstonelake/lakeside-api/internal/config"
	"github.com/redstonelake/lakeside-api/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// StatusKey is the message key for every status change. A single key keeps
// the events ordered on one partition and lets a compacted topic retain only
// the latest status.
const StatusKey = "fire-ban"

// Writer produces fire-ban status changes.
// It implements service.StatusPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured status topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaFireBanTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes one status change.
func (w *Writer) Publish(ctx context.Context, change domain.FireBanStatusChange) error {
	msg, err := serializeToMessage(change)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish fire-ban status: %w", err)
	}
	w.logger.Info("fire-ban status published",
		"previous", change.Previous,
		"current", change.Current,
		"decision_source", change.DecisionSource,
	)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a status change into a Kafka message.
func serializeToMessage(change domain.FireBanStatusChange) (kafkago.Message, error) {
	data, err := json.Marshal(change)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize status change: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(StatusKey),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "ban_type", Value: []byte(change.Current)},
			{Key: "decision_source", Value: []byte(change.DecisionSource)},
			{Key: "changed_at", Value: []byte(change.ChangedAt.Format(time.RFC3339))},
		},
	}, nil
}
