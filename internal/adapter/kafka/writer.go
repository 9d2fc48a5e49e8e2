package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/background-geolocation/internal/config"
	"github.com/couchcryptid/background-geolocation/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces location records to a Kafka topic.
// It implements relay.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured location topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes location records in a single
// WriteMessages call. Records are keyed by device so one device's fixes stay
// ordered on a single partition.
func (w *Writer) LoadBatch(ctx context.Context, records []domain.LocationRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d location messages: %w", len(msgs), err)
	}
	w.logger.Debug("published locations", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a LocationRecord into a Kafka message.
func serializeToMessage(rec domain.LocationRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize location record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.DeviceID),
		Value: data,
		Time:  rec.FixTime(),
		Headers: []kafkago.Header{
			{Key: "device_id", Value: []byte(rec.DeviceID)},
			{Key: "provider", Value: []byte(rec.Provider)},
			{Key: "location_id", Value: []byte(strconv.FormatInt(rec.ID, 10))},
			{Key: "recorded_at", Value: []byte(rec.FixTime().Format(time.RFC3339))},
		},
	}, nil
}
