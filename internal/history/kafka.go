package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// KafkaConfig holds configuration for the Kafka-backed recorder.
type KafkaConfig struct {
	// Brokers is the list of Kafka broker addresses.
	Brokers []string

	// Topic is the topic search records are published to.
	Topic string

	// BatchTimeout bounds how long records sit in the writer's batch
	// buffer. Defaults to one second.
	BatchTimeout time.Duration
}

// messageWriter is the subset of kafka.Writer the recorder uses.
// Narrowed for testability.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaRecorder publishes search records to a Kafka topic with an
// async writer, so Record never blocks on broker round trips. Delivery
// failures are logged via the writer's completion callback.
type KafkaRecorder struct {
	writer messageWriter
	logger zerolog.Logger
}

var _ Recorder = (*KafkaRecorder)(nil)

// NewKafkaRecorder creates a recorder publishing to the given topic.
func NewKafkaRecorder(cfg KafkaConfig, logger zerolog.Logger) *KafkaRecorder {
	logger = logger.With().Str("component", "history_recorder").Logger()

	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		Async:        true,
		BatchTimeout: cfg.BatchTimeout,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn().Err(err).Int("records", len(messages)).
					Msg("failed to deliver search history records")
			}
		},
	}

	return &KafkaRecorder{
		writer: writer,
		logger: logger,
	}
}

// Record publishes one search record keyed by request ID. Failures are
// logged and dropped.
func (r *KafkaRecorder) Record(ctx context.Context, rec Record) {
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		r.logger.Error().Err(err).Str("request_id", rec.RequestID).
			Msg("failed to marshal search history record")
		return
	}

	msg := kafka.Message{
		Key:   []byte(rec.RequestID),
		Value: payload,
	}
	if err := r.writer.WriteMessages(ctx, msg); err != nil {
		r.logger.Warn().Err(err).Str("request_id", rec.RequestID).
			Msg("failed to enqueue search history record")
	}
}

// Close flushes pending records and closes the writer.
func (r *KafkaRecorder) Close() error {
	return r.writer.Close()
}
