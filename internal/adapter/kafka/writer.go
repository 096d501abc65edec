package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/paleotemp-etl/internal/config"
	"github.com/couchcryptid/paleotemp-etl/internal/domain"
	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
	maxAttempts    = 3
)

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces one message per conversion run to the results topic.
// It implements pipeline.Publisher.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured results topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaResultsTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes the run summary and writes it, retrying transient
// failures with exponential backoff.
func (p *Publisher) Publish(ctx context.Context, res *domain.Result) error {
	msg, err := serializeToMessage(res)
	if err != nil {
		return err
	}

	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		err = p.writer.WriteMessages(ctx, msg)
		if err == nil {
			return nil
		}
		if attempt == maxAttempts || ctx.Err() != nil {
			return fmt.Errorf("publish run %s: %w", res.RunID, err)
		}
		p.logger.Warn("publish failed, retrying",
			"run_id", res.RunID.String(), "attempt", attempt, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return fmt.Errorf("publish run %s: %w", res.RunID, ctx.Err())
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a run summary into a Kafka message keyed by
// run ID.
func serializeToMessage(res *domain.Result) (kafkago.Message, error) {
	data, err := json.Marshal(res.Summarize())
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize run summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(res.RunID.String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "rows", Value: []byte(strconv.Itoa(res.Table.Len()))},
			{Key: "generated_at", Value: []byte(res.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
