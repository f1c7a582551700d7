package ingress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"operator-button-service/internal/observability/logging"
	"operator-button-service/internal/observability/metrics"
	"operator-button-service/internal/service/buttons"
	"operator-button-service/internal/service/operator"
)

// ButtonRecord is the JSON payload of a Kafka ingress message.
type ButtonRecord struct {
	Operator string `json:"operator"`
	Button1  bool   `json:"btn1"`
	Button2  bool   `json:"btn2"`
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaConfig configures the ingress consumer.
type KafkaConfig struct {
	Brokers         []string
	Topic           string
	GroupID         string
	DefaultOperator string // used when a record has no operator (or key)
	Metrics         *metrics.Metrics
}

// KafkaConsumer reads button records from a topic and pushes them to the registry.
type KafkaConsumer struct {
	reader          messageReader
	pusher          Pusher
	topic           string
	defaultOperator string
	retryDelay      time.Duration
	metrics         *metrics.Metrics
	logger          zerolog.Logger
}

// NewKafkaConsumer creates a consumer group reader for cfg.Topic.
func NewKafkaConsumer(cfg KafkaConfig, pusher Pusher) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	})
	return newKafkaConsumer(reader, cfg, pusher)
}

func newKafkaConsumer(reader messageReader, cfg KafkaConfig, pusher Pusher) *KafkaConsumer {
	m := cfg.Metrics
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &KafkaConsumer{
		reader:          reader,
		pusher:          pusher,
		topic:           cfg.Topic,
		defaultOperator: cfg.DefaultOperator,
		retryDelay:      time.Second,
		metrics:         m,
		logger:          logging.WithComponent("kafka-ingress").With().Str("topic", cfg.Topic).Logger(),
	}
}

// Run consumes until ctx is cancelled. Read errors are logged and retried.
func (c *KafkaConsumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	c.logger.Info().Msg("Consuming button records")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error().Err(err).Msg("Kafka read error")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.retryDelay):
			}
			continue
		}

		operatorId, s, err := c.decode(msg)
		if err != nil {
			c.metrics.RecordParseError(SourceKafka)
			c.logger.Warn().Err(err).Int64("offset", msg.Offset).Msg("Dropping button record")
			continue
		}

		if err := c.pusher.Push(ctx, operatorId, SourceKafka, s); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, operator.ErrTooManyOperators) {
				lg := logging.WithSource(operatorId, SourceKafka)
				lg.Warn().Err(err).Msg("Dropping button record")
				continue
			}
			lg := logging.WithSource(operatorId, SourceKafka)
			lg.Error().Err(err).Msg("Failed to push snapshot")
			return err
		}
	}
}

func (c *KafkaConsumer) decode(msg kafka.Message) (string, buttons.Snapshot, error) {
	var rec ButtonRecord
	if err := json.Unmarshal(msg.Value, &rec); err != nil {
		return "", buttons.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	operatorId := rec.Operator
	if operatorId == "" {
		operatorId = string(msg.Key)
	}
	if operatorId == "" {
		operatorId = c.defaultOperator
	}
	return operatorId, buttons.Snapshot{Button1: rec.Button1, Button2: rec.Button2}, nil
}
