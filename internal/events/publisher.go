// Package events provides event publishing functionality.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"operator-button-service/internal/models"
	"operator-button-service/internal/observability/metrics"
)

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher publishes button events to separate Kafka topics for session
// starts and releases. With Kafka disabled it only logs.
type Publisher struct {
	writerSession messageWriter
	writerRelease messageWriter
	principal     string
	topicSession  string
	topicRelease  string
	enabled       bool
	metrics       *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers      []string
	TopicSession string
	TopicRelease string
	Principal    string
	Enabled      bool
	Metrics      *metrics.Metrics // defaults to metrics.DefaultMetrics
}

// New creates a new Kafka event publisher.
func New(cfg *Config) *Publisher {
	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: metrics.DefaultMetrics,
		}
	}

	m := cfg.Metrics
	if m == nil {
		m = metrics.DefaultMetrics
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:    cfg.Principal,
			topicSession: cfg.TopicSession,
			topicRelease: cfg.TopicRelease,
			enabled:      false,
			metrics:      m,
		}
	}

	// Longer dial timeout for DNS resolution inside clusters
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicSession", cfg.TopicSession).
		Str("topicRelease", cfg.TopicRelease).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerSession: newWriter(cfg.Brokers, cfg.TopicSession, transport),
		writerRelease: newWriter(cfg.Brokers, cfg.TopicRelease, transport),
		principal:     cfg.Principal,
		topicSession:  cfg.TopicSession,
		topicRelease:  cfg.TopicRelease,
		enabled:       true,
		metrics:       m,
	}
}

func newWriter(brokers []string, topic string, transport *kafka.Transport) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // keyed by operator, keeps per-operator order
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}
}

// Publish routes ev to the session or release topic, keyed by operator.
func (p *Publisher) Publish(ctx context.Context, ev models.ButtonEvent) error {
	if ev.IsRelease() {
		return p.PublishRelease(ctx, ev.OperatorID, ev)
	}
	return p.PublishSession(ctx, ev.OperatorID, ev)
}

// PublishSession publishes an event to the session topic.
func (p *Publisher) PublishSession(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerSession, p.topicSession, eventType(event, "session"), key, event)
}

// PublishRelease publishes an event to the release topic.
func (p *Publisher) PublishRelease(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerRelease, p.topicRelease, eventType(event, "release"), key, event)
}

func eventType(event any, def string) string {
	if ev, ok := event.(models.ButtonEvent); ok && ev.EventType != "" {
		return ev.EventType
	}
	return def
}

func (p *Publisher) publish(ctx context.Context, writer messageWriter, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerSession != nil {
		if e := p.writerSession.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing session writer")
			err = e
		}
	}
	if p.writerRelease != nil {
		if e := p.writerRelease.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing release writer")
			err = e
		}
	}
	return err
}
