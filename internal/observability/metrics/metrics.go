// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "operator_buttons"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Ingress metrics
	SnapshotsReceived *prometheus.CounterVec
	SnapshotsDropped  *prometheus.CounterVec
	ParseErrors       *prometheus.CounterVec

	// Session metrics
	SessionsStarted prometheus.Counter
	SessionsActive  prometheus.Gauge
	Releases        *prometheus.CounterVec
	SessionDuration *prometheus.HistogramVec
	OperatorsActive prometheus.Gauge

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec

	// Event validation
	ValidationErrors *prometheus.CounterVec

	// gRPC stream metrics
	StreamsTotal   prometheus.Counter
	StreamsActive  prometheus.Gauge
	StreamsFailed  prometheus.Counter
	StreamDuration prometheus.Histogram

	// Live feed and indicator
	WebsocketClients prometheus.Gauge
	IndicatorErrors  prometheus.Counter
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates all metrics and registers them with reg.
// A nil registerer creates unregistered metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SnapshotsReceived: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_received_total",
			Help:      "Total number of button snapshots received",
		}, []string{"source"}),
		SnapshotsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_dropped_total",
			Help:      "Total number of snapshots rejected before reaching a state machine",
		}, []string{"reason"}),
		ParseErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Total number of malformed ingress messages",
		}, []string{"source"}),

		SessionsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total number of button sessions started",
		}),
		SessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of operators currently holding a button",
		}),
		Releases: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "releases_total",
			Help:      "Total number of completed sessions by release kind",
		}, []string{"kind"}),
		SessionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Time between a session start and its release",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"kind"}),
		OperatorsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "operators_registered",
			Help:      "Number of operators with a running state machine",
		}),

		KafkaPublishTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),

		ValidationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_validation_errors_total",
			Help:      "Total number of events rejected by schema validation",
		}, []string{"event_type"}),

		StreamsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_streams_total",
			Help:      "Total number of gRPC button streams started",
		}),
		StreamsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "grpc_streams_active",
			Help:      "Number of currently active gRPC button streams",
		}),
		StreamsFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_streams_failed_total",
			Help:      "Total number of failed gRPC button streams",
		}),
		StreamDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grpc_stream_duration_seconds",
			Help:      "Duration of gRPC button streams in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 30, 60, 300, 900},
		}),

		WebsocketClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Number of connected live feed clients",
		}),
		IndicatorErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "indicator_errors_total",
			Help:      "Total number of failed indicator light updates",
		}),
	}
}

// RecordSnapshot records a snapshot accepted from an ingress path.
func (m *Metrics) RecordSnapshot(source string) {
	m.SnapshotsReceived.WithLabelValues(source).Inc()
}

// RecordSnapshotDropped records a snapshot that never reached a state machine.
func (m *Metrics) RecordSnapshotDropped(reason string) {
	m.SnapshotsDropped.WithLabelValues(reason).Inc()
}

// RecordParseError records a malformed ingress message.
func (m *Metrics) RecordParseError(source string) {
	m.ParseErrors.WithLabelValues(source).Inc()
}

// RecordSessionStarted records an operator leaving idle.
func (m *Metrics) RecordSessionStarted() {
	m.SessionsStarted.Inc()
	m.SessionsActive.Inc()
}

// RecordRelease records an operator returning to idle.
func (m *Metrics) RecordRelease(kind string, durationSeconds float64) {
	m.SessionsActive.Dec()
	m.Releases.WithLabelValues(kind).Inc()
	m.SessionDuration.WithLabelValues(kind).Observe(durationSeconds)
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}

// RecordValidationError records an event rejected by the schema validator.
func (m *Metrics) RecordValidationError(eventType string) {
	m.ValidationErrors.WithLabelValues(eventType).Inc()
}

// RecordStreamStart records a new gRPC stream starting.
func (m *Metrics) RecordStreamStart() {
	m.StreamsTotal.Inc()
	m.StreamsActive.Inc()
}

// RecordStreamEnd records a gRPC stream ending.
func (m *Metrics) RecordStreamEnd(success bool, durationSeconds float64) {
	m.StreamsActive.Dec()
	m.StreamDuration.Observe(durationSeconds)
	if !success {
		m.StreamsFailed.Inc()
	}
}

// RecordIndicatorError records a failed light update.
func (m *Metrics) RecordIndicatorError() {
	m.IndicatorErrors.Inc()
}
