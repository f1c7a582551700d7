// Package config loads service configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full service configuration.
type Config struct {
	Service       ServiceConfig
	Observability ObservabilityConfig
	Operators     OperatorConfig
	Kafka         KafkaConfig
	UDP           UDPConfig
	Hue           HueConfig
}

// ServiceConfig holds listener settings and the service identity.
type ServiceConfig struct {
	Principal string
	GRPCPort  string
	HTTPPort  string
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel        string
	LogFormat       string
	MetricsAddr     string
	ShutdownTimeout time.Duration
}

// OperatorConfig controls the per-operator button flows.
type OperatorConfig struct {
	DefaultId string // operator used when a request does not name one
	InboxSize int    // buffered snapshots per operator
	Max       int    // operators with a running state machine
}

// KafkaConfig holds Kafka publisher and ingress consumer settings.
type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	TopicSession string
	TopicRelease string
	TopicIngress string // empty disables the ingress consumer
	Principal    string
}

// UDPConfig holds the device message listener settings.
type UDPConfig struct {
	Enabled bool
	Addr    string
}

// HueConfig holds the talk indicator light settings.
type HueConfig struct {
	Enabled    bool
	Bridge     string
	User       string
	LightId    int
	Brightness uint8
	Hue        uint16
	Saturation uint8
}

// Load reads the configuration from the environment, falling back to
// defaults for unset or unparsable values.
func Load() *Config {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-operator-buttons")

	return &Config{
		Service: ServiceConfig{
			Principal: principal,
			GRPCPort:  envOrDefault("GRPC_PORT", "50051"),
			HTTPPort:  envOrDefault("HTTP_PORT", "8080"),
		},
		Observability: ObservabilityConfig{
			LogLevel:        envOrDefault("LOG_LEVEL", "info"),
			LogFormat:       envOrDefault("LOG_FORMAT", "json"),
			MetricsAddr:     envOrDefault("METRICS_ADDR", ":9090"),
			ShutdownTimeout: envOrDefaultDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Operators: OperatorConfig{
			DefaultId: envOrDefault("OPERATOR_DEFAULT", "0"),
			InboxSize: envOrDefaultInt("OPERATOR_INBOX_SIZE", 64),
			Max:       envOrDefaultInt("OPERATOR_MAX", 256),
		},
		Kafka: KafkaConfig{
			Enabled:      envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:      envOrDefaultList("KAFKA_BROKERS", []string{"localhost:9092"}),
			TopicSession: envOrDefault("KAFKA_TOPIC_SESSION", "operator.button.session"),
			TopicRelease: envOrDefault("KAFKA_TOPIC_RELEASE", "operator.button.release"),
			TopicIngress: os.Getenv("KAFKA_TOPIC_INGRESS"),
			Principal:    envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		UDP: UDPConfig{
			Enabled: envOrDefaultBool("UDP_ENABLED", false),
			Addr:    envOrDefault("UDP_ADDR", ":8888"),
		},
		Hue: HueConfig{
			Enabled:    envOrDefaultBool("HUE_ENABLED", false),
			Bridge:     os.Getenv("HUE_BRIDGE"),
			User:       os.Getenv("HUE_USER"),
			LightId:    envOrDefaultInt("HUE_LIGHT_ID", 1),
			Brightness: uint8(envOrDefaultUint("HUE_BRIGHTNESS", 254, 8)),
			Hue:        uint16(envOrDefaultUint("HUE_HUE", 0, 16)),
			Saturation: uint8(envOrDefaultUint("HUE_SATURATION", 254, 8)),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultUint(key string, def uint64, bits int) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, bits); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
