package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

var envVars = []string{
	"SERVICE_PRINCIPAL", "GRPC_PORT", "HTTP_PORT",
	"LOG_LEVEL", "LOG_FORMAT", "METRICS_ADDR", "SHUTDOWN_TIMEOUT",
	"OPERATOR_DEFAULT", "OPERATOR_INBOX_SIZE", "OPERATOR_MAX",
	"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC_SESSION", "KAFKA_TOPIC_RELEASE",
	"KAFKA_TOPIC_INGRESS", "KAFKA_PRINCIPAL",
	"UDP_ENABLED", "UDP_ADDR",
	"HUE_ENABLED", "HUE_BRIDGE", "HUE_USER", "HUE_LIGHT_ID",
	"HUE_BRIGHTNESS", "HUE_HUE", "HUE_SATURATION",
}

func clearEnv() {
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv()

	cfg := Load()

	// Service defaults
	if cfg.Service.Principal != "svc-operator-buttons" {
		t.Errorf("expected default principal 'svc-operator-buttons', got %s", cfg.Service.Principal)
	}
	if cfg.Service.GRPCPort != "50051" {
		t.Errorf("expected default gRPC port '50051', got %s", cfg.Service.GRPCPort)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default HTTP port '8080', got %s", cfg.Service.HTTPPort)
	}

	// Observability defaults
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
	if cfg.Observability.LogFormat != "json" {
		t.Errorf("expected default log format 'json', got %s", cfg.Observability.LogFormat)
	}
	if cfg.Observability.MetricsAddr != ":9090" {
		t.Errorf("expected default metrics addr ':9090', got %s", cfg.Observability.MetricsAddr)
	}
	if cfg.Observability.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected default shutdown timeout 10s, got %v", cfg.Observability.ShutdownTimeout)
	}

	// Operator defaults
	if cfg.Operators.DefaultId != "0" {
		t.Errorf("expected default operator '0', got %s", cfg.Operators.DefaultId)
	}
	if cfg.Operators.InboxSize != 64 {
		t.Errorf("expected default inbox size 64, got %d", cfg.Operators.InboxSize)
	}
	if cfg.Operators.Max != 256 {
		t.Errorf("expected default operator limit 256, got %d", cfg.Operators.Max)
	}

	// Kafka defaults
	if cfg.Kafka.Enabled {
		t.Error("expected Kafka to be disabled by default")
	}
	if !reflect.DeepEqual(cfg.Kafka.Brokers, []string{"localhost:9092"}) {
		t.Errorf("expected default brokers [localhost:9092], got %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.TopicSession != "operator.button.session" {
		t.Errorf("expected default session topic, got %s", cfg.Kafka.TopicSession)
	}
	if cfg.Kafka.TopicRelease != "operator.button.release" {
		t.Errorf("expected default release topic, got %s", cfg.Kafka.TopicRelease)
	}
	if cfg.Kafka.TopicIngress != "" {
		t.Errorf("expected ingress topic to be disabled by default, got %s", cfg.Kafka.TopicIngress)
	}

	// UDP and Hue defaults
	if cfg.UDP.Enabled || cfg.UDP.Addr != ":8888" {
		t.Errorf("expected UDP disabled on ':8888', got %+v", cfg.UDP)
	}
	if cfg.Hue.Enabled {
		t.Error("expected Hue to be disabled by default")
	}
	if cfg.Hue.LightId != 1 || cfg.Hue.Brightness != 254 || cfg.Hue.Saturation != 254 || cfg.Hue.Hue != 0 {
		t.Errorf("unexpected Hue defaults: %+v", cfg.Hue)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv()
	os.Setenv("SERVICE_PRINCIPAL", "custom-principal")
	os.Setenv("GRPC_PORT", "9999")
	os.Setenv("HTTP_PORT", "8181")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FORMAT", "console")
	os.Setenv("SHUTDOWN_TIMEOUT", "3s")
	os.Setenv("OPERATOR_DEFAULT", "front-desk")
	os.Setenv("OPERATOR_INBOX_SIZE", "8")
	os.Setenv("OPERATOR_MAX", "16")
	os.Setenv("KAFKA_ENABLED", "true")
	os.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	os.Setenv("KAFKA_TOPIC_INGRESS", "operator.button.raw")
	os.Setenv("UDP_ENABLED", "1")
	os.Setenv("UDP_ADDR", ":7777")
	os.Setenv("HUE_ENABLED", "true")
	os.Setenv("HUE_BRIDGE", "192.168.1.2")
	os.Setenv("HUE_USER", "secret")
	os.Setenv("HUE_LIGHT_ID", "4")
	os.Setenv("HUE_HUE", "46920")
	defer clearEnv()

	cfg := Load()

	if cfg.Service.Principal != "custom-principal" {
		t.Errorf("expected principal 'custom-principal', got %s", cfg.Service.Principal)
	}
	if cfg.Service.GRPCPort != "9999" || cfg.Service.HTTPPort != "8181" {
		t.Errorf("expected ports 9999/8181, got %s/%s", cfg.Service.GRPCPort, cfg.Service.HTTPPort)
	}
	if cfg.Observability.LogLevel != "debug" || cfg.Observability.LogFormat != "console" {
		t.Errorf("expected debug/console logging, got %s/%s", cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	}
	if cfg.Observability.ShutdownTimeout != 3*time.Second {
		t.Errorf("expected shutdown timeout 3s, got %v", cfg.Observability.ShutdownTimeout)
	}
	if cfg.Operators.DefaultId != "front-desk" || cfg.Operators.InboxSize != 8 || cfg.Operators.Max != 16 {
		t.Errorf("unexpected operator config: %+v", cfg.Operators)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka to be enabled")
	}
	if !reflect.DeepEqual(cfg.Kafka.Brokers, []string{"k1:9092", "k2:9092"}) {
		t.Errorf("expected brokers [k1:9092 k2:9092], got %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.TopicIngress != "operator.button.raw" {
		t.Errorf("expected ingress topic 'operator.button.raw', got %s", cfg.Kafka.TopicIngress)
	}
	if !cfg.UDP.Enabled || cfg.UDP.Addr != ":7777" {
		t.Errorf("expected UDP enabled on ':7777', got %+v", cfg.UDP)
	}
	if !cfg.Hue.Enabled || cfg.Hue.Bridge != "192.168.1.2" || cfg.Hue.User != "secret" {
		t.Errorf("unexpected Hue config: %+v", cfg.Hue)
	}
	if cfg.Hue.LightId != 4 || cfg.Hue.Hue != 46920 {
		t.Errorf("expected light 4 with hue 46920, got %d/%d", cfg.Hue.LightId, cfg.Hue.Hue)
	}
}

func TestLoad_InvalidValues_FallbackToDefaults(t *testing.T) {
	clearEnv()
	os.Setenv("OPERATOR_INBOX_SIZE", "not-a-number")
	os.Setenv("KAFKA_ENABLED", "invalid")
	os.Setenv("KAFKA_BROKERS", " , ")
	os.Setenv("SHUTDOWN_TIMEOUT", "invalid")
	os.Setenv("HUE_BRIGHTNESS", "300")
	os.Setenv("HUE_HUE", "-1")
	defer clearEnv()

	cfg := Load()

	if cfg.Operators.InboxSize != 64 {
		t.Errorf("expected default inbox size on invalid input, got %d", cfg.Operators.InboxSize)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected default Kafka enabled on invalid input")
	}
	if !reflect.DeepEqual(cfg.Kafka.Brokers, []string{"localhost:9092"}) {
		t.Errorf("expected default brokers on empty list, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Observability.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected default shutdown timeout on invalid input, got %v", cfg.Observability.ShutdownTimeout)
	}
	if cfg.Hue.Brightness != 254 {
		t.Errorf("expected default brightness on overflow, got %d", cfg.Hue.Brightness)
	}
	if cfg.Hue.Hue != 0 {
		t.Errorf("expected default hue on negative input, got %d", cfg.Hue.Hue)
	}
}

func TestLoad_KafkaPrincipal_FallsBackToServicePrincipal(t *testing.T) {
	clearEnv()
	os.Setenv("SERVICE_PRINCIPAL", "my-service")
	defer clearEnv()

	cfg := Load()

	if cfg.Kafka.Principal != "my-service" {
		t.Errorf("expected Kafka principal to fall back to service principal, got %s", cfg.Kafka.Principal)
	}
}

func TestEnvOrDefaultBool(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		def      bool
		expected bool
	}{
		{"true string", "true", false, true},
		{"false string", "false", true, false},
		{"1", "1", false, true},
		{"0", "0", true, false},
		{"TRUE uppercase", "TRUE", false, true},
		{"invalid", "invalid", true, true},
		{"empty", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}
			defer os.Unsetenv(key)

			got := envOrDefaultBool(key, tt.def)
			if got != tt.expected {
				t.Errorf("envOrDefaultBool(%s, %v) = %v, want %v", tt.envValue, tt.def, got, tt.expected)
			}
		})
	}
}
