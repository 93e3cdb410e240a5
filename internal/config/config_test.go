package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	envVars := []string{
		"SERVICE_PRINCIPAL", "HTTP_PORT", "METRICS_ADDR", "LOG_LEVEL",
		"INTERVIEW_USER_ID", "QUESTION_DEFAULT_LIMIT", "QUESTION_TICK_INTERVAL",
		"CAPTURE_PROVIDER", "CAPTURE_SAMPLE_RATE_HZ", "CAPTURE_CHANNELS",
		"STORAGE_ENABLED", "STORAGE_ROOT_FOLDER", "KAFKA_ENABLED", "KAFKA_PRINCIPAL",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg := Load()

	if cfg.Service.Principal != "svc-interview-capture" {
		t.Errorf("expected default principal 'svc-interview-capture', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default port '8080', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Interview.DefaultTimeLimit != 120*time.Second {
		t.Errorf("expected default question limit 120s, got %v", cfg.Interview.DefaultTimeLimit)
	}
	if cfg.Interview.TickInterval != time.Second {
		t.Errorf("expected default tick interval 1s, got %v", cfg.Interview.TickInterval)
	}
	if cfg.Capture.Provider != "sim" {
		t.Errorf("expected default capture provider 'sim', got %s", cfg.Capture.Provider)
	}
	if cfg.Capture.SampleRateHz != 16000 {
		t.Errorf("expected default sample rate 16000, got %d", cfg.Capture.SampleRateHz)
	}
	if cfg.Capture.Channels != 1 {
		t.Errorf("expected default channels 1, got %d", cfg.Capture.Channels)
	}
	if cfg.Storage.Enabled {
		t.Error("expected storage disabled by default")
	}
	if cfg.Storage.RootFolder != "InterviewRecordings" {
		t.Errorf("expected default root folder 'InterviewRecordings', got %s", cfg.Storage.RootFolder)
	}
	if cfg.Kafka.TopicCompleted != "interview.session.completed" {
		t.Errorf("expected default completed topic, got %s", cfg.Kafka.TopicCompleted)
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("SERVICE_PRINCIPAL", "custom-principal")
	os.Setenv("HTTP_PORT", "9999")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("QUESTION_DEFAULT_LIMIT", "90s")
	os.Setenv("QUESTION_TICK_INTERVAL", "250ms")
	os.Setenv("CAPTURE_SAMPLE_RATE_HZ", "8000")
	os.Setenv("STORAGE_ENABLED", "true")
	os.Setenv("STORAGE_BASE_URL", "https://storage.example.com")
	os.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	defer func() {
		os.Unsetenv("SERVICE_PRINCIPAL")
		os.Unsetenv("HTTP_PORT")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("QUESTION_DEFAULT_LIMIT")
		os.Unsetenv("QUESTION_TICK_INTERVAL")
		os.Unsetenv("CAPTURE_SAMPLE_RATE_HZ")
		os.Unsetenv("STORAGE_ENABLED")
		os.Unsetenv("STORAGE_BASE_URL")
		os.Unsetenv("KAFKA_BROKERS")
	}()

	cfg := Load()

	if cfg.Service.Principal != "custom-principal" {
		t.Errorf("expected principal 'custom-principal', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "9999" {
		t.Errorf("expected port '9999', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Interview.DefaultTimeLimit != 90*time.Second {
		t.Errorf("expected question limit 90s, got %v", cfg.Interview.DefaultTimeLimit)
	}
	if cfg.Interview.TickInterval != 250*time.Millisecond {
		t.Errorf("expected tick interval 250ms, got %v", cfg.Interview.TickInterval)
	}
	if cfg.Capture.SampleRateHz != 8000 {
		t.Errorf("expected sample rate 8000, got %d", cfg.Capture.SampleRateHz)
	}
	if !cfg.Storage.Enabled {
		t.Error("expected storage enabled")
	}
	if cfg.Storage.BaseURL != "https://storage.example.com" {
		t.Errorf("unexpected storage base URL %s", cfg.Storage.BaseURL)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "k1:9092" || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("expected brokers [k1:9092 k2:9092], got %v", cfg.Kafka.Brokers)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_InvalidValues_FallbackToDefaults(t *testing.T) {
	os.Setenv("CAPTURE_SAMPLE_RATE_HZ", "not-a-number")
	os.Setenv("QUESTION_DEFAULT_LIMIT", "invalid")
	os.Setenv("STORAGE_ENABLED", "invalid")

	defer func() {
		os.Unsetenv("CAPTURE_SAMPLE_RATE_HZ")
		os.Unsetenv("QUESTION_DEFAULT_LIMIT")
		os.Unsetenv("STORAGE_ENABLED")
	}()

	cfg := Load()

	if cfg.Capture.SampleRateHz != 16000 {
		t.Errorf("expected default sample rate on invalid input, got %d", cfg.Capture.SampleRateHz)
	}
	if cfg.Interview.DefaultTimeLimit != 120*time.Second {
		t.Errorf("expected default question limit on invalid input, got %v", cfg.Interview.DefaultTimeLimit)
	}
	if cfg.Storage.Enabled {
		t.Error("expected storage disabled on invalid input")
	}
}

func TestLoad_KafkaPrincipal_FallsBackToServicePrincipal(t *testing.T) {
	os.Setenv("SERVICE_PRINCIPAL", "my-service")
	os.Unsetenv("KAFKA_PRINCIPAL")

	defer os.Unsetenv("SERVICE_PRINCIPAL")

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
