// Package config loads service configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ServiceConfig holds process-level settings.
type ServiceConfig struct {
	Principal   string
	HTTPPort    string
	MetricsAddr string
}

// InterviewConfig holds session-level settings.
type InterviewConfig struct {
	UserID           string
	DefaultTimeLimit time.Duration // per-question limit when a question carries none
	TickInterval     time.Duration // countdown granularity
	SnapshotTimeout  time.Duration // max wait for a recorder flush
}

// CaptureConfig holds media capture settings.
type CaptureConfig struct {
	Provider           string // "sim" is the only built-in provider
	SampleRateHz       int
	Channels           int
	AudioChunkInterval time.Duration
	VideoChunkInterval time.Duration
}

// QuestionsConfig holds question-source client settings.
type QuestionsConfig struct {
	Endpoint   string // empty → built-in sample questions
	Timeout    time.Duration
	RetryCount int
}

// StorageConfig holds object-storage upload settings.
type StorageConfig struct {
	Enabled        bool
	BaseURL        string
	TokenURL       string
	RootFolder     string
	RequestTimeout time.Duration
}

// BackendConfig holds the legacy completion-record fallback settings.
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

// KafkaConfig holds operator event publishing settings.
type KafkaConfig struct {
	Enabled            bool
	Brokers            []string
	TopicCompleted     string
	TopicUploadFailure string
	Principal          string
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel string
}

// Configuration is the full service configuration.
type Configuration struct {
	Service       ServiceConfig
	Interview     InterviewConfig
	Capture       CaptureConfig
	Questions     QuestionsConfig
	Storage       StorageConfig
	Backend       BackendConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// Load reads the configuration from the environment, falling back to
// defaults on missing or unparseable values.
func Load() *Configuration {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-interview-capture")

	return &Configuration{
		Service: ServiceConfig{
			Principal:   principal,
			HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
			MetricsAddr: envOrDefault("METRICS_ADDR", ":9090"),
		},
		Interview: InterviewConfig{
			UserID:           envOrDefault("INTERVIEW_USER_ID", "user-demo"),
			DefaultTimeLimit: envOrDefaultDuration("QUESTION_DEFAULT_LIMIT", 120*time.Second),
			TickInterval:     envOrDefaultDuration("QUESTION_TICK_INTERVAL", time.Second),
			SnapshotTimeout:  envOrDefaultDuration("SNAPSHOT_TIMEOUT", 2*time.Second),
		},
		Capture: CaptureConfig{
			Provider:           envOrDefault("CAPTURE_PROVIDER", "sim"),
			SampleRateHz:       envOrDefaultInt("CAPTURE_SAMPLE_RATE_HZ", 16000),
			Channels:           envOrDefaultInt("CAPTURE_CHANNELS", 1),
			AudioChunkInterval: envOrDefaultDuration("CAPTURE_AUDIO_CHUNK_INTERVAL", 100*time.Millisecond),
			VideoChunkInterval: envOrDefaultDuration("CAPTURE_VIDEO_CHUNK_INTERVAL", time.Second),
		},
		Questions: QuestionsConfig{
			Endpoint:   envOrDefault("QUESTIONS_ENDPOINT", ""),
			Timeout:    envOrDefaultDuration("QUESTIONS_TIMEOUT", 10*time.Second),
			RetryCount: envOrDefaultInt("QUESTIONS_RETRY_COUNT", 2),
		},
		Storage: StorageConfig{
			Enabled:        envOrDefaultBool("STORAGE_ENABLED", false),
			BaseURL:        envOrDefault("STORAGE_BASE_URL", ""),
			TokenURL:       envOrDefault("STORAGE_TOKEN_URL", ""),
			RootFolder:     envOrDefault("STORAGE_ROOT_FOLDER", "InterviewRecordings"),
			RequestTimeout: envOrDefaultDuration("STORAGE_REQUEST_TIMEOUT", 30*time.Second),
		},
		Backend: BackendConfig{
			URL:     envOrDefault("BACKEND_FINISH_URL", ""),
			Timeout: envOrDefaultDuration("BACKEND_TIMEOUT", 30*time.Second),
		},
		Kafka: KafkaConfig{
			Enabled:            envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:            envOrDefaultList("KAFKA_BROKERS", nil),
			TopicCompleted:     envOrDefault("KAFKA_TOPIC_COMPLETED", "interview.session.completed"),
			TopicUploadFailure: envOrDefault("KAFKA_TOPIC_UPLOAD_FAILURE", "interview.upload.failed"),
			Principal:          envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Observability: ObservabilityConfig{
			LogLevel: envOrDefault("LOG_LEVEL", "info"),
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

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
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
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}
