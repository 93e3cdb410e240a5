// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "interview_capture"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Session metrics
	SessionsStarted   prometheus.Counter
	SessionsActive    prometheus.Gauge
	SessionsCompleted prometheus.Counter
	SessionsDenied    prometheus.Counter
	SessionDuration   prometheus.Histogram

	// Question / timer metrics
	QuestionsAsked prometheus.Counter
	Advances       *prometheus.CounterVec

	// Capture metrics
	SegmentsCaptured prometheus.Counter
	SegmentsEmpty    prometheus.Counter
	CaptureBytes     *prometheus.CounterVec

	// Upload metrics
	TokenFetches   *prometheus.CounterVec
	FoldersCreated prometheus.Counter
	UploadsTotal   *prometheus.CounterVec
	UploadErrors   *prometheus.CounterVec
	UploadLatency  prometheus.Histogram
	UploadedBytes  prometheus.Counter

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total number of interview sessions started",
		}),
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of currently active interview sessions",
		}),
		SessionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_completed_total",
			Help:      "Total number of sessions that reached the Completed state",
		}),
		SessionsDenied: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_media_denied_total",
			Help:      "Total number of sessions that failed to start due to media access denial",
		}),
		SessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Duration of interview sessions in seconds",
			Buckets:   []float64{10, 30, 60, 120, 300, 600, 1200, 1800},
		}),

		QuestionsAsked: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_asked_total",
			Help:      "Total number of questions presented",
		}),
		Advances: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advances_total",
			Help:      "Total number of question advances",
		}, []string{"reason"}),

		SegmentsCaptured: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_captured_total",
			Help:      "Total number of answer segments captured",
		}),
		SegmentsEmpty: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_empty_total",
			Help:      "Total number of answer segments discarded as empty",
		}),
		CaptureBytes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capture_bytes_total",
			Help:      "Total media bytes captured",
		}, []string{"kind"}),

		TokenFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_fetches_total",
			Help:      "Total number of access token fetches",
		}, []string{"outcome"}),
		FoldersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "folders_created_total",
			Help:      "Total number of destination folders created",
		}),
		UploadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Total number of artifacts uploaded",
		}, []string{"artifact_type"}),
		UploadErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_errors_total",
			Help:      "Total number of upload protocol failures",
		}, []string{"stage"}),
		UploadLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_latency_seconds",
			Help:      "Per-artifact upload latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		UploadedBytes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Total artifact bytes uploaded",
		}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordSessionStart records a new session starting.
func (m *Metrics) RecordSessionStart() {
	m.SessionsStarted.Inc()
	m.SessionsActive.Inc()
}

// RecordSessionEnd records a session reaching its terminal state.
func (m *Metrics) RecordSessionEnd(durationSeconds float64) {
	m.SessionsActive.Dec()
	m.SessionsCompleted.Inc()
	m.SessionDuration.Observe(durationSeconds)
}

// RecordMediaDenied records a session that could not acquire the device.
func (m *Metrics) RecordMediaDenied() {
	m.SessionsDenied.Inc()
}

// RecordQuestionAsked records a question being presented.
func (m *Metrics) RecordQuestionAsked() {
	m.QuestionsAsked.Inc()
}

// RecordAdvance records a question advance with its trigger reason.
func (m *Metrics) RecordAdvance(reason string) {
	m.Advances.WithLabelValues(reason).Inc()
}

// RecordSegmentCaptured records a captured answer segment.
func (m *Metrics) RecordSegmentCaptured(bytes int) {
	m.SegmentsCaptured.Inc()
	m.CaptureBytes.WithLabelValues("audio").Add(float64(bytes))
}

// RecordSegmentEmpty records an answer segment discarded as empty.
func (m *Metrics) RecordSegmentEmpty() {
	m.SegmentsEmpty.Inc()
}

// RecordVideoCaptured records the whole-session video artifact size.
func (m *Metrics) RecordVideoCaptured(bytes int) {
	m.CaptureBytes.WithLabelValues("video").Add(float64(bytes))
}

// RecordTokenFetch records an access token fetch attempt.
func (m *Metrics) RecordTokenFetch(err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.TokenFetches.WithLabelValues(outcome).Inc()
}

// RecordFolderCreated records a destination folder creation.
func (m *Metrics) RecordFolderCreated() {
	m.FoldersCreated.Inc()
}

// RecordUpload records a successfully uploaded artifact.
func (m *Metrics) RecordUpload(artifactType string, bytes int, latencySeconds float64) {
	m.UploadsTotal.WithLabelValues(artifactType).Inc()
	m.UploadedBytes.Add(float64(bytes))
	m.UploadLatency.Observe(latencySeconds)
}

// RecordUploadError records an upload protocol failure at a given stage.
func (m *Metrics) RecordUploadError(stage string) {
	m.UploadErrors.WithLabelValues(stage).Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
