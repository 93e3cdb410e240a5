// Package events publishes operator-visibility events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"interview-capture-service/internal/models"
	"interview-capture-service/internal/observability/metrics"
	"interview-capture-service/internal/schema"
)

// Publisher publishes session lifecycle events to separate Kafka topics.
// When disabled it runs in log-only mode: every event is logged and counted
// but nothing is written to Kafka.
type Publisher struct {
	writerCompleted *kafka.Writer
	writerFailure   *kafka.Writer
	principal       string
	topicCompleted  string
	topicFailure    string
	enabled         bool
	validator       *schema.Validator
	metrics         *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers        []string
	TopicCompleted string
	TopicFailure   string
	Principal      string
	Enabled        bool
}

// New creates a Kafka event publisher with separate topics for completed
// sessions and upload failures.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics
	v := schema.New()

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled:   false,
			validator: v,
			metrics:   m,
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:      cfg.Principal,
			topicCompleted: cfg.TopicCompleted,
			topicFailure:   cfg.TopicFailure,
			enabled:        false,
			validator:      v,
			metrics:        m,
		}
	}

	// Longer dial timeouts for DNS resolution in Kubernetes.
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	writerCompleted := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicCompleted,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	writerFailure := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicFailure,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicCompleted", cfg.TopicCompleted).
		Str("topicFailure", cfg.TopicFailure).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerCompleted: writerCompleted,
		writerFailure:   writerFailure,
		principal:       cfg.Principal,
		topicCompleted:  cfg.TopicCompleted,
		topicFailure:    cfg.TopicFailure,
		enabled:         true,
		validator:       v,
		metrics:         m,
	}
}

// PublishSessionCompleted publishes a session completed event, keyed by
// session id.
func (p *Publisher) PublishSessionCompleted(ctx context.Context, event models.SessionCompleted) error {
	return p.publish(ctx, p.writerCompleted, p.topicCompleted, event.EventType, event.SessionID, event)
}

// PublishUploadFailure publishes an upload failure event, keyed by session
// id.
func (p *Publisher) PublishUploadFailure(ctx context.Context, event models.UploadFailure) error {
	return p.publish(ctx, p.writerFailure, p.topicFailure, event.EventType, event.SessionID, event)
}

// publish validates the event and writes it to a specific Kafka writer.
func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	if err := p.validator.Validate(event); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Rejected invalid event")
		return err
	}

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

	// If Kafka is disabled, just log
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
	if p.writerCompleted != nil {
		if e := p.writerCompleted.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing completed writer")
			err = e
		}
	}
	if p.writerFailure != nil {
		if e := p.writerFailure.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing failure writer")
			err = e
		}
	}
	return err
}
