// Package events publishes consent lifecycle events to Kafka.
package events

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"
)

const writeTimeout = 10 * time.Second

// KafkaConfig configures the Kafka publisher. Username enables SASL/PLAIN over TLS.
type KafkaConfig struct {
	Broker   string
	Topic    string
	Username string
	Password string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes consent events keyed by consent id
type KafkaPublisher struct {
	writer messageWriter
	logger *logging.SafeLogger
	now    func() time.Time
}

// NewKafkaPublisher creates a synchronous publisher that waits for all replicas
func NewKafkaPublisher(cfg KafkaConfig, logger *logging.SafeLogger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Broker),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: writeTimeout,
	}
	if cfg.Username != "" {
		writer.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: cfg.Username, Password: cfg.Password},
			TLS:  &tls.Config{MinVersion: tls.VersionTLS12},
		}
	}
	return &KafkaPublisher{writer: writer, logger: logger.Named("events"), now: time.Now}
}

// PublishConsentIssued writes a consent.issued event
func (p *KafkaPublisher) PublishConsentIssued(ctx context.Context, event models.ConsentEvent) error {
	if p == nil || p.writer == nil {
		return nil
	}
	if event.Type == "" {
		event.Type = models.ConsentEventIssued
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ConsentID),
		Value: value,
		Time:  p.now(),
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.logger.Debug("event published",
		zap.String("type", event.Type),
		zap.String("consent_id", event.ConsentID))
	return nil
}

// Close flushes and closes the underlying writer
func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
