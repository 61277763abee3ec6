package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher emits domain events. Failures are logged by the caller and
// never fail the request that produced the event.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
	HealthCheck(ctx context.Context) error
	Close() error
}

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer  kafkaWriter
	brokers []string
	logger  *zap.Logger
}

func NewKafkaPublisher(brokers, topic string, logger *zap.Logger) *KafkaPublisher {
	addrs := splitBrokers(brokers)
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	return &KafkaPublisher{
		writer:  writer,
		brokers: addrs,
		logger:  logger,
	}
}

func splitBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Publish writes event keyed by key, so every event of one order lands on
// the same partition.
func (p *KafkaPublisher) Publish(ctx context.Context, key string, event any) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: eventBytes,
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("key", key),
			zap.Error(err))
		return err
	}

	p.logger.Info("Event published", zap.String("key", key))
	return nil
}

// HealthCheck dials the first reachable broker.
func (p *KafkaPublisher) HealthCheck(ctx context.Context) error {
	var lastErr error
	for _, addr := range p.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	if lastErr == nil {
		lastErr = errors.New("no kafka brokers configured")
	}
	return lastErr
}

func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// NopPublisher drops events; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) HealthCheck(context.Context) error { return nil }
func (NopPublisher) Close() error { return nil }
