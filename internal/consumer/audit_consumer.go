// Package consumer feeds audit notifications published on Kafka into the
// audit event store.
package consumer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"facturacion/internal/domain"
	"facturacion/internal/metrics"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	log "github.com/sirupsen/logrus"
)

const (
	sourceKafka = "kafka"
	pollTimeout = 500 * time.Millisecond
)

type EventCreator interface {
	CreateEvento(ctx context.Context, raw map[string]any) (*domain.AuditEvent, error)
}

type messageReader interface {
	SubscribeTopics(topics []string, rebalanceCb kafka.RebalanceCb) error
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
	Close() error
}

type AuditConsumer struct {
	reader  messageReader
	topic   string
	events  EventCreator
	metrics *metrics.Metrics
}

func NewAuditConsumer(brokers, groupID, topic string, events EventCreator, m *metrics.Metrics) (*AuditConsumer, error) {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"group.id":          groupID,
		"auto.offset.reset": "earliest",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	log.WithFields(log.Fields{"topic": topic, "group_id": groupID}).Info("Audit Kafka consumer created")

	return &AuditConsumer{reader: c, topic: topic, events: events, metrics: m}, nil
}

// Run polls the topic until ctx is cancelled, then closes the consumer.
// Messages that fail to decode or validate are logged and skipped.
func (c *AuditConsumer) Run(ctx context.Context) error {
	if err := c.reader.SubscribeTopics([]string{c.topic}, nil); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.topic, err)
	}
	defer func() {
		if err := c.reader.Close(); err != nil {
			log.WithError(err).Warn("Failed to close audit Kafka consumer")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("Audit Kafka consumer stopping")
			return nil
		default:
		}

		msg, err := c.reader.ReadMessage(pollTimeout)
		if err != nil {
			var kerr kafka.Error
			if errors.As(err, &kerr) && kerr.Code() == kafka.ErrTimedOut {
				continue
			}
			log.WithError(err).Error("Failed to read audit message")
			continue
		}

		c.handle(ctx, msg)
	}
}

func (c *AuditConsumer) handle(ctx context.Context, msg *kafka.Message) {
	logger := log.WithFields(log.Fields{
		"partition": msg.TopicPartition.Partition,
		"offset":    msg.TopicPartition.Offset.String(),
	})

	raw, err := decodeEvent(msg.Value)
	if err != nil {
		logger.WithError(err).Warn("Skipping undecodable audit message")
		c.metrics.EventIngested(sourceKafka, metrics.ResultInvalid)
		return
	}

	evento, err := c.events.CreateEvento(ctx, raw)
	if err != nil {
		if domain.IsValidationError(err) {
			logger.WithError(err).Warn("Skipping invalid audit message")
			c.metrics.EventIngested(sourceKafka, metrics.ResultInvalid)
			return
		}
		logger.WithError(err).Error("Failed to store audit message")
		c.metrics.EventIngested(sourceKafka, metrics.ResultError)
		return
	}

	logger.WithField("evento_id", evento.ID).Debug("Audit message stored")
	c.metrics.EventIngested(sourceKafka, metrics.ResultOK)
}

// decodeEvent keeps numbers as json.Number so integer ids keep their text.
func decodeEvent(value []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("empty audit message")
	}
	return raw, nil
}
