package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"facturacion/internal/domain"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	log "github.com/sirupsen/logrus"
)

const deliveryTimeout = 10 * time.Second

type producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

// KafkaAuditSink produces audit notifications to a Kafka topic, keyed by
// entity id so events for one entity stay on one partition.
type KafkaAuditSink struct {
	producer producer
	topic    string
}

func NewKafkaAuditSink(bootstrapServers, topic, service string) (*KafkaAuditSink, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": bootstrapServers,
		"client.id":         service,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.WithField("topic", topic).Infof("Audit Kafka producer created for %s", service)

	return &KafkaAuditSink{producer: p, topic: topic}, nil
}

func (s *KafkaAuditSink) Send(ctx context.Context, n domain.AuditNotification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal audit notification: %w", err)
	}

	// Buffered so a late delivery report never blocks the producer.
	deliveryChan := make(chan kafka.Event, 1)

	if err := s.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &s.topic, Partition: kafka.PartitionAny},
		Key:            []byte(strconv.FormatInt(n.EntidadID, 10)),
		Value:          payload,
	}, deliveryChan); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	select {
	case e := <-deliveryChan:
		msg, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected event type: %T", e)
		}
		if msg.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed: %w", msg.TopicPartition.Error)
		}
		return nil
	case <-time.After(deliveryTimeout):
		return fmt.Errorf("delivery timeout")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *KafkaAuditSink) Close() {
	log.Info("Closing audit Kafka producer...")
	s.producer.Flush(15 * 1000)
	s.producer.Close()
}
