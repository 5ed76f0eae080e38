package publisher

import (
	"context"
	"fmt"

	"facturacion/internal/config"
	"facturacion/internal/domain"
)

// Sink is an audit notification transport that holds resources until closed.
type Sink interface {
	Send(ctx context.Context, n domain.AuditNotification) error
	Close()
}

// NewSink builds the transport selected by AUDIT_SINK.
func NewSink(cfg config.AuditSink, service string) (Sink, error) {
	switch cfg.Mode {
	case config.SinkHTTP:
		return NewHTTPAuditSink(cfg.URL, cfg.Timeout), nil
	case config.SinkKafka:
		sink, err := NewKafkaAuditSink(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, service)
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return nil, fmt.Errorf("unsupported audit sink %q", cfg.Mode)
	}
}
