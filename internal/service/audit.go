package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"facturacion/internal/domain"
	"facturacion/internal/metrics"

	log "github.com/sirupsen/logrus"
)

// AuditSink delivers a notification to the audit service. Implementations
// return delivery errors; AuditService decides what to do with them.
type AuditSink interface {
	Send(ctx context.Context, n domain.AuditNotification) error
}

// AuditService sends audit notifications in the background. Failures are
// logged and dropped; there is no retry and no delivery guarantee.
type AuditService struct {
	sink    AuditSink
	metrics *metrics.Metrics
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

func NewAuditService(sink AuditSink, m *metrics.Metrics) *AuditService {
	return &AuditService{
		sink:    sink,
		metrics: m,
		timeout: 10 * time.Second,
		now:     time.Now,
	}
}

func (s *AuditService) RecordClienteCreated(ctx context.Context, c *domain.Cliente) {
	if c == nil {
		return
	}
	s.notify(ctx, domain.AuditNotification{
		Servicio:  "Clientes",
		Entidad:   "Cliente",
		EntidadID: c.ID,
		Accion:    domain.AccionCrear,
		Detalles:  fmt.Sprintf("Cliente creado: %s - %s", c.Nombre, c.Identificacion),
	})
}

func (s *AuditService) RecordFacturaCreated(ctx context.Context, f *domain.Factura) {
	if f == nil {
		return
	}
	s.notify(ctx, domain.AuditNotification{
		Servicio:  "Facturas",
		Entidad:   "Factura",
		EntidadID: f.ID,
		Accion:    domain.AccionCrear,
		Detalles:  fmt.Sprintf("Factura creada para cliente %d por monto $%s", f.ClienteID, f.MontoTotal.StringFixed(domain.MontoScale)),
	})
}

// Wait blocks until every notification already dispatched has finished.
func (s *AuditService) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}

func (s *AuditService) notify(ctx context.Context, n domain.AuditNotification) {
	if s == nil || s.sink == nil {
		return
	}
	n.Fecha = s.now().UTC()

	// The request context is cancelled once the response is written.
	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		if err := s.sink.Send(ctx, n); err != nil {
			s.metrics.AuditNotification(metrics.ResultFailed)
			log.WithError(err).WithFields(log.Fields{
				"servicio":   n.Servicio,
				"entidad":    n.Entidad,
				"entidad_id": n.EntidadID,
			}).Error("Error registrando evento de auditoría")
			return
		}
		s.metrics.AuditNotification(metrics.ResultOK)
		log.WithFields(log.Fields{
			"entidad":    n.Entidad,
			"entidad_id": n.EntidadID,
		}).Debug("Audit event sent")
	}()
}
