package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"facturacion/internal/domain"

	log "github.com/sirupsen/logrus"
)

type EventoRepository interface {
	Insert(ctx context.Context, fields domain.EventFields) (*domain.AuditEvent, error)
	FindByEntidadID(ctx context.Context, entidadID string) ([]domain.AuditEvent, error)
	FindAll(ctx context.Context) ([]domain.AuditEvent, error)
}

type EventoService struct {
	repo  EventoRepository
	clock *monotonicClock
}

func NewEventoService(repo EventoRepository) *EventoService {
	return &EventoService{repo: repo, clock: newMonotonicClock(time.Now)}
}

// CreateEvento normalises and validates raw event fields, stamps the server
// timestamps and stores the event.
func (s *EventoService) CreateEvento(ctx context.Context, raw map[string]any) (*domain.AuditEvent, error) {
	fields := domain.NormalizeEventFields(raw)
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	stamp := s.clock.Now()
	fields[domain.FieldTimestamp] = stamp
	fields[domain.FieldFechaCreacion] = stamp

	evento, err := s.repo.Insert(ctx, fields)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"evento_id":  evento.ID,
		"servicio":   evento.Servicio,
		"entidad_id": evento.EntidadID,
	}).Info("Audit event stored")
	return evento, nil
}

func (s *EventoService) FindByEntidadID(ctx context.Context, entidadID string) ([]domain.AuditEvent, error) {
	if strings.TrimSpace(entidadID) == "" {
		return nil, domain.NewValidationError("entidad_id es requerido")
	}
	return s.repo.FindByEntidadID(ctx, entidadID)
}

func (s *EventoService) FindAll(ctx context.Context) ([]domain.AuditEvent, error) {
	return s.repo.FindAll(ctx)
}

// monotonicClock returns UTC wall-clock times that never go backwards, even if
// the system clock is stepped.
type monotonicClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func newMonotonicClock(now func() time.Time) *monotonicClock {
	return &monotonicClock{now: now}
}

func (c *monotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Mongo stores milliseconds.
	t := c.now().UTC().Truncate(time.Millisecond)
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}
