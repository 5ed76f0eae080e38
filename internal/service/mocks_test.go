package service

import (
	"context"
	"sync"
	"time"

	"facturacion/internal/domain"

	"github.com/stretchr/testify/mock"
)

type mockClienteRepository struct {
	mock.Mock
}

func (m *mockClienteRepository) Create(ctx context.Context, cliente *domain.Cliente) (*domain.Cliente, error) {
	args := m.Called(ctx, cliente)
	if c, ok := args.Get(0).(*domain.Cliente); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClienteRepository) GetByID(ctx context.Context, id int64) (*domain.Cliente, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*domain.Cliente); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClienteRepository) GetAll(ctx context.Context) ([]domain.Cliente, error) {
	args := m.Called(ctx)
	if c, ok := args.Get(0).([]domain.Cliente); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockFacturaRepository struct {
	mock.Mock
}

func (m *mockFacturaRepository) Create(ctx context.Context, factura *domain.Factura) (*domain.Factura, error) {
	args := m.Called(ctx, factura)
	if f, ok := args.Get(0).(*domain.Factura); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFacturaRepository) GetByID(ctx context.Context, id int64) (*domain.Factura, error) {
	args := m.Called(ctx, id)
	if f, ok := args.Get(0).(*domain.Factura); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFacturaRepository) GetByDateRange(ctx context.Context, inicio, fin time.Time) ([]domain.Factura, error) {
	args := m.Called(ctx, inicio, fin)
	if f, ok := args.Get(0).([]domain.Factura); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockClientExistenceChecker struct {
	mock.Mock
}

func (m *mockClientExistenceChecker) ClienteExists(ctx context.Context, clienteID int64) bool {
	return m.Called(ctx, clienteID).Bool(0)
}

type mockEventoRepository struct {
	mock.Mock
}

func (m *mockEventoRepository) Insert(ctx context.Context, fields domain.EventFields) (*domain.AuditEvent, error) {
	args := m.Called(ctx, fields)
	if e, ok := args.Get(0).(*domain.AuditEvent); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEventoRepository) FindByEntidadID(ctx context.Context, entidadID string) ([]domain.AuditEvent, error) {
	args := m.Called(ctx, entidadID)
	if e, ok := args.Get(0).([]domain.AuditEvent); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEventoRepository) FindAll(ctx context.Context) ([]domain.AuditEvent, error) {
	args := m.Called(ctx)
	if e, ok := args.Get(0).([]domain.AuditEvent); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

// recordingSink keeps every notification it receives.
type recordingSink struct {
	mu   sync.Mutex
	sent []domain.AuditNotification
	err  error
}

func (s *recordingSink) Send(_ context.Context, n domain.AuditNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return s.err
}

func (s *recordingSink) notifications() []domain.AuditNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuditNotification(nil), s.sent...)
}
