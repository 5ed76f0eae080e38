package service

import (
	"context"
	"fmt"
	"time"

	"facturacion/internal/domain"

	log "github.com/sirupsen/logrus"
)

type FacturaRepository interface {
	Create(ctx context.Context, factura *domain.Factura) (*domain.Factura, error)
	GetByID(ctx context.Context, id int64) (*domain.Factura, error)
	GetByDateRange(ctx context.Context, inicio, fin time.Time) ([]domain.Factura, error)
}

// ClientExistenceChecker answers whether a client exists. It never fails: any
// doubt is reported as false.
type ClientExistenceChecker interface {
	ClienteExists(ctx context.Context, clienteID int64) bool
}

type facturaService struct {
	repo     FacturaRepository
	clientes ClientExistenceChecker
	audit    *AuditService
	now      func() time.Time
}

func NewFacturaService(repo FacturaRepository, clientes ClientExistenceChecker, audit *AuditService) *facturaService {
	return &facturaService{
		repo:     repo,
		clientes: clientes,
		audit:    audit,
		now:      time.Now,
	}
}

func (s *facturaService) CreateFactura(ctx context.Context, req domain.CreateFacturaRequest) (*domain.Factura, error) {
	factura := &domain.Factura{
		ClienteID:    req.ClienteID,
		FechaEmision: req.FechaEmision.Time,
		MontoTotal:   req.MontoTotal,
	}
	factura.Normalize()
	if err := factura.ValidateAt(s.now()); err != nil {
		return nil, err
	}

	if !s.clientes.ClienteExists(ctx, req.ClienteID) {
		return nil, domain.NewValidationError("El cliente con ID %d no existe", req.ClienteID)
	}

	created, err := s.repo.Create(ctx, factura)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"factura_id": created.ID,
		"cliente_id": created.ClienteID,
	}).Info("Factura successfully created")

	s.audit.RecordFacturaCreated(ctx, created)
	return created, nil
}

func (s *facturaService) GetFactura(ctx context.Context, id int64) (*domain.Factura, error) {
	factura, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return factura, nil
}

func (s *facturaService) ListFacturasByDateRange(ctx context.Context, inicio, fin time.Time) ([]domain.Factura, error) {
	if inicio.After(fin) {
		return nil, domain.ErrInvalidDateRange
	}

	facturas, err := s.repo.GetByDateRange(ctx, inicio, fin)
	if err != nil {
		return nil, fmt.Errorf("failed to list facturas: %w", err)
	}
	return facturas, nil
}
