package service

import (
	"context"
	"fmt"

	"facturacion/internal/domain"

	log "github.com/sirupsen/logrus"
)

type ClienteRepository interface {
	Create(ctx context.Context, cliente *domain.Cliente) (*domain.Cliente, error)
	GetByID(ctx context.Context, id int64) (*domain.Cliente, error)
	GetAll(ctx context.Context) ([]domain.Cliente, error)
}

type clienteService struct {
	repo  ClienteRepository
	audit *AuditService
}

func NewClienteService(repo ClienteRepository, audit *AuditService) *clienteService {
	return &clienteService{repo: repo, audit: audit}
}

func (s *clienteService) CreateCliente(ctx context.Context, req domain.CreateClienteRequest) (*domain.Cliente, error) {
	cliente, err := domain.NewCliente(req)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, cliente)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"cliente_id":     created.ID,
		"identificacion": created.Identificacion,
	}).Info("Cliente successfully created")

	s.audit.RecordClienteCreated(ctx, created)
	return created, nil
}

func (s *clienteService) GetCliente(ctx context.Context, id int64) (*domain.Cliente, error) {
	cliente, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return cliente, nil
}

func (s *clienteService) ListClientes(ctx context.Context) ([]domain.Cliente, error) {
	clientes, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clientes: %w", err)
	}
	return clientes, nil
}
