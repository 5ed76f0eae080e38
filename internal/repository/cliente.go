package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"facturacion/internal/domain"

	log "github.com/sirupsen/logrus"
)

type sqlClienteRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewClienteRepository(db *sql.DB, dialect Dialect) *sqlClienteRepository {
	return &sqlClienteRepository{db: db, dialect: dialect}
}

func (r *sqlClienteRepository) Create(ctx context.Context, cliente *domain.Cliente) (*domain.Cliente, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id, err := r.dialect.insertReturningID(ctx, r.db,
		`INSERT INTO CLIENTES (NOMBRE, IDENTIFICACION, CORREO, DIRECCION) VALUES (?, ?, ?, ?)`,
		cliente.Nombre,
		cliente.Identificacion,
		cliente.Correo,
		cliente.Direccion,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, domain.ErrClienteDuplicado
		}
		log.WithError(err).WithField("identificacion", cliente.Identificacion).Error("Failed to create cliente")
		return nil, fmt.Errorf("failed to create cliente: %w", err)
	}

	created := *cliente
	created.ID = id
	return &created, nil
}

func (r *sqlClienteRepository) GetByID(ctx context.Context, id int64) (*domain.Cliente, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := r.dialect.Rebind(`
		SELECT ID, NOMBRE, IDENTIFICACION, CORREO, DIRECCION
		FROM CLIENTES
		WHERE ID = ?`)

	var c domain.Cliente
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.Nombre,
		&c.Identificacion,
		&c.Correo,
		&c.Direccion,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClienteNotFound
		}
		log.WithError(err).WithField("cliente_id", id).Error("Failed to get cliente by ID")
		return nil, fmt.Errorf("failed to get cliente by ID: %w", err)
	}

	return &c, nil
}

func (r *sqlClienteRepository) GetAll(ctx context.Context) ([]domain.Cliente, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT ID, NOMBRE, IDENTIFICACION, CORREO, DIRECCION
		FROM CLIENTES
		ORDER BY ID`)
	if err != nil {
		log.WithError(err).Error("Failed to list clientes")
		return nil, fmt.Errorf("failed to list clientes: %w", err)
	}
	defer rows.Close()

	clientes := []domain.Cliente{}
	for rows.Next() {
		var c domain.Cliente
		if err := rows.Scan(&c.ID, &c.Nombre, &c.Identificacion, &c.Correo, &c.Direccion); err != nil {
			return nil, fmt.Errorf("failed to scan cliente row: %w", err)
		}
		clientes = append(clientes, c)
	}

	return clientes, rows.Err()
}
