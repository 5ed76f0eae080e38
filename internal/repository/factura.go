package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"facturacion/internal/domain"

	log "github.com/sirupsen/logrus"
)

type sqlFacturaRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewFacturaRepository(db *sql.DB, dialect Dialect) *sqlFacturaRepository {
	return &sqlFacturaRepository{db: db, dialect: dialect}
}

func (r *sqlFacturaRepository) Create(ctx context.Context, factura *domain.Factura) (*domain.Factura, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	created := *factura
	created.Normalize()

	log.WithFields(log.Fields{
		"cliente_id":  factura.ClienteID,
		"monto_total": created.MontoTotal.String(),
	}).Info("Creating new factura")

	id, err := r.dialect.insertReturningID(ctx, r.db,
		`INSERT INTO FACTURAS (CLIENTE_ID, FECHA_EMISION, MONTO_TOTAL) VALUES (?, ?, ?)`,
		created.ClienteID,
		created.FechaEmision,
		created.MontoTotal,
	)
	if err != nil {
		log.WithError(err).WithField("cliente_id", factura.ClienteID).Error("Failed to create factura")
		return nil, fmt.Errorf("failed to create factura: %w", err)
	}

	created.ID = id
	return &created, nil
}

func (r *sqlFacturaRepository) GetByID(ctx context.Context, id int64) (*domain.Factura, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := r.dialect.Rebind(`
		SELECT ID, CLIENTE_ID, FECHA_EMISION, MONTO_TOTAL
		FROM FACTURAS
		WHERE ID = ?`)

	var f domain.Factura
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&f.ID,
		&f.ClienteID,
		&f.FechaEmision,
		&f.MontoTotal,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFacturaNotFound
		}
		log.WithError(err).WithField("factura_id", id).Error("Failed to get factura by ID")
		return nil, fmt.Errorf("failed to get factura by ID: %w", err)
	}

	return &f, nil
}

// GetByDateRange returns facturas issued within [inicio, fin], newest first.
func (r *sqlFacturaRepository) GetByDateRange(ctx context.Context, inicio, fin time.Time) ([]domain.Factura, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := r.dialect.Rebind(`
		SELECT ID, CLIENTE_ID, FECHA_EMISION, MONTO_TOTAL
		FROM FACTURAS
		WHERE FECHA_EMISION >= ? AND FECHA_EMISION <= ?
		ORDER BY FECHA_EMISION DESC`)

	rows, err := r.db.QueryContext(ctx, query, inicio, fin)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"fecha_inicio": inicio,
			"fecha_fin":    fin,
		}).Error("Failed to list facturas by date range")
		return nil, fmt.Errorf("failed to list facturas: %w", err)
	}
	defer rows.Close()

	facturas := []domain.Factura{}
	for rows.Next() {
		var f domain.Factura
		if err := rows.Scan(&f.ID, &f.ClienteID, &f.FechaEmision, &f.MontoTotal); err != nil {
			log.WithError(err).Error("Failed to scan factura row")
			return nil, err
		}
		facturas = append(facturas, f)
	}

	return facturas, rows.Err()
}
