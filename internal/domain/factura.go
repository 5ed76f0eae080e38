package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Factura struct {
	ID           int64           `json:"id"`
	ClienteID    int64           `json:"clienteId"`
	FechaEmision time.Time       `json:"fechaEmision"`
	MontoTotal   decimal.Decimal `json:"montoTotal"`
}

type CreateFacturaRequest struct {
	ClienteID    int64           `json:"clienteId"`
	FechaEmision Fecha           `json:"fechaEmision"`
	MontoTotal   decimal.Decimal `json:"montoTotal"`
}

// DateRangeQuery holds the raw query parameters of a date range search.
type DateRangeQuery struct {
	FechaInicio string `query:"fechaInicio" validate:"required"`
	FechaFin    string `query:"fechaFin" validate:"required"`
}

const (
	// MontoScale is the number of decimal places MONTO_TOTAL keeps.
	MontoScale = 2
	// FechaPrecision is the finest instant FECHA_EMISION can hold.
	FechaPrecision = time.Microsecond
)

// Normalize rounds the factura to what the FACTURAS table stores, so that
// validation sees the persisted values and a created factura reads back equal.
func (f *Factura) Normalize() {
	f.MontoTotal = f.MontoTotal.Round(MontoScale)
	f.FechaEmision = f.FechaEmision.Truncate(FechaPrecision)
}

func (f *Factura) Validate() error {
	return f.ValidateAt(time.Now())
}

// ValidateAt checks the fields in a fixed order and reports the first failure.
func (f *Factura) ValidateAt(now time.Time) error {
	if f.ClienteID <= 0 {
		return &ValidationError{Message: "El ClienteId debe ser mayor a cero"}
	}
	if !f.MontoTotal.IsPositive() {
		return &ValidationError{Message: "El MontoTotal debe ser mayor a cero"}
	}
	if f.FechaEmision.After(now) {
		return &ValidationError{Message: "La FechaEmision no puede ser futura"}
	}
	return nil
}
