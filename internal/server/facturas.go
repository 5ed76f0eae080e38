package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"facturacion/internal/domain"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

type FacturaService interface {
	CreateFactura(ctx context.Context, req domain.CreateFacturaRequest) (*domain.Factura, error)
	GetFactura(ctx context.Context, id int64) (*domain.Factura, error)
	ListFacturasByDateRange(ctx context.Context, inicio, fin time.Time) ([]domain.Factura, error)
}

type facturaServer struct {
	facturaService FacturaService
}

func NewFacturaServer(facturaService FacturaService) *facturaServer {
	return &facturaServer{
		facturaService: facturaService,
	}
}

// Register mounts the handlers on /api/facturas.
func (s *facturaServer) Register(g *echo.Group) {
	g.POST("", s.CreateFactura)
	g.GET("", s.ListFacturasByDateRange)
	g.GET("/:id", s.GetFactura)
}

func handleFacturaError(err error, id int64) (int, map[string]string) {
	switch {
	case errors.Is(err, domain.ErrFacturaNotFound):
		return http.StatusNotFound, errorBody(fmt.Sprintf("Factura con ID %d no encontrada", id))
	case errors.Is(err, domain.ErrInvalidDateRange):
		return http.StatusBadRequest, errorBody(err.Error())
	case domain.IsValidationError(err):
		return http.StatusBadRequest, errorBody(err.Error())
	default:
		return http.StatusInternalServerError, internalErrorBody(err)
	}
}

func (s *facturaServer) CreateFactura(c echo.Context) error {
	var req domain.CreateFacturaRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Cuerpo de la solicitud inválido"))
	}

	factura, err := s.facturaService.CreateFactura(c.Request().Context(), req)
	if err != nil {
		if !domain.IsValidationError(err) {
			log.WithError(err).WithField("cliente_id", req.ClienteID).Error("Failed to create factura")
		}
		statusCode, body := handleFacturaError(err, 0)
		return c.JSON(statusCode, body)
	}

	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/api/facturas/%d", factura.ID))
	return c.JSON(http.StatusCreated, factura)
}

func (s *facturaServer) GetFactura(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("El ID debe ser un número entero"))
	}

	factura, err := s.facturaService.GetFactura(c.Request().Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrFacturaNotFound) {
			log.WithError(err).WithField("factura_id", id).Error("Failed to get factura")
		}
		statusCode, body := handleFacturaError(err, id)
		return c.JSON(statusCode, body)
	}

	return c.JSON(http.StatusOK, factura)
}

func (s *facturaServer) ListFacturasByDateRange(c echo.Context) error {
	var q domain.DateRangeQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Parámetros de consulta inválidos"))
	}
	if err := c.Validate(&q); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("fechaInicio y fechaFin son requeridos"))
	}

	inicio, err := domain.ParseFecha(q.FechaInicio)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(fmt.Sprintf("fechaInicio inválida: %s", q.FechaInicio)))
	}
	fin, err := domain.ParseFecha(q.FechaFin)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(fmt.Sprintf("fechaFin inválida: %s", q.FechaFin)))
	}

	facturas, err := s.facturaService.ListFacturasByDateRange(c.Request().Context(), inicio, fin)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidDateRange) {
			log.WithError(err).WithFields(log.Fields{
				"fecha_inicio": inicio,
				"fecha_fin":    fin,
			}).Error("Failed to list facturas")
		}
		statusCode, body := handleFacturaError(err, 0)
		return c.JSON(statusCode, body)
	}

	return c.JSON(http.StatusOK, facturas)
}
