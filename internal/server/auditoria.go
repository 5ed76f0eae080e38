package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"facturacion/internal/domain"
	"facturacion/internal/metrics"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const sourceHTTP = "http"

type EventoService interface {
	CreateEvento(ctx context.Context, raw map[string]any) (*domain.AuditEvent, error)
	FindByEntidadID(ctx context.Context, entidadID string) ([]domain.AuditEvent, error)
	FindAll(ctx context.Context) ([]domain.AuditEvent, error)
}

type auditoriaServer struct {
	eventoService EventoService
	metrics       *metrics.Metrics
}

func NewAuditoriaServer(eventoService EventoService, m *metrics.Metrics) *auditoriaServer {
	return &auditoriaServer{
		eventoService: eventoService,
		metrics:       m,
	}
}

func (s *auditoriaServer) Register(e *echo.Echo) {
	e.GET("/", s.Info)
	e.POST("/auditoria", s.CreateEvento)
	e.GET("/auditoria", s.ListEventos)
	e.GET("/auditoria/:entidad_id", s.ListEventosByEntidad)
}

type eventosResponse struct {
	Message string              `json:"message"`
	Total   int                 `json:"total"`
	Eventos []domain.AuditEvent `json:"eventos"`
}

func internalError(err error) map[string]string {
	return map[string]string{
		"error":   "Error interno del servidor",
		"message": err.Error(),
	}
}

func (s *auditoriaServer) CreateEvento(c echo.Context) error {
	if !strings.Contains(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		s.metrics.EventIngested(sourceHTTP, metrics.ResultInvalid)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Body JSON requerido"})
	}

	raw, err := decodeBody(c.Request().Body)
	if err != nil {
		s.metrics.EventIngested(sourceHTTP, metrics.ResultInvalid)
		if errors.Is(err, errEmptyBody) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Body JSON requerido"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error":   "JSON inválido",
			"message": err.Error(),
		})
	}

	evento, err := s.eventoService.CreateEvento(c.Request().Context(), raw)
	if err != nil {
		if domain.IsValidationError(err) {
			s.metrics.EventIngested(sourceHTTP, metrics.ResultInvalid)
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error":   "Datos inválidos",
				"message": err.Error(),
			})
		}
		log.WithError(err).Error("Failed to create audit event")
		s.metrics.EventIngested(sourceHTTP, metrics.ResultError)
		return c.JSON(http.StatusInternalServerError, internalError(err))
	}

	s.metrics.EventIngested(sourceHTTP, metrics.ResultOK)
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Evento de auditoría creado exitosamente",
		"evento":  evento,
	})
}

func (s *auditoriaServer) ListEventosByEntidad(c echo.Context) error {
	entidadID := c.Param("entidad_id")

	eventos, err := s.eventoService.FindByEntidadID(c.Request().Context(), entidadID)
	if err != nil {
		if domain.IsValidationError(err) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		log.WithError(err).WithField("entidad_id", entidadID).Error("Failed to find audit events")
		return c.JSON(http.StatusInternalServerError, internalError(err))
	}

	return c.JSON(http.StatusOK, newEventosResponse(fmt.Sprintf("Eventos encontrados para entidadId: %s", entidadID), eventos))
}

func (s *auditoriaServer) ListEventos(c echo.Context) error {
	eventos, err := s.eventoService.FindAll(c.Request().Context())
	if err != nil {
		log.WithError(err).Error("Failed to list audit events")
		return c.JSON(http.StatusInternalServerError, internalError(err))
	}

	return c.JSON(http.StatusOK, newEventosResponse("Todos los eventos de auditoría", eventos))
}

func (s *auditoriaServer) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Microservicio de Auditoría",
		"version": "1.0.0",
		"endpoints": []string{
			"GET /",
			"GET /health",
			"GET /metrics",
			"POST /auditoria",
			"GET /auditoria",
			"GET /auditoria/:entidad_id",
		},
		"timestamp": time.Now().UTC(),
	})
}

func newEventosResponse(message string, eventos []domain.AuditEvent) eventosResponse {
	if eventos == nil {
		eventos = []domain.AuditEvent{}
	}
	return eventosResponse{Message: message, Total: len(eventos), Eventos: eventos}
}

var errEmptyBody = errors.New("empty body")

// decodeBody reads a JSON object, keeping numbers as json.Number.
func decodeBody(body io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmptyBody
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after JSON object")
	}
	if raw == nil {
		return nil, errEmptyBody
	}
	return raw, nil
}
