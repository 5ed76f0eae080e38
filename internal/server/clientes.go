package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"facturacion/internal/domain"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

type ClienteService interface {
	CreateCliente(ctx context.Context, req domain.CreateClienteRequest) (*domain.Cliente, error)
	GetCliente(ctx context.Context, id int64) (*domain.Cliente, error)
	ListClientes(ctx context.Context) ([]domain.Cliente, error)
}

type clienteServer struct {
	clienteService ClienteService
}

func NewClienteServer(clienteService ClienteService) *clienteServer {
	return &clienteServer{
		clienteService: clienteService,
	}
}

// Register mounts the handlers on /api/clientes.
func (s *clienteServer) Register(g *echo.Group) {
	g.POST("", s.CreateCliente)
	g.GET("", s.ListClientes)
	g.GET("/:id", s.GetCliente)
}

func handleClienteError(err error, id int64) (int, map[string]string) {
	switch {
	case errors.Is(err, domain.ErrClienteNotFound):
		return http.StatusNotFound, errorBody(fmt.Sprintf("Cliente con ID %d no encontrado", id))
	case errors.Is(err, domain.ErrClienteDuplicado):
		return http.StatusConflict, errorBody(err.Error())
	case domain.IsValidationError(err):
		return http.StatusBadRequest, errorBody(err.Error())
	default:
		return http.StatusInternalServerError, internalErrorBody(err)
	}
}

func (s *clienteServer) CreateCliente(c echo.Context) error {
	var req domain.CreateClienteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Cuerpo de la solicitud inválido"))
	}

	cliente, err := s.clienteService.CreateCliente(c.Request().Context(), req)
	if err != nil {
		if !domain.IsValidationError(err) {
			log.WithError(err).WithField("identificacion", req.Identificacion).Error("Failed to create cliente")
		}
		statusCode, body := handleClienteError(err, 0)
		return c.JSON(statusCode, body)
	}

	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/api/clientes/%d", cliente.ID))
	return c.JSON(http.StatusCreated, cliente)
}

func (s *clienteServer) GetCliente(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("El ID debe ser un número entero"))
	}

	cliente, err := s.clienteService.GetCliente(c.Request().Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrClienteNotFound) {
			log.WithError(err).WithField("cliente_id", id).Error("Failed to get cliente")
		}
		statusCode, body := handleClienteError(err, id)
		return c.JSON(statusCode, body)
	}

	return c.JSON(http.StatusOK, cliente)
}

func (s *clienteServer) ListClientes(c echo.Context) error {
	clientes, err := s.clienteService.ListClientes(c.Request().Context())
	if err != nil {
		log.WithError(err).Error("Failed to list clientes")
		statusCode, body := handleClienteError(err, 0)
		return c.JSON(statusCode, body)
	}

	return c.JSON(http.StatusOK, clientes)
}

func parseID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
