package server

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"time"

	"facturacion/internal/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

// Pinger is the backing store a health check probes.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error {
	return f(ctx)
}

type healthServer struct {
	service string
	store   Pinger
}

func NewHealthServer(service string, store Pinger) *healthServer {
	return &healthServer{service: service, store: store}
}

func (s *healthServer) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := s.store.PingContext(ctx); err != nil {
		log.WithField("error", err).Error("Health check failed: store is down")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "unhealthy",
			"service": s.service,
			"error":   "store connection error",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "OK",
		"service":   s.service,
		"timestamp": time.Now().UTC(),
	})
}

type requestValidator struct {
	validate *validator.Validate
}

// NewValidator reports field errors under their query or json names.
func NewValidator() echo.Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"query", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return &requestValidator{validate: v}
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// New builds the Echo instance every service shares: recovery, request ids,
// latency metrics, the validator and the /health and /metrics endpoints.
func New(service string, store Pinger, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(m.Middleware())
	e.Use(requestLogger())

	e.GET("/health", NewHealthServer(service, store).HealthCheck)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
	return e
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			log.WithFields(log.Fields{
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
				"method":     c.Request().Method,
				"uri":        c.Request().RequestURI,
				"status":     c.Response().Status,
				"latency":    time.Since(start).String(),
			}).Debug("Request handled")
			return nil
		}
	}
}

func errorBody(message string) map[string]string {
	return map[string]string{"message": message}
}

func internalErrorBody(err error) map[string]string {
	return map[string]string{
		"message": "Error interno del servidor",
		"details": err.Error(),
	}
}
