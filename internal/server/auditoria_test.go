package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"facturacion/internal/domain"
	"facturacion/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuditoriaEcho(svc EventoService) *echo.Echo {
	m := metrics.New("auditoria")
	e := New("auditoria", okPinger(), m)
	NewAuditoriaServer(svc, m).Register(e)
	return e
}

func TestAuditoriaServer_CreateEvento(t *testing.T) {
	stamp := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("created", func(t *testing.T) {
		svc := new(mockEventoService)
		svc.On("CreateEvento", mock.Anything, mock.MatchedBy(func(raw map[string]any) bool {
			n, ok := raw["entidadId"].(json.Number)
			return ok && n.String() == "42"
		})).Return(&domain.AuditEvent{
			ID:        "65f0c0ffee",
			Servicio:  "Clientes",
			Entidad:   "Cliente",
			EntidadID: "42",
			Accion:    "Crear",
			Timestamp: stamp,
			Detalles:  "Cliente creado",
		}, nil)

		rec := doJSON(newAuditoriaEcho(svc), http.MethodPost, "/auditoria",
			`{"servicio":"Clientes","entidad":"Cliente","entidadId":42,"accion":"Crear","detalles":"Cliente creado"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeMap(t, rec)
		assert.Equal(t, "Evento de auditoría creado exitosamente", body["message"])
		evento := body["evento"].(map[string]any)
		assert.Equal(t, "65f0c0ffee", evento["id"])
		assert.Equal(t, "42", evento["entidadId"])
		assert.Equal(t, "2025-03-01T09:00:00Z", evento["timestamp"])
		assert.NotContains(t, evento, "fechaCreacion")
	})

	t.Run("invalid data", func(t *testing.T) {
		svc := new(mockEventoService)
		svc.On("CreateEvento", mock.Anything, mock.Anything).Return(nil, domain.NewValidationError("Campos requeridos faltantes: accion"))

		rec := doJSON(newAuditoriaEcho(svc), http.MethodPost, "/auditoria", `{"servicio":"X"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeMap(t, rec)
		assert.Equal(t, "Datos inválidos", body["error"])
		assert.Equal(t, "Campos requeridos faltantes: accion", body["message"])
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := new(mockEventoService)
		svc.On("CreateEvento", mock.Anything, mock.Anything).Return(nil, errors.New("no reachable servers"))

		rec := doJSON(newAuditoriaEcho(svc), http.MethodPost, "/auditoria", `{"servicio":"X"}`)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeMap(t, rec)
		assert.Equal(t, "Error interno del servidor", body["error"])
		assert.Equal(t, "no reachable servers", body["message"])
	})

	t.Run("invalid json", func(t *testing.T) {
		svc := new(mockEventoService)

		rec := doJSON(newAuditoriaEcho(svc), http.MethodPost, "/auditoria", `{"servicio":`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeMap(t, rec)
		assert.Equal(t, "JSON inválido", body["error"])
		assert.NotEmpty(t, body["message"])
		svc.AssertNotCalled(t, "CreateEvento", mock.Anything, mock.Anything)
	})

	t.Run("body required", func(t *testing.T) {
		for _, body := range []string{"", "null", "   "} {
			svc := new(mockEventoService)
			req := httptest.NewRequest(http.MethodPost, "/auditoria", strings.NewReader(body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()

			newAuditoriaEcho(svc).ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code, body)
			assert.Equal(t, "Body JSON requerido", decodeMap(t, rec)["error"])
		}
	})

	t.Run("not json content type", func(t *testing.T) {
		svc := new(mockEventoService)
		req := httptest.NewRequest(http.MethodPost, "/auditoria", strings.NewReader(`servicio=X`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		rec := httptest.NewRecorder()

		newAuditoriaEcho(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Body JSON requerido", decodeMap(t, rec)["error"])
	})
}

func TestAuditoriaServer_ListEventosByEntidad(t *testing.T) {
	svc := new(mockEventoService)
	svc.On("FindByEntidadID", mock.Anything, "42").Return([]domain.AuditEvent{{ID: "b"}, {ID: "a"}}, nil)
	svc.On("FindByEntidadID", mock.Anything, "7").Return(nil, nil)
	svc.On("FindByEntidadID", mock.Anything, " ").Return(nil, domain.NewValidationError("entidad_id es requerido"))
	e := newAuditoriaEcho(svc)

	rec := doJSON(e, http.MethodGet, "/auditoria/42", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "Eventos encontrados para entidadId: 42", body["message"])
	assert.Equal(t, float64(2), body["total"])
	assert.Len(t, body["eventos"], 2)

	rec = doJSON(e, http.MethodGet, "/auditoria/7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Eventos encontrados para entidadId: 7","total":0,"eventos":[]}`, rec.Body.String())

	rec = doJSON(e, http.MethodGet, "/auditoria/%20", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "entidad_id es requerido", decodeMap(t, rec)["error"])
}

func TestAuditoriaServer_ListEventos(t *testing.T) {
	svc := new(mockEventoService)
	svc.On("FindAll", mock.Anything).Return([]domain.AuditEvent{{ID: "a"}}, nil).Once()
	svc.On("FindAll", mock.Anything).Return(nil, errors.New("cursor killed")).Once()
	e := newAuditoriaEcho(svc)

	rec := doJSON(e, http.MethodGet, "/auditoria", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "Todos los eventos de auditoría", body["message"])
	assert.Equal(t, float64(1), body["total"])

	rec = doJSON(e, http.MethodGet, "/auditoria", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "cursor killed", decodeMap(t, rec)["message"])
}

func TestAuditoriaServer_Info(t *testing.T) {
	rec := doJSON(newAuditoriaEcho(new(mockEventoService)), http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "Microservicio de Auditoría", body["message"])
	assert.Contains(t, body["endpoints"], "POST /auditoria")
}
