package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"facturacion/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEventoService_CreateEvento(t *testing.T) {
	t.Run("normalises keys and stamps timestamps", func(t *testing.T) {
		repo := new(mockEventoRepository)
		svc := NewEventoService(repo)

		repo.On("Insert", mock.Anything, mock.MatchedBy(func(f domain.EventFields) bool {
			ts, ok := f[domain.FieldTimestamp].(time.Time)
			created, ok2 := f[domain.FieldFechaCreacion].(time.Time)
			return ok && ok2 && ts.Equal(created) && ts.Location() == time.UTC &&
				f[domain.FieldEntidadID] == "42" && f[domain.FieldServicio] == "X"
		})).Return(&domain.AuditEvent{ID: "abc", Servicio: "X", EntidadID: "42"}, nil)

		ev, err := svc.CreateEvento(context.Background(), map[string]any{
			"entidadid": "42",
			"servicio":  "X",
			"entidad":   "Y",
			"accion":    "Z",
			"timestamp": "1999-01-01T00:00:00Z",
		})

		require.NoError(t, err)
		assert.Equal(t, "abc", ev.ID)
		repo.AssertExpectations(t)
	})

	t.Run("missing accion", func(t *testing.T) {
		repo := new(mockEventoRepository)
		svc := NewEventoService(repo)

		ev, err := svc.CreateEvento(context.Background(), map[string]any{"entidadid": "42", "servicio": "X", "entidad": "Y"})

		assert.Nil(t, ev)
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
		assert.Equal(t, "Campos requeridos faltantes: accion", err.Error())
		repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("storage error", func(t *testing.T) {
		repo := new(mockEventoRepository)
		svc := NewEventoService(repo)
		repo.On("Insert", mock.Anything, mock.Anything).Return(nil, errors.New("server selection timeout"))

		_, err := svc.CreateEvento(context.Background(), map[string]any{"servicio": "X", "entidad": "Y", "entidadId": 1, "accion": "Z"})

		require.Error(t, err)
		assert.False(t, domain.IsValidationError(err))
	})
}

func TestEventoService_TimestampsNeverDecrease(t *testing.T) {
	repo := new(mockEventoRepository)
	svc := NewEventoService(repo)

	base := time.Date(2025, 5, 5, 12, 0, 0, 0, time.UTC)
	ticks := []time.Time{base, base.Add(-time.Hour), base.Add(time.Second)}
	i := 0
	svc.clock = newMonotonicClock(func() time.Time {
		t := ticks[i]
		i++
		return t
	})

	var stamps []time.Time
	repo.On("Insert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stamps = append(stamps, args.Get(1).(domain.EventFields)[domain.FieldTimestamp].(time.Time))
	}).Return(&domain.AuditEvent{}, nil)

	raw := map[string]any{"servicio": "X", "entidad": "Y", "entidadId": "1", "accion": "Z"}
	for range ticks {
		_, err := svc.CreateEvento(context.Background(), raw)
		require.NoError(t, err)
	}

	require.Len(t, stamps, 3)
	assert.True(t, stamps[0].Equal(base))
	assert.True(t, stamps[1].Equal(base))
	assert.True(t, stamps[2].Equal(base.Add(time.Second)))
}

func TestEventoService_FindByEntidadID(t *testing.T) {
	t.Run("blank id", func(t *testing.T) {
		repo := new(mockEventoRepository)
		svc := NewEventoService(repo)

		_, err := svc.FindByEntidadID(context.Background(), "  ")

		require.Error(t, err)
		assert.Equal(t, "entidad_id es requerido", err.Error())
		repo.AssertNotCalled(t, "FindByEntidadID", mock.Anything, mock.Anything)
	})

	t.Run("delegates to repository", func(t *testing.T) {
		repo := new(mockEventoRepository)
		svc := NewEventoService(repo)
		repo.On("FindByEntidadID", mock.Anything, "42").Return([]domain.AuditEvent{{ID: "a"}, {ID: "b"}}, nil)

		eventos, err := svc.FindByEntidadID(context.Background(), "42")

		require.NoError(t, err)
		assert.Len(t, eventos, 2)
	})
}

func TestEventoService_FindAll(t *testing.T) {
	repo := new(mockEventoRepository)
	svc := NewEventoService(repo)
	repo.On("FindAll", mock.Anything).Return([]domain.AuditEvent{{ID: "a"}}, nil)

	eventos, err := svc.FindAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, eventos, 1)
}
