package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEventFields(t *testing.T) {
	t.Run("maps synonyms case-insensitively", func(t *testing.T) {
		got := NormalizeEventFields(map[string]any{
			"entidadid":     "42",
			"SERVICIO":      "X",
			" Entidad ":     "Y",
			"accion":        "Z",
			"FechaCreacion": "2020-01-01",
		})

		assert.Equal(t, EventFields{
			"entidadId":     "42",
			"servicio":      "X",
			"entidad":       "Y",
			"accion":        "Z",
			"fechaCreacion": "2020-01-01",
		}, got)
	})

	t.Run("entidad_id maps to entidadId", func(t *testing.T) {
		got := NormalizeEventFields(map[string]any{"entidad_id": "7"})
		assert.Equal(t, "7", got[FieldEntidadID])
	})

	t.Run("unknown keys pass through verbatim", func(t *testing.T) {
		got := NormalizeEventFields(map[string]any{"Usuario": "ana", "ip_origen": "10.0.0.1"})
		assert.Equal(t, EventFields{"Usuario": "ana", "ip_origen": "10.0.0.1"}, got)
	})

	t.Run("entidadId coerced to string", func(t *testing.T) {
		got := NormalizeEventFields(map[string]any{"EntidadId": json.Number("15")})
		assert.Equal(t, "15", got[FieldEntidadID])

		got = NormalizeEventFields(map[string]any{"entidadId": float64(3)})
		assert.Equal(t, "3", got[FieldEntidadID])
	})

	t.Run("null entidadId left as is", func(t *testing.T) {
		got := NormalizeEventFields(map[string]any{"entidadId": nil})
		v, ok := got[FieldEntidadID]
		assert.True(t, ok)
		assert.Nil(t, v)
	})

	t.Run("canonical spelling wins over synonyms", func(t *testing.T) {
		got := NormalizeEventFields(map[string]any{
			"entidad_id": "1",
			"entidadId":  "2",
			"ENTIDADID":  "3",
		})
		assert.Equal(t, "2", got[FieldEntidadID])
	})
}

func TestEventFields_Validate(t *testing.T) {
	t.Run("complete event", func(t *testing.T) {
		fields := NormalizeEventFields(map[string]any{"entidadid": "42", "servicio": "X", "entidad": "Y", "accion": "Z"})
		assert.NoError(t, fields.Validate())
	})

	t.Run("missing accion", func(t *testing.T) {
		fields := NormalizeEventFields(map[string]any{"entidadid": "42", "servicio": "X", "entidad": "Y"})

		err := fields.Validate()

		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Equal(t, "Campos requeridos faltantes: accion", err.Error())
	})

	t.Run("lists every missing field in order", func(t *testing.T) {
		fields := NormalizeEventFields(map[string]any{"entidad": "  ", "entidadId": nil})

		err := fields.Validate()

		require.Error(t, err)
		assert.Equal(t, "Campos requeridos faltantes: servicio, entidad, entidadId, accion", err.Error())
	})

	t.Run("non-string values count when non-blank", func(t *testing.T) {
		fields := NormalizeEventFields(map[string]any{"servicio": true, "entidad": 1.5, "entidadId": 0, "accion": map[string]any{}})
		assert.NoError(t, fields.Validate())
	})
}

func TestCoerceString(t *testing.T) {
	assert.Equal(t, "", CoerceString(nil))
	assert.Equal(t, "abc", CoerceString("abc"))
	assert.Equal(t, "12", CoerceString(json.Number("12")))
	assert.Equal(t, "1.25", CoerceString(1.25))
	assert.Equal(t, "99", CoerceString(int64(99)))
	assert.Equal(t, "false", CoerceString(false))
}
