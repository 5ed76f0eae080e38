package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Canonical audit event keys.
const (
	FieldServicio      = "servicio"
	FieldEntidad       = "entidad"
	FieldEntidadID     = "entidadId"
	FieldAccion        = "accion"
	FieldDetalles      = "detalles"
	FieldTimestamp     = "timestamp"
	FieldFecha         = "fecha"
	FieldFechaCreacion = "fechaCreacion"
)

// eventFieldSynonyms maps a lower-cased, trimmed input key to its canonical name.
var eventFieldSynonyms = map[string]string{
	"servicio":      FieldServicio,
	"entidad":       FieldEntidad,
	"entidadid":     FieldEntidadID,
	"entidad_id":    FieldEntidadID,
	"accion":        FieldAccion,
	"detalles":      FieldDetalles,
	"timestamp":     FieldTimestamp,
	"fecha":         FieldFecha,
	"fechacreacion": FieldFechaCreacion,
}

var requiredEventFields = []string{FieldServicio, FieldEntidad, FieldEntidadID, FieldAccion}

// EventFields is an audit event document keyed by canonical field names.
// Keys outside the synonym table are kept as sent.
type EventFields map[string]any

// AuditEvent is a stored audit event as returned by the API.
type AuditEvent struct {
	ID            string    `json:"id"`
	Servicio      string    `json:"servicio"`
	Entidad       string    `json:"entidad"`
	EntidadID     string    `json:"entidadId"`
	Accion        string    `json:"accion"`
	Timestamp     time.Time `json:"timestamp"`
	FechaCreacion time.Time `json:"-"`
	Detalles      any       `json:"detalles"`
}

// NormalizeEventFields rewrites raw keys to their canonical names. When more
// than one key resolves to the same name the key already spelled canonically
// wins; among the rest the lexicographically last key wins.
func NormalizeEventFields(raw map[string]any) EventFields {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	normalized := make(EventFields, len(raw))
	exact := make(map[string]bool)
	for _, key := range keys {
		canonical, ok := eventFieldSynonyms[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			canonical = key
		}
		if exact[canonical] {
			continue
		}
		normalized[canonical] = raw[key]
		if key == canonical {
			exact[canonical] = true
		}
	}

	if v, ok := normalized[FieldEntidadID]; ok && v != nil {
		normalized[FieldEntidadID] = CoerceString(v)
	}
	return normalized
}

// Missing lists the required fields that are absent or blank, in a fixed order.
func (f EventFields) Missing() []string {
	var missing []string
	for _, field := range requiredEventFields {
		v, ok := f[field]
		if !ok || v == nil || strings.TrimSpace(CoerceString(v)) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// Validate returns a ValidationError naming every missing required field.
func (f EventFields) Validate() error {
	if missing := f.Missing(); len(missing) > 0 {
		return NewValidationError("Campos requeridos faltantes: %s", strings.Join(missing, ", "))
	}
	return nil
}

// CoerceString renders a decoded JSON value as a string.
func CoerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
