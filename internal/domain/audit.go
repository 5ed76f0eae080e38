package domain

import "time"

const AccionCrear = "Crear"

// AuditNotification is the payload a service sends to the audit sink after
// creating an entity.
type AuditNotification struct {
	Servicio  string    `json:"servicio"`
	Entidad   string    `json:"entidad"`
	EntidadID int64     `json:"entidadId"`
	Accion    string    `json:"accion"`
	Detalles  string    `json:"detalles"`
	Fecha     time.Time `json:"fecha"`
}
