package domain

import "strings"

type Cliente struct {
	ID             int64  `json:"id"`
	Nombre         string `json:"nombre"`
	Identificacion string `json:"identificacion"`
	Correo         string `json:"correo"`
	Direccion      string `json:"direccion"`
}

type CreateClienteRequest struct {
	Nombre         string `json:"nombre"`
	Identificacion string `json:"identificacion"`
	Correo         string `json:"correo"`
	Direccion      string `json:"direccion"`
}

// NewCliente builds a validated, not yet persisted client.
func NewCliente(req CreateClienteRequest) (*Cliente, error) {
	c := &Cliente{
		Nombre:         req.Nombre,
		Identificacion: req.Identificacion,
		Correo:         req.Correo,
		Direccion:      req.Direccion,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate reports the first blank required field. Content and format are not
// checked.
func (c *Cliente) Validate() error {
	switch {
	case isBlank(c.Nombre):
		return &ValidationError{Message: "El nombre es requerido"}
	case isBlank(c.Identificacion):
		return &ValidationError{Message: "La identificación es requerida"}
	case isBlank(c.Correo):
		return &ValidationError{Message: "El correo es requerido"}
	case isBlank(c.Direccion):
		return &ValidationError{Message: "La dirección es requerida"}
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
