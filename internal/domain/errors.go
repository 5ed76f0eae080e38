package domain

import (
	"errors"
	"fmt"
)

var (
	ErrClienteNotFound  = errors.New("cliente not found")
	ErrClienteDuplicado = errors.New("ya existe un cliente con la misma identificación")
	ErrFacturaNotFound  = errors.New("factura not found")
	ErrInvalidDateRange = errors.New("La fecha de inicio no puede ser mayor a la fecha de fin")
)

// ValidationError carries a human readable message that is returned to the
// caller unchanged.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
