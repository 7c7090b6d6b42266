package domain

import "errors"

// ValidationError is a user-facing input problem. Message is the localized
// text shown by forms.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

var (
	ErrMissingFields    = &ValidationError{Message: "Todos los campos son obligatorios"}
	ErrAmountOutOfRange = &ValidationError{Field: "monto", Message: "El monto debe estar entre 0 y 1,000,000,000"}
	ErrEmptyDate        = &ValidationError{Field: "fecha", Message: "La fecha no puede estar vacía"}
)

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
