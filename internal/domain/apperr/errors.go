// Package apperr agrupa los errores de dominio compartidos por todos los módulos.
// Los servicios los envuelven con %w para agregar un mensaje legible;
// los handlers los mapean a status HTTP con errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)

// Invalid devuelve un ErrInvalidInput con mensaje.
func Invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// Forbidden devuelve un ErrForbidden con mensaje.
func Forbidden(msg string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, msg)
}

// NotFound devuelve un ErrNotFound indicando qué no se encontró.
func NotFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// Message devuelve el texto sin el prefijo del sentinel ("invalid input: x" -> "x").
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, s := range []error{ErrInvalidInput, ErrNotFound, ErrForbidden, ErrConflict} {
		prefix := s.Error() + ": "
		if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return msg
}

// Conflict devuelve un ErrConflict con mensaje.
func Conflict(msg string) error {
	return fmt.Errorf("%w: %s", ErrConflict, msg)
}
