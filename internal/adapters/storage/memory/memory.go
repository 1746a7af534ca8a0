// Package memory implementa los repositorios en memoria (tests, desarrollo sin DB_DSN).
package memory

import (
	"strings"

	"hr-portal/internal/domain/apperr"
)

// ErrNotFound es el sentinel de dominio: los servicios lo reconocen con errors.Is.
var ErrNotFound = apperr.ErrNotFound

func sameAdmin(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ownerMatches: filtro "" = todos.
func ownerMatches(owner, filter string) bool {
	return filter == "" || sameAdmin(owner, filter)
}
