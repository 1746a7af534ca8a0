package delegations

import (
	"context"
	"time"
)

type Repository interface {
	// Create asigna ID y devuelve la delegación persistida.
	Create(ctx context.Context, d Delegation) (Delegation, error)

	// Revoke marca revoked solo si sigue active (update condicional).
	// applied=false => devuelve el estado actual. Id desconocido => apperr.ErrNotFound.
	Revoke(ctx context.Context, id int64, at time.Time) (Delegation, bool, error)

	GetByID(ctx context.Context, id int64) (Delegation, error)

	// ListActiveTo: to = admin, active y start <= now < end.
	ListActiveTo(ctx context.Context, toAdminID string, now time.Time) ([]Delegation, error)

	// Historiales completos, más recientes primero.
	ListByFrom(ctx context.Context, fromAdminID string) ([]Delegation, error)
	ListByTo(ctx context.Context, toAdminID string) ([]Delegation, error)
}
