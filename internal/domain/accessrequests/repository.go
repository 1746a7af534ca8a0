package accessrequests

import (
	"context"
	"time"

	"hr-portal/internal/domain/resources"
)

type Repository interface {
	// CreatePending inserta r salvo que ya exista un pending para
	// (requester, type, id); en ese caso devuelve el existente y created=false.
	CreatePending(ctx context.Context, r AccessRequest) (AccessRequest, bool, error)

	// Decide aplica la transición solo si el request sigue pending
	// (update condicional). applied=false => devuelve el estado actual.
	// Id desconocido => apperr.ErrNotFound.
	Decide(ctx context.Context, id int64, d Decision) (AccessRequest, bool, error)

	GetByID(ctx context.Context, id int64) (AccessRequest, error)

	// FindActiveApproval: approved && allowed_until > now, el de mayor id.
	FindActiveApproval(ctx context.Context, requesterAdminID string, ref resources.Ref, now time.Time) (AccessRequest, bool, error)
	FindPending(ctx context.Context, requesterAdminID string, ref resources.Ref) (AccessRequest, bool, error)

	// Listados más recientes primero.
	ListByOwner(ctx context.Context, ownerAdminID string) ([]AccessRequest, error)
	ListByRequester(ctx context.Context, requesterAdminID string) ([]AccessRequest, error)
}
