package employees

import "context"

type Repository interface {
	// Create asigna ID. Email duplicado => apperr.ErrConflict.
	Create(ctx context.Context, e Employee) (Employee, error)
	GetByID(ctx context.Context, id int64) (Employee, error)
	List(ctx context.Context, ownerAdminID string) ([]Employee, error)
	// Update: email duplicado => apperr.ErrConflict.
	Update(ctx context.Context, e Employee) (Employee, error)
	Delete(ctx context.Context, id int64) error

	ClaimOwner(ctx context.Context, id int64, adminID string) (string, error)

	// SetStatus cambia el estado solo si sigue en from. applied=false si otro lo cambió antes.
	SetStatus(ctx context.Context, id int64, from, to Status) (bool, error)
}
