package departments

import "context"

type Repository interface {
	// Create asigna ID.
	Create(ctx context.Context, d Department) (Department, error)
	GetByID(ctx context.Context, id int64) (Department, error)
	// List filtra por owner ("" = todos), orden por id.
	List(ctx context.Context, ownerAdminID string) ([]Department, error)
	Update(ctx context.Context, d Department) (Department, error)
	Delete(ctx context.Context, id int64) error

	// ClaimOwner setea owner solo si está vacío; devuelve el owner efectivo.
	ClaimOwner(ctx context.Context, id int64, adminID string) (string, error)
}
