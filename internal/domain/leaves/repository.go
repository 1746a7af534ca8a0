package leaves

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id int64) (LeaveRequest, error)
	List(ctx context.Context, ownerAdminID string) ([]LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]LeaveRequest, error)
	// Update solo escribe mientras siga pending; si ya se decidió devuelve ErrConflict.
	Update(ctx context.Context, l LeaveRequest) (LeaveRequest, error)
	Delete(ctx context.Context, id int64) error
	ClaimOwner(ctx context.Context, id int64, adminID string) (string, error)

	// Decide aplica la decisión solo si sigue pending. applied=false => estado actual.
	Decide(ctx context.Context, id int64, to Status, decidedBy string, at time.Time) (LeaveRequest, bool, error)

	// ListPending: pendientes creadas antes de createdBefore, más viejas primero.
	ListPending(ctx context.Context, createdBefore time.Time) ([]LeaveRequest, error)
	// ListApprovedCovering: aprobadas que incluyen day.
	ListApprovedCovering(ctx context.Context, day time.Time) ([]LeaveRequest, error)
}
