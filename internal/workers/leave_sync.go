package workers

import (
	"context"
	"errors"
	"time"

	"hr-portal/internal/domain/apperr"
	"hr-portal/internal/domain/employees"
	"hr-portal/internal/domain/leaves"
	"hr-portal/internal/domain/resources"
	"hr-portal/internal/platform/logger"
)

// EmployeeStatuses lo implementa *employees.Service.
type EmployeeStatuses interface {
	Snapshot(ctx context.Context) ([]employees.Employee, error)
	Get(ctx context.Context, id int64) (employees.Employee, error)
	SyncStatus(ctx context.Context, id int64, from, to employees.Status) (bool, error)
}

// LeaveCalendar lo implementa *leaves.Service.
type LeaveCalendar interface {
	ApprovedCovering(ctx context.Context, day time.Time) ([]leaves.LeaveRequest, error)
	Now() time.Time
}

// LeaveStatusSync pone on_leave a quien tiene una licencia aprobada que cubre hoy
// y devuelve a active al resto de los on_leave. Nunca toca terminated.
type LeaveStatusSync struct {
	employees EmployeeStatuses
	leaves    LeaveCalendar
	log       logger.Logger
}

func NewLeaveStatusSync(emps EmployeeStatuses, cal LeaveCalendar, log logger.Logger) *LeaveStatusSync {
	if log == nil {
		log = logger.Nop()
	}
	return &LeaveStatusSync{
		employees: emps,
		leaves:    cal,
		log:       log.With(map[string]any{"module": "workers", "worker": "leave-status-sync"}),
	}
}

func (s *LeaveStatusSync) RunOnce(ctx context.Context) error {
	_, err := s.Sync(ctx)
	return err
}

// Sync devuelve cuántos empleados cambiaron de estado.
func (s *LeaveStatusSync) Sync(ctx context.Context) (int, error) {
	today := s.leaves.Now()

	covering, err := s.leaves.ApprovedCovering(ctx, today)
	if err != nil {
		return 0, err
	}
	onLeave := make(map[int64]bool, len(covering))
	for _, l := range covering {
		onLeave[l.EmployeeID] = true
	}

	snapshot, err := s.employees.Snapshot(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, e := range snapshot {
		if ctx.Err() != nil {
			return changed, ctx.Err()
		}
		if target(e.Status, onLeave[e.ID]) == e.Status {
			continue
		}

		// El snapshot puede estar viejo: releemos antes de escribir.
		current, err := s.employees.Get(ctx, e.ID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				continue
			}
			return changed, err
		}
		want := target(current.Status, onLeave[current.ID])
		if want == current.Status {
			continue
		}

		applied, err := s.employees.SyncStatus(ctx, current.ID, current.Status, want)
		if err != nil {
			return changed, err
		}
		if applied {
			changed++
		} else {
			s.log.Debug("employee status changed concurrently", map[string]any{
				"employee": resources.Encode(resources.TypeEmployee, current.ID),
			})
		}
	}
	return changed, nil
}

func target(status employees.Status, covered bool) employees.Status {
	switch {
	case status == employees.StatusTerminated:
		return status
	case covered:
		return employees.StatusOnLeave
	case status == employees.StatusOnLeave:
		return employees.StatusActive
	default:
		return status
	}
}
