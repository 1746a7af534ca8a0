package leaves

import (
	"context"
	"errors"
	"strings"
	"time"

	"hr-portal/internal/domain/apperr"
	"hr-portal/internal/domain/resources"
	"hr-portal/internal/platform/logger"
)

type Authorizer interface {
	EnsureEditAccess(ctx context.Context, ref resources.Ref, acting string) error
}

// EmployeeChecker evita importar employees (lo implementa *employees.Service).
type EmployeeChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Approver aplica una decisión sobre un pedido pending. Lo usan tanto el
// flujo humano (después del gate) como el manager simulado.
type Approver interface {
	Decide(ctx context.Context, id int64, to Status, decidedBy string) (LeaveRequest, bool, error)
}

type Service struct {
	repo      Repository
	employees EmployeeChecker
	authz     Authorizer
	log       logger.Logger
	now       func() time.Time
}

var _ Approver = (*Service)(nil)

func NewService(repo Repository, employees EmployeeChecker, authz Authorizer, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:      repo,
		employees: employees,
		authz:     authz,
		log:       log.With(map[string]any{"module": "leaves"}),
		now:       time.Now,
	}
}

type CreateInput struct {
	EmployeeID int64
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
}

// Create: acting vacío => pedido sin owner (autoservicio del empleado).
func (s *Service) Create(ctx context.Context, acting string, in CreateInput) (LeaveRequest, error) {
	if in.EmployeeID <= 0 {
		return LeaveRequest{}, apperr.Invalid("employee_id required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return LeaveRequest{}, apperr.Invalid("start and end date required")
	}
	if dateOnly(in.EndDate).Before(dateOnly(in.StartDate)) {
		return LeaveRequest{}, apperr.Invalid("end date must not be before start date")
	}

	ok, err := s.employees.Exists(ctx, in.EmployeeID)
	if err != nil {
		return LeaveRequest{}, err
	}
	if !ok {
		return LeaveRequest{}, apperr.NotFound("employee " + resources.Encode(resources.TypeEmployee, in.EmployeeID))
	}

	now := s.now()
	l, err := s.repo.Create(ctx, LeaveRequest{
		EmployeeID:   in.EmployeeID,
		StartDate:    dateOnly(in.StartDate),
		EndDate:      dateOnly(in.EndDate),
		Reason:       strings.TrimSpace(in.Reason),
		Status:       StatusPending,
		OwnerAdminID: strings.TrimSpace(acting),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return LeaveRequest{}, err
	}
	s.log.Info("leave request created", map[string]any{
		"leave":    resources.Encode(resources.TypeLeaveRequest, l.ID),
		"employee": resources.Encode(resources.TypeEmployee, l.EmployeeID),
	})
	return l, nil
}

func (s *Service) Get(ctx context.Context, id int64) (LeaveRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, acting string, scope resources.Scope) ([]LeaveRequest, error) {
	if scope == resources.ScopeMine && strings.TrimSpace(acting) == "" {
		return nil, apperr.Invalid("admin id required for scope mine")
	}
	return s.repo.List(ctx, resources.OwnerFilter(scope, acting))
}

func (s *Service) ListByEmployee(ctx context.Context, employeeID int64) ([]LeaveRequest, error) {
	ok, err := s.employees.Exists(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("employee " + resources.Encode(resources.TypeEmployee, employeeID))
	}
	return s.repo.ListByEmployee(ctx, employeeID)
}

type UpdateInput struct {
	StartDate *time.Time
	EndDate   *time.Time
	Reason    *string
}

// Update solo mientras está pending.
func (s *Service) Update(ctx context.Context, id int64, acting string, in UpdateInput) (LeaveRequest, error) {
	if err := s.authz.EnsureEditAccess(ctx, ref(id), acting); err != nil {
		return LeaveRequest{}, err
	}
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return LeaveRequest{}, err
	}
	if !l.IsPending() {
		return LeaveRequest{}, apperr.Conflict("leave request already decided")
	}
	if in.StartDate != nil {
		l.StartDate = dateOnly(*in.StartDate)
	}
	if in.EndDate != nil {
		l.EndDate = dateOnly(*in.EndDate)
	}
	if l.EndDate.Before(l.StartDate) {
		return LeaveRequest{}, apperr.Invalid("end date must not be before start date")
	}
	if in.Reason != nil {
		l.Reason = strings.TrimSpace(*in.Reason)
	}
	l.UpdatedAt = s.now()
	return s.repo.Update(ctx, l)
}

func (s *Service) Delete(ctx context.Context, id int64, acting string) error {
	if err := s.authz.EnsureEditAccess(ctx, ref(id), acting); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("leave request deleted", map[string]any{"leave": resources.Encode(resources.TypeLeaveRequest, id), "by": acting})
	return nil
}

// Approve y Reject son la decisión humana: pasan por el gate.
func (s *Service) Approve(ctx context.Context, id int64, acting string) (LeaveRequest, error) {
	return s.decideAs(ctx, id, acting, StatusApproved)
}

func (s *Service) Reject(ctx context.Context, id int64, acting string) (LeaveRequest, error) {
	return s.decideAs(ctx, id, acting, StatusRejected)
}

func (s *Service) decideAs(ctx context.Context, id int64, acting string, to Status) (LeaveRequest, error) {
	if err := s.authz.EnsureEditAccess(ctx, ref(id), acting); err != nil {
		return LeaveRequest{}, err
	}
	l, _, err := s.Decide(ctx, id, to, acting)
	return l, err
}

// Decide implementa Approver. Decidir algo ya decidido devuelve el estado actual.
func (s *Service) Decide(ctx context.Context, id int64, to Status, decidedBy string) (LeaveRequest, bool, error) {
	if to != StatusApproved && to != StatusRejected {
		return LeaveRequest{}, false, apperr.Invalid("decision must be approved or rejected")
	}
	decidedBy = strings.TrimSpace(decidedBy)
	if decidedBy == "" {
		return LeaveRequest{}, false, apperr.Invalid("decided by required")
	}

	l, applied, err := s.repo.Decide(ctx, id, to, decidedBy, s.now())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return LeaveRequest{}, false, apperr.NotFound("leave request " + resources.Encode(resources.TypeLeaveRequest, id))
		}
		return LeaveRequest{}, false, err
	}

	fields := map[string]any{
		"leave":    resources.Encode(resources.TypeLeaveRequest, id),
		"employee": resources.Encode(resources.TypeEmployee, l.EmployeeID),
		"status":   string(l.Status),
		"by":       decidedBy,
	}
	if applied {
		s.log.Info("leave request decided", fields)
	} else {
		s.log.Debug("leave request already decided", fields)
	}
	return l, applied, nil
}

// PendingOlderThan: snapshot para el manager simulado.
func (s *Service) PendingOlderThan(ctx context.Context, age time.Duration) ([]LeaveRequest, error) {
	return s.repo.ListPending(ctx, s.now().Add(-age))
}

// ApprovedCovering: snapshot para el sync de estados de empleados.
func (s *Service) ApprovedCovering(ctx context.Context, day time.Time) ([]LeaveRequest, error) {
	return s.repo.ListApprovedCovering(ctx, dateOnly(day))
}

func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

func ref(id int64) resources.Ref {
	return resources.Ref{Type: resources.TypeLeaveRequest, ID: id}
}
