package employees

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"hr-portal/internal/domain/apperr"
	"hr-portal/internal/domain/resources"
	"hr-portal/internal/platform/logger"
)

type Authorizer interface {
	EnsureEditAccess(ctx context.Context, ref resources.Ref, acting string) error
}

type Service struct {
	repo  Repository
	authz Authorizer
	log   logger.Logger
	now   func() time.Time
}

func NewService(repo Repository, authz Authorizer, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:  repo,
		authz: authz,
		log:   log.With(map[string]any{"module": "employees"}),
		now:   time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

type CreateInput struct {
	FirstName    string
	LastName     string
	Email        string
	Position     string
	DepartmentID *int64
	HireDate     *time.Time
}

func (s *Service) Create(ctx context.Context, acting string, in CreateInput) (Employee, error) {
	acting = strings.TrimSpace(acting)
	if acting == "" {
		return Employee{}, apperr.Invalid("admin id required")
	}
	first := strings.TrimSpace(in.FirstName)
	if first == "" {
		return Employee{}, apperr.Invalid("first_name required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return Employee{}, err
	}

	now := s.now()
	e, err := s.repo.Create(ctx, Employee{
		FirstName:    first,
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		Position:     strings.TrimSpace(in.Position),
		DepartmentID: in.DepartmentID,
		HireDate:     in.HireDate,
		Status:       StatusActive,
		OwnerAdminID: acting,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Employee{}, err
	}
	s.log.Info("employee created", map[string]any{"employee": resources.Encode(resources.TypeEmployee, e.ID), "owner": acting})
	return e, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Employee, error) {
	return s.repo.GetByID(ctx, id)
}

// Exists lo usa leaves para validar el employee de un pedido.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (s *Service) List(ctx context.Context, acting string, scope resources.Scope) ([]Employee, error) {
	if scope == resources.ScopeMine && strings.TrimSpace(acting) == "" {
		return nil, apperr.Invalid("admin id required for scope mine")
	}
	return s.repo.List(ctx, resources.OwnerFilter(scope, acting))
}

type UpdateInput struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Position     *string
	DepartmentID *int64
	Status       *Status
}

func (s *Service) Update(ctx context.Context, id int64, acting string, in UpdateInput) (Employee, error) {
	if err := s.authz.EnsureEditAccess(ctx, ref(id), acting); err != nil {
		return Employee{}, err
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Employee{}, err
	}

	if in.FirstName != nil {
		v := strings.TrimSpace(*in.FirstName)
		if v == "" {
			return Employee{}, apperr.Invalid("first_name cannot be empty")
		}
		e.FirstName = v
	}
	if in.LastName != nil {
		e.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return Employee{}, err
		}
		e.Email = email
	}
	if in.Position != nil {
		e.Position = strings.TrimSpace(*in.Position)
	}
	if in.DepartmentID != nil {
		e.DepartmentID = in.DepartmentID
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return Employee{}, apperr.Invalid("status must be active, on_leave or terminated")
		}
		e.Status = *in.Status
	}
	e.UpdatedAt = s.now()

	return s.repo.Update(ctx, e)
}

func (s *Service) Delete(ctx context.Context, id int64, acting string) error {
	if err := s.authz.EnsureEditAccess(ctx, ref(id), acting); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("employee deleted", map[string]any{"employee": resources.Encode(resources.TypeEmployee, id), "by": acting})
	return nil
}

// Snapshot devuelve todos los empleados (lo usa el sync de licencias).
func (s *Service) Snapshot(ctx context.Context) ([]Employee, error) {
	return s.repo.List(ctx, "")
}

// SyncStatus es la transición del sync de licencias: condicional sobre from,
// nunca toca terminated.
func (s *Service) SyncStatus(ctx context.Context, id int64, from, to Status) (bool, error) {
	if from == StatusTerminated || to == StatusTerminated || from == to {
		return false, nil
	}
	applied, err := s.repo.SetStatus(ctx, id, from, to)
	if err != nil {
		return false, err
	}
	if applied {
		s.log.Info("employee status synced", map[string]any{
			"employee": resources.Encode(resources.TypeEmployee, id),
			"from":     string(from),
			"to":       string(to),
		})
	}
	return applied, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperr.Invalid("email required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperr.Invalid("invalid email")
	}
	return email, nil
}

func ref(id int64) resources.Ref {
	return resources.Ref{Type: resources.TypeEmployee, ID: id}
}
