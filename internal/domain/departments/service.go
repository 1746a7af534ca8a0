package departments

import (
	"context"
	"strings"
	"time"

	"hr-portal/internal/domain/apperr"
	"hr-portal/internal/domain/resources"
	"hr-portal/internal/platform/logger"
)

// Authorizer es el gate de edición (authz.Gate).
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
		log:   log.With(map[string]any{"module": "departments"}),
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
	Name        string
	Description string
}

// Create deja como owner al admin que crea.
func (s *Service) Create(ctx context.Context, acting string, in CreateInput) (Department, error) {
	acting = strings.TrimSpace(acting)
	if acting == "" {
		return Department{}, apperr.Invalid("admin id required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Department{}, apperr.Invalid("name required")
	}

	now := s.now()
	d, err := s.repo.Create(ctx, Department{
		Name:         name,
		Description:  strings.TrimSpace(in.Description),
		OwnerAdminID: acting,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Department{}, err
	}
	s.log.Info("department created", map[string]any{"department": resources.Encode(resources.TypeDepartment, d.ID), "owner": acting})
	return d, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Department, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, acting string, scope resources.Scope) ([]Department, error) {
	if scope == resources.ScopeMine && strings.TrimSpace(acting) == "" {
		return nil, apperr.Invalid("admin id required for scope mine")
	}
	return s.repo.List(ctx, resources.OwnerFilter(scope, acting))
}

// UpdateInput: nil = no tocar.
type UpdateInput struct {
	Name        *string
	Description *string
}

func (s *Service) Update(ctx context.Context, id int64, acting string, in UpdateInput) (Department, error) {
	if err := s.authz.EnsureEditAccess(ctx, ref(id), acting); err != nil {
		return Department{}, err
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Department{}, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Department{}, apperr.Invalid("name cannot be empty")
		}
		d.Name = name
	}
	if in.Description != nil {
		d.Description = strings.TrimSpace(*in.Description)
	}
	d.UpdatedAt = s.now()

	return s.repo.Update(ctx, d)
}

func (s *Service) Delete(ctx context.Context, id int64, acting string) error {
	if err := s.authz.EnsureEditAccess(ctx, ref(id), acting); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("department deleted", map[string]any{"department": resources.Encode(resources.TypeDepartment, id), "by": acting})
	return nil
}

func ref(id int64) resources.Ref {
	return resources.Ref{Type: resources.TypeDepartment, ID: id}
}
