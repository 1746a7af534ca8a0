package recruitment

import (
	"context"
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
	candidates   CandidateRepository
	applications ApplicationRepository
	authz        Authorizer
	log          logger.Logger
	now          func() time.Time
}

func NewService(candidates CandidateRepository, applications ApplicationRepository, authz Authorizer, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		candidates:   candidates,
		applications: applications,
		authz:        authz,
		log:          log.With(map[string]any{"module": "recruitment"}),
		now:          time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// -------------------------
// Candidates
// -------------------------

type CandidateInput struct {
	FullName string
	Email    string
	Phone    string
	Notes    string
}

// CreateCandidate: acting puede venir vacío (postulación pública, queda sin owner).
func (s *Service) CreateCandidate(ctx context.Context, acting string, in CandidateInput) (Candidate, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return Candidate{}, apperr.Invalid("full_name required")
	}

	now := s.now()
	c, err := s.candidates.Create(ctx, Candidate{
		FullName:     name,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:        strings.TrimSpace(in.Phone),
		Notes:        strings.TrimSpace(in.Notes),
		OwnerAdminID: strings.TrimSpace(acting),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Candidate{}, err
	}
	s.log.Info("candidate created", map[string]any{"candidate": resources.Encode(resources.TypeCandidate, c.ID), "owner": c.OwnerAdminID})
	return c, nil
}

func (s *Service) GetCandidate(ctx context.Context, id int64) (Candidate, error) {
	return s.candidates.GetByID(ctx, id)
}

func (s *Service) ListCandidates(ctx context.Context, acting string, scope resources.Scope) ([]Candidate, error) {
	if scope == resources.ScopeMine && strings.TrimSpace(acting) == "" {
		return nil, apperr.Invalid("admin id required for scope mine")
	}
	return s.candidates.List(ctx, resources.OwnerFilter(scope, acting))
}

type CandidatePatch struct {
	FullName *string
	Email    *string
	Phone    *string
	Notes    *string
}

func (s *Service) UpdateCandidate(ctx context.Context, id int64, acting string, in CandidatePatch) (Candidate, error) {
	if err := s.authz.EnsureEditAccess(ctx, candidateRef(id), acting); err != nil {
		return Candidate{}, err
	}
	c, err := s.candidates.GetByID(ctx, id)
	if err != nil {
		return Candidate{}, err
	}
	if in.FullName != nil {
		v := strings.TrimSpace(*in.FullName)
		if v == "" {
			return Candidate{}, apperr.Invalid("full_name cannot be empty")
		}
		c.FullName = v
	}
	if in.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Notes != nil {
		c.Notes = strings.TrimSpace(*in.Notes)
	}
	c.UpdatedAt = s.now()
	return s.candidates.Update(ctx, c)
}

// DeleteCandidate falla con conflict si todavía tiene postulaciones.
func (s *Service) DeleteCandidate(ctx context.Context, id int64, acting string) error {
	if err := s.authz.EnsureEditAccess(ctx, candidateRef(id), acting); err != nil {
		return err
	}
	apps, err := s.applications.ListByCandidate(ctx, id)
	if err != nil {
		return err
	}
	if len(apps) > 0 {
		return apperr.Conflict("candidate has job applications")
	}
	if err := s.candidates.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("candidate deleted", map[string]any{"candidate": resources.Encode(resources.TypeCandidate, id), "by": acting})
	return nil
}

// -------------------------
// Job applications
// -------------------------

type ApplicationInput struct {
	CandidateID int64
	Position    string
	Notes       string
}

func (s *Service) CreateApplication(ctx context.Context, acting string, in ApplicationInput) (JobApplication, error) {
	position := strings.TrimSpace(in.Position)
	if position == "" {
		return JobApplication{}, apperr.Invalid("position required")
	}
	if in.CandidateID <= 0 {
		return JobApplication{}, apperr.Invalid("candidate_id required")
	}
	if _, err := s.candidates.GetByID(ctx, in.CandidateID); err != nil {
		return JobApplication{}, err
	}

	now := s.now()
	a, err := s.applications.Create(ctx, JobApplication{
		CandidateID:  in.CandidateID,
		Position:     position,
		Status:       StatusSubmitted,
		Notes:        strings.TrimSpace(in.Notes),
		OwnerAdminID: strings.TrimSpace(acting),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return JobApplication{}, err
	}
	s.log.Info("job application created", map[string]any{
		"application": resources.Encode(resources.TypeJobApplication, a.ID),
		"candidate":   resources.Encode(resources.TypeCandidate, a.CandidateID),
	})
	return a, nil
}

func (s *Service) GetApplication(ctx context.Context, id int64) (JobApplication, error) {
	return s.applications.GetByID(ctx, id)
}

func (s *Service) ListApplications(ctx context.Context, acting string, scope resources.Scope) ([]JobApplication, error) {
	if scope == resources.ScopeMine && strings.TrimSpace(acting) == "" {
		return nil, apperr.Invalid("admin id required for scope mine")
	}
	return s.applications.List(ctx, resources.OwnerFilter(scope, acting))
}

type ApplicationPatch struct {
	Position *string
	Notes    *string
}

func (s *Service) UpdateApplication(ctx context.Context, id int64, acting string, in ApplicationPatch) (JobApplication, error) {
	if err := s.authz.EnsureEditAccess(ctx, applicationRef(id), acting); err != nil {
		return JobApplication{}, err
	}
	a, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return JobApplication{}, err
	}
	if in.Position != nil {
		v := strings.TrimSpace(*in.Position)
		if v == "" {
			return JobApplication{}, apperr.Invalid("position cannot be empty")
		}
		a.Position = v
	}
	if in.Notes != nil {
		a.Notes = strings.TrimSpace(*in.Notes)
	}
	a.UpdatedAt = s.now()
	return s.applications.Update(ctx, a)
}

// ChangeStatus mueve la postulación por el pipeline. Repetir el estado actual no es error.
func (s *Service) ChangeStatus(ctx context.Context, id int64, acting string, to ApplicationStatus) (JobApplication, error) {
	if !to.Valid() {
		return JobApplication{}, apperr.Invalid("unknown application status")
	}
	if err := s.authz.EnsureEditAccess(ctx, applicationRef(id), acting); err != nil {
		return JobApplication{}, err
	}

	current, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return JobApplication{}, err
	}
	if current.Status == to {
		return current, nil
	}
	if !current.Status.CanMoveTo(to) {
		return JobApplication{}, apperr.Conflict("cannot move application from " + string(current.Status) + " to " + string(to))
	}

	updated, applied, err := s.applications.SetStatus(ctx, id, current.Status, to, s.now())
	if err != nil {
		return JobApplication{}, err
	}
	if !applied {
		// Alguien la movió entre el read y el update.
		if updated.Status == to {
			return updated, nil
		}
		return JobApplication{}, apperr.Conflict("application status changed concurrently")
	}

	s.log.Info("job application status changed", map[string]any{
		"application": resources.Encode(resources.TypeJobApplication, id),
		"from":        string(current.Status),
		"to":          string(to),
		"by":          acting,
	})
	return updated, nil
}

func (s *Service) DeleteApplication(ctx context.Context, id int64, acting string) error {
	if err := s.authz.EnsureEditAccess(ctx, applicationRef(id), acting); err != nil {
		return err
	}
	if err := s.applications.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("job application deleted", map[string]any{"application": resources.Encode(resources.TypeJobApplication, id), "by": acting})
	return nil
}

func candidateRef(id int64) resources.Ref {
	return resources.Ref{Type: resources.TypeCandidate, ID: id}
}

func applicationRef(id int64) resources.Ref {
	return resources.Ref{Type: resources.TypeJobApplication, ID: id}
}
