package delegations

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"hr-portal/internal/domain/apperr"
	"hr-portal/internal/domain/resources"
	"hr-portal/internal/platform/logger"
)

type Service struct {
	repo Repository
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		log:  log.With(map[string]any{"module": "delegations"}),
		now:  time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Service) Now() time.Time {
	return s.now()
}

type CreateInput struct {
	FromAdminID string
	ToAdminID   string
	StartDate   time.Time
	EndDate     time.Time
	Reason      string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Delegation, error) {
	from := strings.TrimSpace(in.FromAdminID)
	to := strings.TrimSpace(in.ToAdminID)

	if from == "" {
		return Delegation{}, apperr.Invalid("from admin id required")
	}
	if to == "" {
		return Delegation{}, apperr.Invalid("to admin id required")
	}
	if resources.SameAdmin(from, to) {
		return Delegation{}, apperr.Invalid("cannot delegate to yourself")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return Delegation{}, apperr.Invalid("start and end date required")
	}
	if !in.EndDate.After(in.StartDate) {
		return Delegation{}, apperr.Invalid("end date must be after start date")
	}

	d := Delegation{
		FromAdminID: from,
		ToAdminID:   to,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Status:      StatusActive,
		Reason:      strings.TrimSpace(in.Reason),
		CreatedAt:   s.now(),
	}

	created, err := s.repo.Create(ctx, d)
	if err != nil {
		return Delegation{}, err
	}

	s.log.Info("delegation created", map[string]any{
		"delegation_id": created.ID,
		"from":          from,
		"to":            to,
		"start":         created.StartDate.UTC().Format(time.RFC3339),
		"end":           created.EndDate.UTC().Format(time.RFC3339),
	})
	return created, nil
}

// Revoke solo lo puede hacer quien delegó. Revocar dos veces devuelve la misma delegación.
func (s *Service) Revoke(ctx context.Context, id int64, acting string) (Delegation, error) {
	acting = strings.TrimSpace(acting)

	d, err := s.get(ctx, id)
	if err != nil {
		return Delegation{}, err
	}
	if !resources.SameAdmin(d.FromAdminID, acting) {
		return Delegation{}, apperr.Forbidden("only the delegating admin can revoke")
	}

	// Idempotente
	if d.Status == StatusRevoked {
		return d, nil
	}

	updated, applied, err := s.repo.Revoke(ctx, id, s.now())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Delegation{}, apperr.NotFound("delegation")
		}
		return Delegation{}, err
	}
	if applied {
		s.log.Info("delegation revoked", map[string]any{
			"delegation_id": updated.ID,
			"from":          updated.FromAdminID,
			"to":            updated.ToAdminID,
		})
	}
	return updated, nil
}

func (s *Service) get(ctx context.Context, id int64) (Delegation, error) {
	if id <= 0 {
		return Delegation{}, apperr.NotFound("delegation")
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Delegation{}, apperr.NotFound("delegation")
		}
		return Delegation{}, err
	}
	return d, nil
}

// ActiveDelegationsTo: delegaciones vigentes hacia admin en now.
func (s *Service) ActiveDelegationsTo(ctx context.Context, admin string, now time.Time) ([]Delegation, error) {
	admin = strings.TrimSpace(admin)
	if admin == "" {
		return nil, apperr.Invalid("admin id required")
	}
	return s.repo.ListActiveTo(ctx, admin, now)
}

// DelegatorsOf: ids distintos de quienes delegan hoy en admin.
func (s *Service) DelegatorsOf(ctx context.Context, admin string, now time.Time) ([]string, error) {
	active, err := s.ActiveDelegationsTo(ctx, admin, now)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(active))
	out := make([]string, 0, len(active))
	for _, d := range active {
		key := strings.ToLower(d.FromAdminID)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d.FromAdminID)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Service) MyDelegations(ctx context.Context, from string) ([]Delegation, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, apperr.Invalid("admin id required")
	}
	return s.repo.ListByFrom(ctx, from)
}

func (s *Service) DelegationsToMe(ctx context.Context, to string) ([]Delegation, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return nil, apperr.Invalid("admin id required")
	}
	return s.repo.ListByTo(ctx, to)
}

// ActsFor indica si acting puede actuar en nombre de owner en now.
// Es la política de delegación que acepta authz.Gate.
func (s *Service) ActsFor(ctx context.Context, acting, owner string, now time.Time) (bool, error) {
	if strings.TrimSpace(acting) == "" || strings.TrimSpace(owner) == "" {
		return false, nil
	}
	delegators, err := s.DelegatorsOf(ctx, acting, now)
	if err != nil {
		return false, err
	}
	for _, from := range delegators {
		if resources.SameAdmin(from, owner) {
			return true, nil
		}
	}
	return false, nil
}
