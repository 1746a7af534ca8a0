package accessrequests

import (
	"context"
	"errors"
	"strings"
	"time"

	"hr-portal/internal/domain/apperr"
	"hr-portal/internal/domain/resources"
	"hr-portal/internal/platform/logger"
)

// OwnerResolver es la parte del Resource Registry que usa el workflow.
type OwnerResolver interface {
	ResolveOwner(ctx context.Context, ref resources.Ref) (string, error)
}

type Service struct {
	repo   Repository
	owners OwnerResolver
	log    logger.Logger

	defaultGrant time.Duration
	now          func() time.Time
}

func NewService(repo Repository, owners OwnerResolver, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:         repo,
		owners:       owners,
		log:          log.With(map[string]any{"module": "accessrequests"}),
		defaultGrant: DefaultGrant,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests, router con reloj inyectado).
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// WithDefaultGrant cambia los minutos por defecto de Approve.
func (s *Service) WithDefaultGrant(d time.Duration) *Service {
	if d > 0 {
		s.defaultGrant = d
	}
	return s
}

type CreateInput struct {
	RequesterAdminID string
	ResourceType     string
	ResourceID       string // externo (E-15) o numérico
	Note             string
}

// Create abre un pedido de acceso, o devuelve el que ya esté vigente
// (aprobado sin vencer o pending) para el mismo requester y recurso.
func (s *Service) Create(ctx context.Context, in CreateInput) (AccessRequest, error) {
	r, _, err := s.Submit(ctx, in)
	return r, err
}

// Submit es Create informando si se insertó un pedido nuevo.
func (s *Service) Submit(ctx context.Context, in CreateInput) (AccessRequest, bool, error) {
	requester := strings.TrimSpace(in.RequesterAdminID)
	if requester == "" {
		return AccessRequest{}, false, apperr.Invalid("requester admin id required")
	}
	if strings.TrimSpace(in.ResourceType) == "" || strings.TrimSpace(in.ResourceID) == "" {
		return AccessRequest{}, false, apperr.Invalid("resource type and id required")
	}

	ref, err := resources.ParseRef(in.ResourceType, in.ResourceID)
	if err != nil {
		return AccessRequest{}, false, err
	}

	owner, err := s.owners.ResolveOwner(ctx, ref)
	if err != nil {
		return AccessRequest{}, false, err
	}
	if owner == "" {
		return AccessRequest{}, false, apperr.Invalid("owner not assigned")
	}
	if resources.SameAdmin(owner, requester) {
		return AccessRequest{}, false, apperr.Invalid("already own this resource")
	}

	now := s.now()

	if active, ok, err := s.repo.FindActiveApproval(ctx, requester, ref, now); err != nil {
		return AccessRequest{}, false, err
	} else if ok {
		return active, false, nil
	}

	if pending, ok, err := s.repo.FindPending(ctx, requester, ref); err != nil {
		return AccessRequest{}, false, err
	} else if ok {
		return pending, false, nil
	}

	r := AccessRequest{
		ResourceType:     ref.Type,
		ResourceID:       ref.ID,
		OwnerAdminID:     owner,
		RequesterAdminID: requester,
		Status:           StatusPending,
		Note:             strings.TrimSpace(in.Note),
		RequestedAt:      now,
	}

	// CreatePending colapsa creaciones concurrentes sobre el mismo pending.
	created, isNew, err := s.repo.CreatePending(ctx, r)
	if err != nil {
		return AccessRequest{}, false, err
	}
	if isNew {
		s.log.Info("access request created", map[string]any{
			"request_id": created.ID,
			"resource":   ref.String(),
			"requester":  requester,
			"owner":      owner,
		})
	}
	return created, isNew, nil
}

// Approve aprueba por allowMinutes (<= 0 => default, tope MaxAllowMinutes).
// Si ya estaba decidido devuelve el estado actual sin error.
func (s *Service) Approve(ctx context.Context, id int64, actingOwnerAdminID string, allowMinutes int) (AccessRequest, error) {
	if allowMinutes > MaxAllowMinutes {
		return AccessRequest{}, apperr.Invalid("allow_minutes too large")
	}
	grant := s.defaultGrant
	if allowMinutes > 0 {
		grant = time.Duration(allowMinutes) * time.Minute
	}

	return s.decide(ctx, id, actingOwnerAdminID, func(now time.Time) Decision {
		until := now.Add(grant)
		return Decision{Status: StatusApproved, DecidedAt: now, AllowedUntil: &until}
	})
}

func (s *Service) Deny(ctx context.Context, id int64, actingOwnerAdminID string) (AccessRequest, error) {
	return s.decide(ctx, id, actingOwnerAdminID, func(now time.Time) Decision {
		return Decision{Status: StatusDenied, DecidedAt: now, AllowedUntil: nil}
	})
}

func (s *Service) decide(ctx context.Context, id int64, acting string, build func(now time.Time) Decision) (AccessRequest, error) {
	acting = strings.TrimSpace(acting)

	current, err := s.get(ctx, id)
	if err != nil {
		return AccessRequest{}, err
	}
	if !resources.SameAdmin(current.OwnerAdminID, acting) {
		return AccessRequest{}, apperr.Forbidden("only the resource owner can decide")
	}
	// Idempotente: decidido => se devuelve tal cual.
	if !current.IsPending() {
		return current, nil
	}

	d := build(s.now())
	updated, applied, err := s.repo.Decide(ctx, id, d)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return AccessRequest{}, apperr.NotFound("access request")
		}
		return AccessRequest{}, err
	}

	fields := map[string]any{
		"request_id": updated.ID,
		"resource":   updated.Ref().String(),
		"status":     string(updated.Status),
		"owner":      acting,
	}
	if applied {
		if updated.AllowedUntil != nil {
			fields["allowed_until"] = updated.AllowedUntil.UTC().Format(time.RFC3339)
		}
		s.log.Info("access request decided", fields)
	} else {
		// Otra llamada concurrente ganó la transición.
		s.log.Debug("access request already decided", fields)
	}
	return updated, nil
}

// Get devuelve el request si acting es owner o requester.
func (s *Service) Get(ctx context.Context, id int64, acting string) (AccessRequest, error) {
	r, err := s.get(ctx, id)
	if err != nil {
		return AccessRequest{}, err
	}
	if !resources.SameAdmin(r.OwnerAdminID, acting) && !resources.SameAdmin(r.RequesterAdminID, acting) {
		return AccessRequest{}, apperr.Forbidden("not a party of this access request")
	}
	return r, nil
}

func (s *Service) get(ctx context.Context, id int64) (AccessRequest, error) {
	if id <= 0 {
		return AccessRequest{}, apperr.NotFound("access request")
	}
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return AccessRequest{}, apperr.NotFound("access request")
		}
		return AccessRequest{}, err
	}
	return r, nil
}

// Inbox: pedidos dirigidos a ownerAdminID, más recientes primero.
func (s *Service) Inbox(ctx context.Context, ownerAdminID string) ([]AccessRequest, error) {
	ownerAdminID = strings.TrimSpace(ownerAdminID)
	if ownerAdminID == "" {
		return nil, apperr.Invalid("admin id required")
	}
	return s.repo.ListByOwner(ctx, ownerAdminID)
}

// Outbox: pedidos hechos por requesterAdminID, más recientes primero.
func (s *Service) Outbox(ctx context.Context, requesterAdminID string) ([]AccessRequest, error) {
	requesterAdminID = strings.TrimSpace(requesterAdminID)
	if requesterAdminID == "" {
		return nil, apperr.Invalid("admin id required")
	}
	return s.repo.ListByRequester(ctx, requesterAdminID)
}

// FindActiveApproval es la consulta que usa el Authorization Gate.
func (s *Service) FindActiveApproval(ctx context.Context, requesterAdminID string, ref resources.Ref, now time.Time) (AccessRequest, bool, error) {
	requesterAdminID = strings.TrimSpace(requesterAdminID)
	if requesterAdminID == "" {
		return AccessRequest{}, false, nil
	}
	return s.repo.FindActiveApproval(ctx, requesterAdminID, ref, now)
}

// Now expone el reloj del servicio (los handlers lo usan para calcular "active").
func (s *Service) Now() time.Time {
	return s.now()
}
