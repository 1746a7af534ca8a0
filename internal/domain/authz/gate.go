// Package authz decide si un admin puede modificar un recurso: owner,
// adopción del primer toque o un access request aprobado y vigente.
// Las lecturas nunca pasan por acá.
package authz

import (
	"context"
	"strings"
	"time"

	"hr-portal/internal/domain/accessrequests"
	"hr-portal/internal/domain/apperr"
	"hr-portal/internal/domain/resources"
	"hr-portal/internal/platform/logger"
)

// OwnerStore es la parte del Registry que usa el gate (*resources.Registry la implementa).
type OwnerStore interface {
	ResolveOwner(ctx context.Context, ref resources.Ref) (string, error)
	Adopt(ctx context.Context, ref resources.Ref, adminID string) (string, error)
}

// ApprovalFinder lo implementa *accessrequests.Service.
type ApprovalFinder interface {
	FindActiveApproval(ctx context.Context, requesterAdminID string, ref resources.Ref, now time.Time) (accessrequests.AccessRequest, bool, error)
}

// DelegationPolicy permite que un delegado actúe como el owner.
// *delegations.Service la implementa; el router no la conecta.
type DelegationPolicy interface {
	ActsFor(ctx context.Context, acting, owner string, now time.Time) (bool, error)
}

type Gate struct {
	owners     OwnerStore
	approvals  ApprovalFinder
	delegation DelegationPolicy
	log        logger.Logger
	now        func() time.Time
}

func NewGate(owners OwnerStore, approvals ApprovalFinder, log logger.Logger) *Gate {
	if log == nil {
		log = logger.Nop()
	}
	return &Gate{
		owners:    owners,
		approvals: approvals,
		log:       log.With(map[string]any{"module": "authz"}),
		now:       time.Now,
	}
}

func (g *Gate) WithClock(now func() time.Time) *Gate {
	if now != nil {
		g.now = now
	}
	return g
}

func (g *Gate) WithDelegationPolicy(p DelegationPolicy) *Gate {
	g.delegation = p
	return g
}

// EnsureEditAccess devuelve nil si acting puede modificar ref.
func (g *Gate) EnsureEditAccess(ctx context.Context, ref resources.Ref, acting string) error {
	acting = strings.TrimSpace(acting)
	if acting == "" {
		return apperr.Forbidden("admin id required")
	}

	owner, err := g.owners.ResolveOwner(ctx, ref)
	if err != nil {
		return err
	}

	if owner == "" {
		// Primer toque: update condicional, gana un solo admin.
		owner, err = g.owners.Adopt(ctx, ref, acting)
		if err != nil {
			return err
		}
		if resources.SameAdmin(owner, acting) {
			g.log.Info("resource adopted", map[string]any{"resource": ref.String(), "owner": acting})
			return nil
		}
	}

	if resources.SameAdmin(owner, acting) {
		return nil
	}

	now := g.now()

	if _, ok, err := g.approvals.FindActiveApproval(ctx, acting, ref, now); err != nil {
		return err
	} else if ok {
		return nil
	}

	if g.delegation != nil {
		ok, err := g.delegation.ActsFor(ctx, acting, owner, now)
		if err != nil {
			return err
		}
		if ok {
			g.log.Debug("edit allowed by delegation", map[string]any{"resource": ref.String(), "acting": acting, "owner": owner})
			return nil
		}
	}

	return apperr.Forbidden("no access to modify this resource")
}
