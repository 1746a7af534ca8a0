package resources

import (
	"context"
	"errors"
	"strings"
	"sync"

	"hr-portal/internal/domain/apperr"
)

// Locator es lo único que el core necesita de cada entidad dueña de recursos.
// Cada módulo (departments, employees, ...) registra su implementación;
// así ningún componente del core hace switch por tipo.
type Locator interface {
	// OwnerOf devuelve el owner ("" si todavía no tiene).
	// Debe devolver apperr.ErrNotFound si el recurso no existe.
	OwnerOf(ctx context.Context, id int64) (string, error)

	// ClaimOwner asigna adminID como owner solo si el recurso no tiene owner
	// (update condicional). Devuelve el owner efectivo después del intento.
	ClaimOwner(ctx context.Context, id int64, adminID string) (string, error)
}

type Registry struct {
	mu     sync.RWMutex
	byType map[Type]Locator
}

func NewRegistry() *Registry {
	return &Registry{byType: make(map[Type]Locator)}
}

// Register asocia un Locator al tipo. Registrar un tipo fuera del enum es un bug de wiring.
func (r *Registry) Register(t Type, l Locator) {
	if !t.Valid() {
		panic("resources: register unknown type " + string(t))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[t] = l
}

func (r *Registry) locator(t Type) (Locator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byType[t]
	return l, ok
}

// ResolveOwner devuelve el owner del recurso o apperr.ErrNotFound.
func (r *Registry) ResolveOwner(ctx context.Context, ref Ref) (string, error) {
	l, ok := r.locator(ref.Type)
	if !ok {
		return "", apperr.NotFound("resource " + ref.String())
	}
	owner, err := l.OwnerOf(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.NotFound("resource " + ref.String())
		}
		return "", err
	}
	return strings.TrimSpace(owner), nil
}

func (r *Registry) Exists(ctx context.Context, ref Ref) (bool, error) {
	_, err := r.ResolveOwner(ctx, ref)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Adopt intenta que adminID quede como owner de un recurso sin owner.
// Devuelve el owner efectivo: adminID si ganó, o el admin que llegó antes.
func (r *Registry) Adopt(ctx context.Context, ref Ref, adminID string) (string, error) {
	l, ok := r.locator(ref.Type)
	if !ok {
		return "", apperr.NotFound("resource " + ref.String())
	}
	owner, err := l.ClaimOwner(ctx, ref.ID, strings.TrimSpace(adminID))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.NotFound("resource " + ref.String())
		}
		return "", err
	}
	return strings.TrimSpace(owner), nil
}
