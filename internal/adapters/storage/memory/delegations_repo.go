package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"hr-portal/internal/domain/delegations"
)

type delegationRepo struct {
	mu   sync.RWMutex
	seq  int64
	byID map[int64]delegations.Delegation
}

func NewDelegationsRepo() delegations.Repository {
	return &delegationRepo{
		byID: make(map[int64]delegations.Delegation),
	}
}

func (r *delegationRepo) Create(ctx context.Context, d delegations.Delegation) (delegations.Delegation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	d.ID = r.seq
	r.byID[d.ID] = d
	return d, nil
}

func (r *delegationRepo) Revoke(ctx context.Context, id int64, at time.Time) (delegations.Delegation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.byID[id]
	if !ok {
		return delegations.Delegation{}, false, ErrNotFound
	}
	if d.Status != delegations.StatusActive {
		return d, false, nil
	}
	d.Status = delegations.StatusRevoked
	d.RevokedAt = &at
	r.byID[id] = d
	return d, true, nil
}

func (r *delegationRepo) GetByID(ctx context.Context, id int64) (delegations.Delegation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[id]
	if !ok {
		return delegations.Delegation{}, ErrNotFound
	}
	return d, nil
}

func (r *delegationRepo) ListActiveTo(ctx context.Context, to string, now time.Time) ([]delegations.Delegation, error) {
	return r.list(func(d delegations.Delegation) bool { return sameAdmin(d.ToAdminID, to) && d.ActiveAt(now) }), nil
}

func (r *delegationRepo) ListByFrom(ctx context.Context, from string) ([]delegations.Delegation, error) {
	return r.list(func(d delegations.Delegation) bool { return sameAdmin(d.FromAdminID, from) }), nil
}

func (r *delegationRepo) ListByTo(ctx context.Context, to string) ([]delegations.Delegation, error) {
	return r.list(func(d delegations.Delegation) bool { return sameAdmin(d.ToAdminID, to) }), nil
}

func (r *delegationRepo) list(keep func(delegations.Delegation) bool) []delegations.Delegation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]delegations.Delegation, 0)
	for _, d := range r.byID {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
