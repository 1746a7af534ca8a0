package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"hr-portal/internal/domain/accessrequests"
	"hr-portal/internal/domain/resources"
)

type accessRequestRepo struct {
	mu   sync.RWMutex
	seq  int64
	byID map[int64]accessrequests.AccessRequest
}

func NewAccessRequestsRepo() accessrequests.Repository {
	return &accessRequestRepo{
		byID: make(map[int64]accessrequests.AccessRequest),
	}
}

// CreatePending: el lock cubre el chequeo y el insert, equivalente al índice único parcial de Postgres.
func (r *accessRequestRepo) CreatePending(ctx context.Context, ar accessrequests.AccessRequest) (accessrequests.AccessRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.findPendingLocked(ar.RequesterAdminID, ar.Ref()); ok {
		return cur, false, nil
	}
	r.seq++
	ar.ID = r.seq
	ar.Status = accessrequests.StatusPending
	r.byID[ar.ID] = ar
	return ar, true, nil
}

func (r *accessRequestRepo) Decide(ctx context.Context, id int64, d accessrequests.Decision) (accessrequests.AccessRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return accessrequests.AccessRequest{}, false, ErrNotFound
	}
	if !cur.IsPending() {
		return cur, false, nil
	}

	decidedAt := d.DecidedAt
	cur.Status = d.Status
	cur.DecidedAt = &decidedAt
	cur.AllowedUntil = nil
	if d.AllowedUntil != nil {
		until := *d.AllowedUntil
		cur.AllowedUntil = &until
	}
	r.byID[id] = cur
	return cur, true, nil
}

func (r *accessRequestRepo) GetByID(ctx context.Context, id int64) (accessrequests.AccessRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ar, ok := r.byID[id]
	if !ok {
		return accessrequests.AccessRequest{}, ErrNotFound
	}
	return ar, nil
}

// FindActiveApproval: si hubiera más de uno vigente gana el de mayor id.
func (r *accessRequestRepo) FindActiveApproval(ctx context.Context, requester string, ref resources.Ref, now time.Time) (accessrequests.AccessRequest, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var winner accessrequests.AccessRequest
	has := false
	for _, ar := range r.byID {
		if ar.Ref() != ref || !sameAdmin(ar.RequesterAdminID, requester) {
			continue
		}
		if !ar.IsActive(now) {
			continue
		}
		if !has || ar.ID > winner.ID {
			winner = ar
			has = true
		}
	}
	return winner, has, nil
}

func (r *accessRequestRepo) FindPending(ctx context.Context, requester string, ref resources.Ref) (accessrequests.AccessRequest, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ar, ok := r.findPendingLocked(requester, ref)
	return ar, ok, nil
}

func (r *accessRequestRepo) findPendingLocked(requester string, ref resources.Ref) (accessrequests.AccessRequest, bool) {
	for _, ar := range r.byID {
		if ar.IsPending() && ar.Ref() == ref && sameAdmin(ar.RequesterAdminID, requester) {
			return ar, true
		}
	}
	return accessrequests.AccessRequest{}, false
}

func (r *accessRequestRepo) ListByOwner(ctx context.Context, owner string) ([]accessrequests.AccessRequest, error) {
	return r.list(func(ar accessrequests.AccessRequest) bool { return sameAdmin(ar.OwnerAdminID, owner) }), nil
}

func (r *accessRequestRepo) ListByRequester(ctx context.Context, requester string) ([]accessrequests.AccessRequest, error) {
	return r.list(func(ar accessrequests.AccessRequest) bool { return sameAdmin(ar.RequesterAdminID, requester) }), nil
}

// list ordena por requested_at desc y, en empate, por id desc.
func (r *accessRequestRepo) list(keep func(accessrequests.AccessRequest) bool) []accessrequests.AccessRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]accessrequests.AccessRequest, 0)
	for _, ar := range r.byID {
		if keep(ar) {
			out = append(out, ar)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].RequestedAt.After(out[j].RequestedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
