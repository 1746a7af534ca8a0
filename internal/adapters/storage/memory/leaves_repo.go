package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"hr-portal/internal/domain/apperr"
	"hr-portal/internal/domain/leaves"
)

type leaveRepo struct {
	mu   sync.RWMutex
	seq  int64
	byID map[int64]leaves.LeaveRequest
}

func NewLeavesRepo() leaves.Repository {
	return &leaveRepo{
		byID: make(map[int64]leaves.LeaveRequest),
	}
}

func (r *leaveRepo) Create(ctx context.Context, l leaves.LeaveRequest) (leaves.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	l.ID = r.seq
	r.byID[l.ID] = l
	return l, nil
}

func (r *leaveRepo) GetByID(ctx context.Context, id int64) (leaves.LeaveRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.byID[id]
	if !ok {
		return leaves.LeaveRequest{}, ErrNotFound
	}
	return l, nil
}

func (r *leaveRepo) List(ctx context.Context, owner string) ([]leaves.LeaveRequest, error) {
	return r.filter(func(l leaves.LeaveRequest) bool { return ownerMatches(l.OwnerAdminID, owner) }), nil
}

func (r *leaveRepo) ListByEmployee(ctx context.Context, employeeID int64) ([]leaves.LeaveRequest, error) {
	return r.filter(func(l leaves.LeaveRequest) bool { return l.EmployeeID == employeeID }), nil
}

// ListPending ordena por created_at asc (las más viejas primero).
func (r *leaveRepo) ListPending(ctx context.Context, createdBefore time.Time) ([]leaves.LeaveRequest, error) {
	out := r.filter(func(l leaves.LeaveRequest) bool { return l.IsPending() && l.CreatedAt.Before(createdBefore) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *leaveRepo) ListApprovedCovering(ctx context.Context, day time.Time) ([]leaves.LeaveRequest, error) {
	return r.filter(func(l leaves.LeaveRequest) bool { return l.Status == leaves.StatusApproved && l.Covers(day) }), nil
}

func (r *leaveRepo) filter(keep func(leaves.LeaveRequest) bool) []leaves.LeaveRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]leaves.LeaveRequest, 0)
	for _, l := range r.byID {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var errLeaveDecided = apperr.Conflict("leave request already decided")

// Update no toca status ni decisión: eso pasa por Decide.
func (r *leaveRepo) Update(ctx context.Context, l leaves.LeaveRequest) (leaves.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[l.ID]
	if !ok {
		return leaves.LeaveRequest{}, ErrNotFound
	}
	if !cur.IsPending() {
		return leaves.LeaveRequest{}, errLeaveDecided
	}
	l.OwnerAdminID = cur.OwnerAdminID
	l.Status = cur.Status
	l.DecidedAt = cur.DecidedAt
	l.DecidedBy = cur.DecidedBy
	l.CreatedAt = cur.CreatedAt
	r.byID[l.ID] = l
	return l, nil
}

func (r *leaveRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *leaveRepo) ClaimOwner(ctx context.Context, id int64, adminID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.byID[id]
	if !ok {
		return "", ErrNotFound
	}
	if l.OwnerAdminID == "" {
		l.OwnerAdminID = adminID
		r.byID[id] = l
	}
	return l.OwnerAdminID, nil
}

func (r *leaveRepo) Decide(ctx context.Context, id int64, to leaves.Status, decidedBy string, at time.Time) (leaves.LeaveRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.byID[id]
	if !ok {
		return leaves.LeaveRequest{}, false, ErrNotFound
	}
	if !l.IsPending() {
		return l, false, nil
	}
	l.Status = to
	l.DecidedBy = decidedBy
	l.DecidedAt = &at
	l.UpdatedAt = at
	r.byID[id] = l
	return l, true, nil
}
