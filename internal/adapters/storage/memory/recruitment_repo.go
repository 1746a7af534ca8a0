package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"hr-portal/internal/domain/recruitment"
)

type candidateRepo struct {
	mu   sync.RWMutex
	seq  int64
	byID map[int64]recruitment.Candidate
}

func NewCandidatesRepo() recruitment.CandidateRepository {
	return &candidateRepo{
		byID: make(map[int64]recruitment.Candidate),
	}
}

func (r *candidateRepo) Create(ctx context.Context, c recruitment.Candidate) (recruitment.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	c.ID = r.seq
	r.byID[c.ID] = c
	return c, nil
}

func (r *candidateRepo) GetByID(ctx context.Context, id int64) (recruitment.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return recruitment.Candidate{}, ErrNotFound
	}
	return c, nil
}

func (r *candidateRepo) List(ctx context.Context, owner string) ([]recruitment.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]recruitment.Candidate, 0)
	for _, c := range r.byID {
		if ownerMatches(c.OwnerAdminID, owner) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *candidateRepo) Update(ctx context.Context, c recruitment.Candidate) (recruitment.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[c.ID]
	if !ok {
		return recruitment.Candidate{}, ErrNotFound
	}
	c.OwnerAdminID = cur.OwnerAdminID
	c.CreatedAt = cur.CreatedAt
	r.byID[c.ID] = c
	return c, nil
}

func (r *candidateRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *candidateRepo) ClaimOwner(ctx context.Context, id int64, adminID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return "", ErrNotFound
	}
	if c.OwnerAdminID == "" {
		c.OwnerAdminID = adminID
		r.byID[id] = c
	}
	return c.OwnerAdminID, nil
}

type applicationRepo struct {
	mu   sync.RWMutex
	seq  int64
	byID map[int64]recruitment.JobApplication
}

func NewApplicationsRepo() recruitment.ApplicationRepository {
	return &applicationRepo{
		byID: make(map[int64]recruitment.JobApplication),
	}
}

func (r *applicationRepo) Create(ctx context.Context, a recruitment.JobApplication) (recruitment.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	a.ID = r.seq
	r.byID[a.ID] = a
	return a, nil
}

func (r *applicationRepo) GetByID(ctx context.Context, id int64) (recruitment.JobApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return recruitment.JobApplication{}, ErrNotFound
	}
	return a, nil
}

func (r *applicationRepo) List(ctx context.Context, owner string) ([]recruitment.JobApplication, error) {
	return r.filter(func(a recruitment.JobApplication) bool { return ownerMatches(a.OwnerAdminID, owner) }), nil
}

func (r *applicationRepo) ListByCandidate(ctx context.Context, candidateID int64) ([]recruitment.JobApplication, error) {
	return r.filter(func(a recruitment.JobApplication) bool { return a.CandidateID == candidateID }), nil
}

func (r *applicationRepo) filter(keep func(recruitment.JobApplication) bool) []recruitment.JobApplication {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]recruitment.JobApplication, 0)
	for _, a := range r.byID {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Update no toca status: eso pasa por SetStatus.
func (r *applicationRepo) Update(ctx context.Context, a recruitment.JobApplication) (recruitment.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[a.ID]
	if !ok {
		return recruitment.JobApplication{}, ErrNotFound
	}
	a.OwnerAdminID = cur.OwnerAdminID
	a.Status = cur.Status
	a.CreatedAt = cur.CreatedAt
	r.byID[a.ID] = a
	return a, nil
}

func (r *applicationRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *applicationRepo) ClaimOwner(ctx context.Context, id int64, adminID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return "", ErrNotFound
	}
	if a.OwnerAdminID == "" {
		a.OwnerAdminID = adminID
		r.byID[id] = a
	}
	return a.OwnerAdminID, nil
}

func (r *applicationRepo) SetStatus(ctx context.Context, id int64, from, to recruitment.ApplicationStatus, at time.Time) (recruitment.JobApplication, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return recruitment.JobApplication{}, false, ErrNotFound
	}
	if a.Status != from {
		return a, false, nil
	}
	a.Status = to
	a.UpdatedAt = at
	r.byID[id] = a
	return a, true, nil
}
