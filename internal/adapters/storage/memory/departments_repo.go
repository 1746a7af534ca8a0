package memory

import (
	"context"
	"sort"
	"sync"

	"hr-portal/internal/domain/departments"
)

type departmentRepo struct {
	mu   sync.RWMutex
	seq  int64
	byID map[int64]departments.Department
}

func NewDepartmentsRepo() departments.Repository {
	return &departmentRepo{
		byID: make(map[int64]departments.Department),
	}
}

func (r *departmentRepo) Create(ctx context.Context, d departments.Department) (departments.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	d.ID = r.seq
	r.byID[d.ID] = d
	return d, nil
}

func (r *departmentRepo) GetByID(ctx context.Context, id int64) (departments.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[id]
	if !ok {
		return departments.Department{}, ErrNotFound
	}
	return d, nil
}

func (r *departmentRepo) List(ctx context.Context, owner string) ([]departments.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]departments.Department, 0)
	for _, d := range r.byID {
		if ownerMatches(d.OwnerAdminID, owner) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update no pisa el owner: solo ClaimOwner lo asigna.
func (r *departmentRepo) Update(ctx context.Context, d departments.Department) (departments.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[d.ID]
	if !ok {
		return departments.Department{}, ErrNotFound
	}
	d.OwnerAdminID = cur.OwnerAdminID
	d.CreatedAt = cur.CreatedAt
	r.byID[d.ID] = d
	return d, nil
}

func (r *departmentRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *departmentRepo) ClaimOwner(ctx context.Context, id int64, adminID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.byID[id]
	if !ok {
		return "", ErrNotFound
	}
	if d.OwnerAdminID == "" {
		d.OwnerAdminID = adminID
		r.byID[id] = d
	}
	return d.OwnerAdminID, nil
}
