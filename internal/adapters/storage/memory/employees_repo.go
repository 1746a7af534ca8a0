package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"hr-portal/internal/domain/apperr"
	"hr-portal/internal/domain/employees"
)

type employeeRepo struct {
	mu   sync.RWMutex
	seq  int64
	byID map[int64]employees.Employee
}

func NewEmployeesRepo() employees.Repository {
	return &employeeRepo{
		byID: make(map[int64]employees.Employee),
	}
}

func (r *employeeRepo) Create(ctx context.Context, e employees.Employee) (employees.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTakenLocked(e.Email, 0) {
		return employees.Employee{}, apperr.Conflict("email already registered")
	}
	r.seq++
	e.ID = r.seq
	r.byID[e.ID] = e
	return e, nil
}

func (r *employeeRepo) GetByID(ctx context.Context, id int64) (employees.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return employees.Employee{}, ErrNotFound
	}
	return e, nil
}

func (r *employeeRepo) List(ctx context.Context, owner string) ([]employees.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]employees.Employee, 0)
	for _, e := range r.byID {
		if ownerMatches(e.OwnerAdminID, owner) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *employeeRepo) Update(ctx context.Context, e employees.Employee) (employees.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[e.ID]
	if !ok {
		return employees.Employee{}, ErrNotFound
	}
	if r.emailTakenLocked(e.Email, e.ID) {
		return employees.Employee{}, apperr.Conflict("email already registered")
	}
	e.OwnerAdminID = cur.OwnerAdminID
	e.CreatedAt = cur.CreatedAt
	r.byID[e.ID] = e
	return e, nil
}

func (r *employeeRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *employeeRepo) ClaimOwner(ctx context.Context, id int64, adminID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return "", ErrNotFound
	}
	if e.OwnerAdminID == "" {
		e.OwnerAdminID = adminID
		r.byID[id] = e
	}
	return e.OwnerAdminID, nil
}

func (r *employeeRepo) SetStatus(ctx context.Context, id int64, from, to employees.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return false, ErrNotFound
	}
	if e.Status != from {
		return false, nil
	}
	e.Status = to
	r.byID[id] = e
	return true, nil
}

func (r *employeeRepo) emailTakenLocked(email string, exceptID int64) bool {
	if email == "" {
		return false
	}
	for id, e := range r.byID {
		if id != exceptID && strings.EqualFold(e.Email, email) {
			return true
		}
	}
	return false
}
