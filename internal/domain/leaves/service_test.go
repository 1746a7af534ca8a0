package leaves

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"hr-portal/internal/domain/apperr"
	"hr-portal/internal/domain/resources"
)

type testRepo struct {
	mu        sync.Mutex
	seq       int64
	byID      map[int64]LeaveRequest
	decisions int

	// afterGet corre después de cada GetByID (simula una decisión concurrente).
	afterGet func(id int64)
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]LeaveRequest{}}
}

func (r *testRepo) Create(ctx context.Context, l LeaveRequest) (LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	l.ID = r.seq
	r.byID[l.ID] = l
	return l, nil
}

func (r *testRepo) GetByID(ctx context.Context, id int64) (LeaveRequest, error) {
	r.mu.Lock()
	l, ok := r.byID[id]
	hook := r.afterGet
	r.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	if !ok {
		return LeaveRequest{}, apperr.ErrNotFound
	}
	return l, nil
}

func (r *testRepo) filter(keep func(LeaveRequest) bool) []LeaveRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LeaveRequest, 0)
	for _, l := range r.byID {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *testRepo) List(ctx context.Context, owner string) ([]LeaveRequest, error) {
	return r.filter(func(l LeaveRequest) bool { return owner == "" || resources.SameAdmin(l.OwnerAdminID, owner) }), nil
}

func (r *testRepo) ListByEmployee(ctx context.Context, employeeID int64) ([]LeaveRequest, error) {
	return r.filter(func(l LeaveRequest) bool { return l.EmployeeID == employeeID }), nil
}

func (r *testRepo) Update(ctx context.Context, l LeaveRequest) (LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[l.ID]
	if !ok {
		return LeaveRequest{}, apperr.ErrNotFound
	}
	if !cur.IsPending() {
		return LeaveRequest{}, apperr.Conflict("leave request already decided")
	}
	l.Status = cur.Status
	r.byID[l.ID] = l
	return l, nil
}

func (r *testRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *testRepo) ClaimOwner(ctx context.Context, id int64, adminID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return "", apperr.ErrNotFound
	}
	if l.OwnerAdminID == "" {
		l.OwnerAdminID = adminID
		r.byID[id] = l
	}
	return l.OwnerAdminID, nil
}

func (r *testRepo) Decide(ctx context.Context, id int64, to Status, by string, at time.Time) (LeaveRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return LeaveRequest{}, false, apperr.ErrNotFound
	}
	if !l.IsPending() {
		return l, false, nil
	}
	l.Status = to
	l.DecidedBy = by
	l.DecidedAt = &at
	r.byID[id] = l
	r.decisions++
	return l, true, nil
}

func (r *testRepo) ListPending(ctx context.Context, createdBefore time.Time) ([]LeaveRequest, error) {
	return r.filter(func(l LeaveRequest) bool { return l.IsPending() && l.CreatedAt.Before(createdBefore) }), nil
}

func (r *testRepo) ListApprovedCovering(ctx context.Context, day time.Time) ([]LeaveRequest, error) {
	return r.filter(func(l LeaveRequest) bool { return l.Status == StatusApproved && l.Covers(day) }), nil
}

type knownEmployees map[int64]bool

func (k knownEmployees) Exists(ctx context.Context, id int64) (bool, error) {
	return k[id], nil
}

type allowAll struct{}

func (allowAll) EnsureEditAccess(ctx context.Context, ref resources.Ref, acting string) error {
	return nil
}

type denyAll struct{}

func (denyAll) EnsureEditAccess(ctx context.Context, ref resources.Ref, acting string) error {
	return apperr.Forbidden("no access to modify this resource")
}

var now0 = time.Date(2025, 7, 14, 10, 0, 0, 0, time.UTC)

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func newTestService(a Authorizer) (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, knownEmployees{15: true}, a, nil)
	svc.now = func() time.Time { return now0 }
	return svc, repo
}

func TestService_Create_Validation(t *testing.T) {
	svc, _ := newTestService(allowAll{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, "", CreateInput{EmployeeID: 15, StartDate: day("2025-07-20"), EndDate: day("2025-07-19")}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for reversed range, got %v", err)
	}
	if _, err := svc.Create(ctx, "", CreateInput{EmployeeID: 99, StartDate: day("2025-07-20"), EndDate: day("2025-07-21")}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown employee, got %v", err)
	}

	l, err := svc.Create(ctx, "", CreateInput{EmployeeID: 15, StartDate: day("2025-07-20"), EndDate: day("2025-07-20"), Reason: "trámite"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if l.Status != StatusPending || l.OwnerAdminID != "" {
		t.Fatalf("unexpected leave: %+v", l)
	}
}

func TestService_Approve_GoesThroughGate(t *testing.T) {
	svc, repo := newTestService(denyAll{})
	ctx := context.Background()

	l, _ := svc.Create(ctx, "admin-1", CreateInput{EmployeeID: 15, StartDate: day("2025-07-20"), EndDate: day("2025-07-25")})

	if _, err := svc.Approve(ctx, l.ID, "admin-2"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.decisions != 0 {
		t.Fatal("gate denial must not decide")
	}
}

func TestService_Decide_IsAtomicAndIdempotent(t *testing.T) {
	svc, repo := newTestService(allowAll{})
	ctx := context.Background()

	l, _ := svc.Create(ctx, "admin-1", CreateInput{EmployeeID: 15, StartDate: day("2025-07-20"), EndDate: day("2025-07-25")})

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			to := StatusApproved
			if i%2 == 1 {
				to = StatusRejected
			}
			if _, _, err := svc.Decide(ctx, l.ID, to, "admin-1"); err != nil {
				t.Errorf("decide: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if repo.decisions != 1 {
		t.Fatalf("expected exactly one decision, got %d", repo.decisions)
	}

	final, _ := svc.Get(ctx, l.ID)
	again, applied, err := svc.Decide(ctx, l.ID, StatusApproved, "admin-1")
	if err != nil || applied || again.Status != final.Status {
		t.Fatalf("expected idempotent no-op, got %+v applied=%v err=%v", again, applied, err)
	}

	if _, _, err := svc.Decide(ctx, l.ID, StatusPending, "admin-1"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, _, err := svc.Decide(ctx, 404, StatusApproved, "admin-1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Update_OnlyWhilePending(t *testing.T) {
	svc, _ := newTestService(allowAll{})
	ctx := context.Background()

	l, _ := svc.Create(ctx, "admin-1", CreateInput{EmployeeID: 15, StartDate: day("2025-07-20"), EndDate: day("2025-07-25")})
	end := day("2025-07-22")
	updated, err := svc.Update(ctx, l.ID, "admin-1", UpdateInput{EndDate: &end})
	if err != nil || !updated.EndDate.Equal(end) {
		t.Fatalf("unexpected update: %+v err=%v", updated, err)
	}

	_, _ = svc.Approve(ctx, l.ID, "admin-1")
	if _, err := svc.Update(ctx, l.ID, "admin-1", UpdateInput{EndDate: &end}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected ErrConflict after decision, got %v", err)
	}
}

func TestService_Update_LosesToConcurrentDecision(t *testing.T) {
	svc, repo := newTestService(allowAll{})
	ctx := context.Background()

	l, _ := svc.Create(ctx, "admin-1", CreateInput{EmployeeID: 15, StartDate: day("2025-07-20"), EndDate: day("2025-07-25")})

	repo.afterGet = func(id int64) {
		repo.afterGet = nil
		if _, _, err := svc.Decide(ctx, id, StatusApproved, "simulated-manager"); err != nil {
			t.Errorf("decide: %v", err)
		}
	}

	end := day("2025-07-30")
	if _, err := svc.Update(ctx, l.ID, "admin-1", UpdateInput{EndDate: &end}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	got, _ := svc.Get(ctx, l.ID)
	if got.Status != StatusApproved || !got.EndDate.Equal(day("2025-07-25")) {
		t.Fatalf("approved leave must keep its dates, got %+v", got)
	}
}

func TestLeaveRequest_Covers(t *testing.T) {
	l := LeaveRequest{StartDate: day("2025-07-20"), EndDate: day("2025-07-22")}

	for _, s := range []string{"2025-07-20", "2025-07-21", "2025-07-22"} {
		if !l.Covers(day(s).Add(15 * time.Hour)) {
			t.Fatalf("expected %s to be covered", s)
		}
	}
	for _, s := range []string{"2025-07-19", "2025-07-23"} {
		if l.Covers(day(s)) {
			t.Fatalf("expected %s not to be covered", s)
		}
	}
}
