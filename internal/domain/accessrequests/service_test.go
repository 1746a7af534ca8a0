package accessrequests

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"hr-portal/internal/domain/apperr"
	"hr-portal/internal/domain/resources"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	mu     sync.Mutex
	seq    int64
	byID   map[int64]AccessRequest
	writes int
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]AccessRequest{}}
}

func (r *testRepo) CreatePending(ctx context.Context, ar AccessRequest) (AccessRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cur := range r.byID {
		if cur.IsPending() && cur.Ref() == ar.Ref() && resources.SameAdmin(cur.RequesterAdminID, ar.RequesterAdminID) {
			return cur, false, nil
		}
	}
	r.seq++
	ar.ID = r.seq
	r.byID[ar.ID] = ar
	return ar, true, nil
}

func (r *testRepo) Decide(ctx context.Context, id int64, d Decision) (AccessRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return AccessRequest{}, false, apperr.ErrNotFound
	}
	if !cur.IsPending() {
		return cur, false, nil
	}
	decided := d.DecidedAt
	cur.Status = d.Status
	cur.DecidedAt = &decided
	cur.AllowedUntil = d.AllowedUntil
	r.byID[id] = cur
	r.writes++
	return cur, true, nil
}

func (r *testRepo) GetByID(ctx context.Context, id int64) (AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ar, ok := r.byID[id]
	if !ok {
		return AccessRequest{}, apperr.ErrNotFound
	}
	return ar, nil
}

func (r *testRepo) FindActiveApproval(ctx context.Context, requester string, ref resources.Ref, now time.Time) (AccessRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best AccessRequest
	found := false
	for _, ar := range r.byID {
		if ar.Ref() != ref || !resources.SameAdmin(ar.RequesterAdminID, requester) || !ar.IsActive(now) {
			continue
		}
		if !found || ar.ID > best.ID {
			best, found = ar, true
		}
	}
	return best, found, nil
}

func (r *testRepo) FindPending(ctx context.Context, requester string, ref resources.Ref) (AccessRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ar := range r.byID {
		if ar.IsPending() && ar.Ref() == ref && resources.SameAdmin(ar.RequesterAdminID, requester) {
			return ar, true, nil
		}
	}
	return AccessRequest{}, false, nil
}

func (r *testRepo) ListByOwner(ctx context.Context, owner string) ([]AccessRequest, error) {
	return r.list(func(ar AccessRequest) bool { return resources.SameAdmin(ar.OwnerAdminID, owner) }), nil
}

func (r *testRepo) ListByRequester(ctx context.Context, requester string) ([]AccessRequest, error) {
	return r.list(func(ar AccessRequest) bool { return resources.SameAdmin(ar.RequesterAdminID, requester) }), nil
}

func (r *testRepo) list(keep func(AccessRequest) bool) []AccessRequest {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]AccessRequest, 0)
	for _, ar := range r.byID {
		if keep(ar) {
			out = append(out, ar)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// fakeOwners resuelve owners desde un mapa fijo.
type fakeOwners map[resources.Ref]string

func (f fakeOwners) ResolveOwner(ctx context.Context, ref resources.Ref) (string, error) {
	owner, ok := f[ref]
	if !ok {
		return "", apperr.NotFound("resource")
	}
	return owner, nil
}

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestService(owners fakeOwners) (*Service, *testRepo, *time.Time) {
	repo := newTestRepo()
	now := t0
	svc := NewService(repo, owners, nil)
	svc.now = func() time.Time { return now }
	return svc, repo, &now
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_IsIdempotentWhilePending(t *testing.T) {
	ref := resources.Ref{Type: resources.TypeEmployee, ID: 15}
	svc, _, _ := newTestService(fakeOwners{ref: "admin-1"})

	first, err := svc.Create(context.Background(), CreateInput{
		RequesterAdminID: "admin-2",
		ResourceType:     "Employee",
		ResourceID:       "E-15",
		Note:             "need to update salary",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if first.Status != StatusPending || first.OwnerAdminID != "admin-1" {
		t.Fatalf("unexpected request: %+v", first)
	}

	second, err := svc.Create(context.Background(), CreateInput{
		RequesterAdminID: "ADMIN-2",
		ResourceType:     "employee",
		ResourceID:       "15",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same pending request %d, got %d", first.ID, second.ID)
	}
}

func TestService_Create_RejectsOwnResource_AllTypes(t *testing.T) {
	entries := map[resources.Ref]string{}
	for i, typ := range resources.AllTypes {
		entries[resources.Ref{Type: typ, ID: int64(i + 1)}] = "admin-1"
	}
	svc, repo, _ := newTestService(fakeOwners(entries))

	for ref := range entries {
		_, err := svc.Create(context.Background(), CreateInput{
			RequesterAdminID: "Admin-1",
			ResourceType:     string(ref.Type),
			ResourceID:       resources.Encode(ref.Type, ref.ID),
		})
		if !errors.Is(err, apperr.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", ref, err)
		}
		if apperr.Message(err) != "already own this resource" {
			t.Fatalf("%s: unexpected message %q", ref, apperr.Message(err))
		}
	}
	if len(repo.byID) != 0 {
		t.Fatalf("expected no requests persisted, got %d", len(repo.byID))
	}
}

func TestService_Create_OwnerNotAssigned(t *testing.T) {
	ref := resources.Ref{Type: resources.TypeLeaveRequest, ID: 3}
	svc, _, _ := newTestService(fakeOwners{ref: ""})

	_, err := svc.Create(context.Background(), CreateInput{
		RequesterAdminID: "admin-2",
		ResourceType:     "LeaveRequest",
		ResourceID:       "L-3",
	})
	if !errors.Is(err, apperr.ErrInvalidInput) || apperr.Message(err) != "owner not assigned" {
		t.Fatalf("expected owner not assigned, got %v", err)
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc, _, _ := newTestService(fakeOwners{})

	cases := []CreateInput{
		{RequesterAdminID: "", ResourceType: "Employee", ResourceID: "E-1"},
		{RequesterAdminID: "admin-2", ResourceType: "", ResourceID: "E-1"},
		{RequesterAdminID: "admin-2", ResourceType: "Employee", ResourceID: "  "},
		{RequesterAdminID: "admin-2", ResourceType: "Payroll", ResourceID: "1"},
		{RequesterAdminID: "admin-2", ResourceType: "Employee", ResourceID: "D-01"},
	}
	for _, in := range cases {
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Fatalf("%+v: expected ErrInvalidInput, got %v", in, err)
		}
	}

	_, err := svc.Create(context.Background(), CreateInput{RequesterAdminID: "admin-2", ResourceType: "Employee", ResourceID: "E-99"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown resource, got %v", err)
	}
}

func TestService_Approve_DefaultAndCustomWindow(t *testing.T) {
	refA := resources.Ref{Type: resources.TypeDepartment, ID: 1}
	refB := resources.Ref{Type: resources.TypeDepartment, ID: 2}
	svc, _, _ := newTestService(fakeOwners{refA: "admin-1", refB: "admin-1"})
	ctx := context.Background()

	a, _ := svc.Create(ctx, CreateInput{RequesterAdminID: "admin-2", ResourceType: "Department", ResourceID: "D-01"})
	b, _ := svc.Create(ctx, CreateInput{RequesterAdminID: "admin-2", ResourceType: "Department", ResourceID: "D-02"})

	got, err := svc.Approve(ctx, a.ID, "admin-1", 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Status != StatusApproved || got.AllowedUntil == nil || !got.AllowedUntil.Equal(t0.Add(15*time.Minute)) {
		t.Fatalf("expected 15m window, got %+v", got)
	}

	got, err = svc.Approve(ctx, b.ID, "admin-1", 45)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !got.AllowedUntil.Equal(t0.Add(45 * time.Minute)) {
		t.Fatalf("expected 45m window, got %v", got.AllowedUntil)
	}
}

func TestService_Approve_RejectsWindowAboveMax(t *testing.T) {
	ref := resources.Ref{Type: resources.TypeEmployee, ID: 15}
	svc, repo, _ := newTestService(fakeOwners{ref: "admin-1"})
	ctx := context.Background()

	ar, _ := svc.Create(ctx, CreateInput{RequesterAdminID: "admin-2", ResourceType: "Employee", ResourceID: "E-15"})

	for _, minutes := range []int{MaxAllowMinutes + 1, math.MaxInt} {
		if _, err := svc.Approve(ctx, ar.ID, "admin-1", minutes); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Fatalf("%d: expected ErrInvalidInput, got %v", minutes, err)
		}
	}
	if repo.writes != 0 {
		t.Fatalf("expected request to stay pending, got %d writes", repo.writes)
	}

	got, err := svc.Approve(ctx, ar.ID, "admin-1", MaxAllowMinutes)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !got.AllowedUntil.Equal(t0.Add(MaxAllowMinutes*time.Minute)) || !got.AllowedUntil.After(t0) {
		t.Fatalf("unexpected window: %v", got.AllowedUntil)
	}
}

func TestService_Submit_ReportsCreation(t *testing.T) {
	ref := resources.Ref{Type: resources.TypeEmployee, ID: 15}
	svc, _, _ := newTestService(fakeOwners{ref: "admin-1"})
	ctx := context.Background()
	in := CreateInput{RequesterAdminID: "admin-2", ResourceType: "Employee", ResourceID: "E-15"}

	first, created, err := svc.Submit(ctx, in)
	if err != nil || !created {
		t.Fatalf("expected new request, got created=%v err=%v", created, err)
	}
	again, created, err := svc.Submit(ctx, in)
	if err != nil || created || again.ID != first.ID {
		t.Fatalf("expected existing pending, got %+v created=%v err=%v", again, created, err)
	}

	if _, err := svc.Approve(ctx, first.ID, "admin-1", 30); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	active, created, err := svc.Submit(ctx, in)
	if err != nil || created || active.Status != StatusApproved {
		t.Fatalf("expected active approval, got %+v created=%v err=%v", active, created, err)
	}
}

func TestService_Decide_OnlyOwner(t *testing.T) {
	ref := resources.Ref{Type: resources.TypeCandidate, ID: 7}
	svc, repo, _ := newTestService(fakeOwners{ref: "admin-1"})
	ctx := context.Background()

	ar, _ := svc.Create(ctx, CreateInput{RequesterAdminID: "admin-2", ResourceType: "Candidate", ResourceID: "C-007"})

	if _, err := svc.Approve(ctx, ar.ID, "admin-2", 0); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for requester, got %v", err)
	}
	if _, err := svc.Deny(ctx, ar.ID, "admin-3"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for third admin, got %v", err)
	}
	if _, err := svc.Approve(ctx, 999, "admin-1", 0); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Deny(ctx, 999, " "); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before checking the admin, got %v", err)
	}
	if _, err := svc.Approve(ctx, ar.ID, "", 0); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for blank admin, got %v", err)
	}
	if repo.writes != 0 {
		t.Fatalf("expected no transitions, got %d", repo.writes)
	}
}

func TestService_Deny_IsTerminal(t *testing.T) {
	ref := resources.Ref{Type: resources.TypeJobApplication, ID: 12}
	svc, _, _ := newTestService(fakeOwners{ref: "admin-1"})
	ctx := context.Background()

	ar, _ := svc.Create(ctx, CreateInput{RequesterAdminID: "admin-2", ResourceType: "JobApplication", ResourceID: "APP-012"})

	denied, err := svc.Deny(ctx, ar.ID, "admin-1")
	if err != nil || denied.Status != StatusDenied || denied.AllowedUntil != nil {
		t.Fatalf("unexpected deny result: %+v err=%v", denied, err)
	}

	// Aprobar después de denegar no cambia nada.
	again, err := svc.Approve(ctx, ar.ID, "admin-1", 30)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if again.Status != StatusDenied || again.AllowedUntil != nil {
		t.Fatalf("expected denied to stay denied, got %+v", again)
	}

	// Un nuevo pedido crea un registro nuevo.
	next, err := svc.Create(ctx, CreateInput{RequesterAdminID: "admin-2", ResourceType: "JobApplication", ResourceID: "12"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if next.ID == ar.ID || next.Status != StatusPending {
		t.Fatalf("expected new pending request, got %+v", next)
	}
}

func TestService_Create_ReturnsActiveApprovalThenNewAfterExpiry(t *testing.T) {
	ref := resources.Ref{Type: resources.TypeEmployee, ID: 15}
	svc, _, now := newTestService(fakeOwners{ref: "admin-1"})
	ctx := context.Background()

	ar1, _ := svc.Create(ctx, CreateInput{RequesterAdminID: "admin-2", ResourceType: "Employee", ResourceID: "E-15"})
	if _, err := svc.Approve(ctx, ar1.ID, "admin-1", 15); err != nil {
		t.Fatalf("approve: %v", err)
	}

	*now = t0.Add(10 * time.Minute)
	same, err := svc.Create(ctx, CreateInput{RequesterAdminID: "admin-2", ResourceType: "Employee", ResourceID: "E-15"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if same.ID != ar1.ID || same.Status != StatusApproved {
		t.Fatalf("expected active approval to be returned, got %+v", same)
	}

	*now = t0.Add(16 * time.Minute)
	if _, ok, _ := svc.FindActiveApproval(ctx, "admin-2", ref, *now); ok {
		t.Fatal("expected approval to be expired")
	}
	ar2, err := svc.Create(ctx, CreateInput{RequesterAdminID: "admin-2", ResourceType: "Employee", ResourceID: "E-15"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ar2.ID == ar1.ID || ar2.Status != StatusPending {
		t.Fatalf("expected a new pending request, got %+v", ar2)
	}
}

func TestService_Approve_ConcurrentCallsApplyOnce(t *testing.T) {
	ref := resources.Ref{Type: resources.TypeEmployee, ID: 1}
	svc, repo, _ := newTestService(fakeOwners{ref: "admin-1"})
	ctx := context.Background()

	ar, _ := svc.Create(ctx, CreateInput{RequesterAdminID: "admin-2", ResourceType: "Employee", ResourceID: "E-1"})

	var wg sync.WaitGroup
	results := make([]AccessRequest, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.Approve(ctx, ar.ID, "admin-1", 10+i)
			if err != nil {
				t.Errorf("approve %d: %v", i, err)
			}
			results[i] = res
		}(i)
	}
	wg.Wait()

	if repo.writes != 1 {
		t.Fatalf("expected exactly one transition, got %d", repo.writes)
	}
	for _, res := range results {
		if res.Status != StatusApproved || !res.AllowedUntil.Equal(*results[0].AllowedUntil) {
			t.Fatalf("expected every caller to observe the same approval, got %+v", res)
		}
	}
}

func TestService_Get_OnlyParties(t *testing.T) {
	ref := resources.Ref{Type: resources.TypeEmployee, ID: 1}
	svc, _, _ := newTestService(fakeOwners{ref: "admin-1"})
	ctx := context.Background()

	ar, _ := svc.Create(ctx, CreateInput{RequesterAdminID: "admin-2", ResourceType: "Employee", ResourceID: "E-1"})

	for _, who := range []string{"admin-1", "admin-2"} {
		if _, err := svc.Get(ctx, ar.ID, who); err != nil {
			t.Fatalf("%s: unexpected err %v", who, err)
		}
	}
	if _, err := svc.Get(ctx, ar.ID, "admin-3"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestService_InboxOutbox_NewestFirst(t *testing.T) {
	refs := map[resources.Ref]string{
		{Type: resources.TypeEmployee, ID: 1}: "admin-1",
		{Type: resources.TypeEmployee, ID: 2}: "admin-1",
	}
	svc, _, _ := newTestService(fakeOwners(refs))
	ctx := context.Background()

	a, _ := svc.Create(ctx, CreateInput{RequesterAdminID: "admin-2", ResourceType: "Employee", ResourceID: "E-1"})
	b, _ := svc.Create(ctx, CreateInput{RequesterAdminID: "admin-2", ResourceType: "Employee", ResourceID: "E-2"})

	inbox, err := svc.Inbox(ctx, "admin-1")
	if err != nil || len(inbox) != 2 || inbox[0].ID != b.ID || inbox[1].ID != a.ID {
		t.Fatalf("unexpected inbox: %+v err=%v", inbox, err)
	}
	outbox, err := svc.Outbox(ctx, "admin-2")
	if err != nil || len(outbox) != 2 {
		t.Fatalf("unexpected outbox: %+v err=%v", outbox, err)
	}
	if _, err := svc.Inbox(ctx, " "); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
