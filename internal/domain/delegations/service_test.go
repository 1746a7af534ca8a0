package delegations

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
	mu   sync.Mutex
	seq  int64
	byID map[int64]Delegation
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]Delegation{}}
}

func (r *testRepo) Create(ctx context.Context, d Delegation) (Delegation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	d.ID = r.seq
	r.byID[d.ID] = d
	return d, nil
}

func (r *testRepo) Revoke(ctx context.Context, id int64, at time.Time) (Delegation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok {
		return Delegation{}, false, apperr.ErrNotFound
	}
	if d.Status != StatusActive {
		return d, false, nil
	}
	d.Status = StatusRevoked
	d.RevokedAt = &at
	r.byID[id] = d
	return d, true, nil
}

func (r *testRepo) GetByID(ctx context.Context, id int64) (Delegation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok {
		return Delegation{}, apperr.ErrNotFound
	}
	return d, nil
}

func (r *testRepo) ListActiveTo(ctx context.Context, to string, now time.Time) ([]Delegation, error) {
	return r.list(func(d Delegation) bool { return resources.SameAdmin(d.ToAdminID, to) && d.ActiveAt(now) }), nil
}

func (r *testRepo) ListByFrom(ctx context.Context, from string) ([]Delegation, error) {
	return r.list(func(d Delegation) bool { return resources.SameAdmin(d.FromAdminID, from) }), nil
}

func (r *testRepo) ListByTo(ctx context.Context, to string) ([]Delegation, error) {
	return r.list(func(d Delegation) bool { return resources.SameAdmin(d.ToAdminID, to) }), nil
}

func (r *testRepo) list(keep func(Delegation) bool) []Delegation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Delegation, 0)
	for _, d := range r.byID {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

var day0 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestService() (*Service, *time.Time) {
	now := day0
	svc := NewService(newTestRepo(), nil)
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestService_Create_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []CreateInput{
		{FromAdminID: "", ToAdminID: "admin-2", StartDate: day0, EndDate: day0.AddDate(0, 0, 7)},
		{FromAdminID: "admin-1", ToAdminID: " ", StartDate: day0, EndDate: day0.AddDate(0, 0, 7)},
		{FromAdminID: "admin-1", ToAdminID: "ADMIN-1", StartDate: day0, EndDate: day0.AddDate(0, 0, 7)},
		{FromAdminID: "admin-1", ToAdminID: "admin-2", StartDate: day0, EndDate: day0},
		{FromAdminID: "admin-1", ToAdminID: "admin-2", StartDate: day0, EndDate: day0.AddDate(0, 0, -1)},
	}
	for _, in := range cases {
		if _, err := svc.Create(ctx, in); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Fatalf("%+v: expected ErrInvalidInput, got %v", in, err)
		}
	}

	d, err := svc.Create(ctx, CreateInput{FromAdminID: "admin-1", ToAdminID: "admin-2", StartDate: day0, EndDate: day0.AddDate(0, 0, 7), Reason: "vacaciones"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.Status != StatusActive || !d.CreatedAt.Equal(day0) || d.ID == 0 {
		t.Fatalf("unexpected delegation: %+v", d)
	}
}

func TestService_Revoke_OnlyCreator(t *testing.T) {
	svc, now := newTestService()
	ctx := context.Background()

	d, _ := svc.Create(ctx, CreateInput{FromAdminID: "admin-1", ToAdminID: "admin-2", StartDate: day0, EndDate: day0.AddDate(0, 0, 7)})

	if _, err := svc.Revoke(ctx, d.ID, "admin-3"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for third admin, got %v", err)
	}
	if _, err := svc.Revoke(ctx, d.ID, "admin-2"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for delegate, got %v", err)
	}
	if _, err := svc.Revoke(ctx, 404, "admin-1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Revoke(ctx, 404, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before checking the admin, got %v", err)
	}
	if _, err := svc.Revoke(ctx, d.ID, " "); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for blank admin, got %v", err)
	}

	*now = day0.Add(time.Hour)
	revoked, err := svc.Revoke(ctx, d.ID, "Admin-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if revoked.Status != StatusRevoked || revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(*now) {
		t.Fatalf("unexpected revoke result: %+v", revoked)
	}

	// Idempotente: revokedAt no cambia.
	*now = day0.Add(2 * time.Hour)
	again, err := svc.Revoke(ctx, d.ID, "admin-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !again.RevokedAt.Equal(day0.Add(time.Hour)) {
		t.Fatalf("expected original revokedAt, got %v", again.RevokedAt)
	}
}

func TestService_ActiveWindowAndDelegators(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	week := day0.AddDate(0, 0, 7)
	_, _ = svc.Create(ctx, CreateInput{FromAdminID: "admin-1", ToAdminID: "admin-9", StartDate: day0, EndDate: week})
	_, _ = svc.Create(ctx, CreateInput{FromAdminID: "admin-1", ToAdminID: "admin-9", StartDate: day0, EndDate: week})
	_, _ = svc.Create(ctx, CreateInput{FromAdminID: "admin-2", ToAdminID: "admin-9", StartDate: week, EndDate: week.AddDate(0, 0, 7)})
	revoked, _ := svc.Create(ctx, CreateInput{FromAdminID: "admin-3", ToAdminID: "admin-9", StartDate: day0, EndDate: week})
	_, _ = svc.Revoke(ctx, revoked.ID, "admin-3")

	from, err := svc.DelegatorsOf(ctx, "admin-9", day0.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(from) != 1 || from[0] != "admin-1" {
		t.Fatalf("expected only admin-1, got %v", from)
	}

	// end es exclusivo, start inclusivo.
	from, _ = svc.DelegatorsOf(ctx, "admin-9", week)
	if len(from) != 1 || from[0] != "admin-2" {
		t.Fatalf("expected only admin-2 at week boundary, got %v", from)
	}

	ok, err := svc.ActsFor(ctx, "ADMIN-9", "admin-1", day0.Add(time.Hour))
	if err != nil || !ok {
		t.Fatalf("expected admin-9 to act for admin-1, ok=%v err=%v", ok, err)
	}
	ok, _ = svc.ActsFor(ctx, "admin-9", "admin-3", day0.Add(time.Hour))
	if ok {
		t.Fatal("revoked delegation must not apply")
	}
}

func TestService_Histories_NewestFirst(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.Create(ctx, CreateInput{FromAdminID: "admin-1", ToAdminID: "admin-2", StartDate: day0, EndDate: day0.AddDate(0, 0, 1)})
	b, _ := svc.Create(ctx, CreateInput{FromAdminID: "admin-1", ToAdminID: "admin-3", StartDate: day0, EndDate: day0.AddDate(0, 0, 1)})

	mine, err := svc.MyDelegations(ctx, "admin-1")
	if err != nil || len(mine) != 2 || mine[0].ID != b.ID || mine[1].ID != a.ID {
		t.Fatalf("unexpected history: %+v err=%v", mine, err)
	}
	toMe, _ := svc.DelegationsToMe(ctx, "admin-3")
	if len(toMe) != 1 || toMe[0].ID != b.ID {
		t.Fatalf("unexpected to-me: %+v", toMe)
	}
}

func TestDelegation_Effective(t *testing.T) {
	d := Delegation{Status: StatusActive, StartDate: day0, EndDate: day0.AddDate(0, 0, 2)}

	if got := d.Effective(day0.Add(-time.Minute)); got != EffectiveScheduled {
		t.Fatalf("expected scheduled, got %s", got)
	}
	if got := d.Effective(day0); got != EffectiveActive {
		t.Fatalf("expected active, got %s", got)
	}
	if got := d.Effective(d.EndDate); got != EffectiveExpired {
		t.Fatalf("expected expired, got %s", got)
	}
	d.Status = StatusRevoked
	if got := d.Effective(day0); got != EffectiveRevoked {
		t.Fatalf("expected revoked, got %s", got)
	}
}
