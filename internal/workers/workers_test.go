package workers

import (
	"context"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"hr-portal/internal/adapters/storage/memory"
	"hr-portal/internal/domain/employees"
	"hr-portal/internal/domain/leaves"
	"hr-portal/internal/domain/resources"
)

type allowAll struct{}

func (allowAll) EnsureEditAccess(ctx context.Context, ref resources.Ref, acting string) error {
	return nil
}

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

type fixture struct {
	emps   *employees.Service
	leaves *leaves.Service
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: time.Date(2025, 8, 4, 11, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }

	f.emps = employees.NewService(memory.NewEmployeesRepo(), allowAll{}, nil).WithClock(clock)
	f.leaves = leaves.NewService(memory.NewLeavesRepo(), f.emps, allowAll{}, nil).WithClock(clock)
	return f
}

func (f *fixture) employee(t *testing.T, email string) employees.Employee {
	t.Helper()
	e, err := f.emps.Create(context.Background(), "admin-1", employees.CreateInput{FirstName: "Emp", Email: email})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	return e
}

func (f *fixture) leave(t *testing.T, employeeID int64, from, to string) leaves.LeaveRequest {
	t.Helper()
	l, err := f.leaves.Create(context.Background(), "admin-1", leaves.CreateInput{EmployeeID: employeeID, StartDate: day(from), EndDate: day(to)})
	if err != nil {
		t.Fatalf("create leave: %v", err)
	}
	return l
}

func TestLeaveStatusSync_FollowsApprovedLeaves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	onLeave := f.employee(t, "on@example.com")
	working := f.employee(t, "work@example.com")
	fired := f.employee(t, "gone@example.com")

	l := f.leave(t, onLeave.ID, "2025-08-04", "2025-08-06")
	if _, err := f.leaves.Approve(ctx, l.ID, "admin-1"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	// Pendiente: no cuenta.
	f.leave(t, working.ID, "2025-08-04", "2025-08-04")

	terminated := employees.StatusTerminated
	if _, err := f.emps.Update(ctx, fired.ID, "admin-1", employees.UpdateInput{Status: &terminated}); err != nil {
		t.Fatalf("terminate: %v", err)
	}
	lf := f.leave(t, fired.ID, "2025-08-01", "2025-08-10")
	_, _ = f.leaves.Approve(ctx, lf.ID, "admin-1")

	sync := NewLeaveStatusSync(f.emps, f.leaves, nil)

	changed, err := sync.Sync(ctx)
	if err != nil || changed != 1 {
		t.Fatalf("expected 1 change, got %d err=%v", changed, err)
	}
	assertStatus(t, f, onLeave.ID, employees.StatusOnLeave)
	assertStatus(t, f, working.ID, employees.StatusActive)
	assertStatus(t, f, fired.ID, employees.StatusTerminated)

	// Segunda pasada el mismo día: nada que hacer.
	if changed, _ := sync.Sync(ctx); changed != 0 {
		t.Fatalf("expected idempotent pass, got %d changes", changed)
	}

	// Terminada la licencia (el 06 es el último día inclusive), vuelve a active.
	f.now = time.Date(2025, 8, 7, 0, 30, 0, 0, time.UTC)
	if changed, _ := sync.Sync(ctx); changed != 1 {
		t.Fatalf("expected return to active, got %d changes", changed)
	}
	assertStatus(t, f, onLeave.ID, employees.StatusActive)
	assertStatus(t, f, fired.ID, employees.StatusTerminated)
}

func assertStatus(t *testing.T, f *fixture, id int64, want employees.Status) {
	t.Helper()
	e, err := f.emps.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get employee: %v", err)
	}
	if e.Status != want {
		t.Fatalf("employee %d: expected %s, got %s", id, want, e.Status)
	}
}

func TestSimulatedManager_RespectsRatioAndMinAge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.employee(t, "emp@example.com")

	created := f.now
	for i := 0; i < 200; i++ {
		f.leave(t, e.ID, "2025-09-01", "2025-09-02")
	}
	// Uno recién creado no tiene la edad mínima.
	f.now = created.Add(5 * time.Minute)
	fresh := f.leave(t, e.ID, "2025-09-03", "2025-09-03")

	mgr := NewSimulatedManager(f.leaves, f.leaves, SimulatedManagerOptions{
		MinAge:       2 * time.Minute,
		ApproveRatio: 0.7,
		Rand:         rand.New(rand.NewSource(42)),
	}, nil)

	decided, err := mgr.DecidePending(ctx)
	if err != nil || decided != 200 {
		t.Fatalf("expected 200 decisions, got %d err=%v", decided, err)
	}

	all, _ := f.leaves.ListByEmployee(ctx, e.ID)
	approved := 0
	for _, l := range all {
		if l.ID == fresh.ID {
			if !l.IsPending() {
				t.Fatal("fresh request must stay pending")
			}
			continue
		}
		if l.DecidedBy != SimulatedDecider {
			t.Fatalf("unexpected decider %q", l.DecidedBy)
		}
		if l.Status == leaves.StatusApproved {
			approved++
		}
	}
	if approved < 120 || approved > 160 {
		t.Fatalf("approved ratio out of range: %d/200", approved)
	}
}

func TestSimulatedManager_SkipsHumanDecisions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.employee(t, "emp@example.com")
	l := f.leave(t, e.ID, "2025-09-01", "2025-09-02")

	f.now = f.now.Add(time.Hour)
	// Snapshot viejo: el humano decide después de que el manager listó.
	stale := stalePending{items: []leaves.LeaveRequest{l}}
	if _, err := f.leaves.Reject(ctx, l.ID, "admin-1"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	mgr := NewSimulatedManager(stale, f.leaves, SimulatedManagerOptions{ApproveRatio: 1, Rand: rand.New(rand.NewSource(1))}, nil)
	decided, err := mgr.DecidePending(ctx)
	if err != nil || decided != 0 {
		t.Fatalf("expected no decisions, got %d err=%v", decided, err)
	}
	got, _ := f.leaves.Get(ctx, l.ID)
	if got.Status != leaves.StatusRejected || got.DecidedBy != "admin-1" {
		t.Fatalf("human decision must win, got %+v", got)
	}
}

type stalePending struct{ items []leaves.LeaveRequest }

func (s stalePending) PendingOlderThan(ctx context.Context, age time.Duration) ([]leaves.LeaveRequest, error) {
	return s.items, nil
}

type countingRunner struct{ runs atomic.Int32 }

func (c *countingRunner) RunOnce(ctx context.Context) error {
	c.runs.Add(1)
	return nil
}

func TestLoop_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &countingRunner{}

	done := make(chan struct{})
	go func() {
		Loop(ctx, "test", time.Hour, r, nil)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for r.runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("loop did not run on start")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
}
