package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hr-portal/internal/domain/accessrequests"
	"hr-portal/internal/domain/apperr"
	"hr-portal/internal/domain/delegations"
	"hr-portal/internal/domain/departments"
	"hr-portal/internal/domain/employees"
	"hr-portal/internal/domain/leaves"
	"hr-portal/internal/domain/resources"
)

var t0 = time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)

func TestAccessRequestsRepo_CreatePendingCollapsesConcurrentCreates(t *testing.T) {
	repo := NewAccessRequestsRepo()
	ctx := context.Background()
	ref := resources.Ref{Type: resources.TypeEmployee, ID: 7}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		ids     = map[int64]bool{}
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			requester := "admin-2"
			if i%2 == 0 {
				requester = "ADMIN-2"
			}
			ar, ok, err := repo.CreatePending(ctx, accessrequests.AccessRequest{
				ResourceType:     ref.Type,
				ResourceID:       ref.ID,
				OwnerAdminID:     "admin-1",
				RequesterAdminID: requester,
				RequestedAt:      t0,
			})
			if err != nil {
				t.Errorf("create pending: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if ok {
				created++
			}
			ids[ar.ID] = true
		}(i)
	}
	wg.Wait()

	if created != 1 || len(ids) != 1 {
		t.Fatalf("expected one pending, created=%d ids=%v", created, ids)
	}
}

func TestAccessRequestsRepo_DecideOnlyFromPending(t *testing.T) {
	repo := NewAccessRequestsRepo()
	ctx := context.Background()

	ar, _, _ := repo.CreatePending(ctx, accessrequests.AccessRequest{
		ResourceType: resources.TypeDepartment, ResourceID: 1,
		OwnerAdminID: "admin-1", RequesterAdminID: "admin-2", RequestedAt: t0,
	})

	until := t0.Add(15 * time.Minute)
	got, applied, err := repo.Decide(ctx, ar.ID, accessrequests.Decision{Status: accessrequests.StatusApproved, DecidedAt: t0, AllowedUntil: &until})
	if err != nil || !applied || got.Status != accessrequests.StatusApproved {
		t.Fatalf("unexpected decide: %+v applied=%v err=%v", got, applied, err)
	}

	got, applied, err = repo.Decide(ctx, ar.ID, accessrequests.Decision{Status: accessrequests.StatusDenied, DecidedAt: t0})
	if err != nil || applied || got.Status != accessrequests.StatusApproved {
		t.Fatalf("second decide must be a no-op: %+v applied=%v err=%v", got, applied, err)
	}

	if _, _, err := repo.Decide(ctx, 99, accessrequests.Decision{Status: accessrequests.StatusDenied, DecidedAt: t0}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	active, ok, _ := repo.FindActiveApproval(ctx, "Admin-2", ar.Ref(), t0.Add(time.Minute))
	if !ok || active.ID != ar.ID {
		t.Fatalf("expected active approval, got %+v ok=%v", active, ok)
	}
	if _, ok, _ := repo.FindActiveApproval(ctx, "admin-2", ar.Ref(), until); ok {
		t.Fatal("approval must expire at allowed_until")
	}
}

func TestDelegationsRepo_RevokeIsConditional(t *testing.T) {
	repo := NewDelegationsRepo()
	ctx := context.Background()

	d, _ := repo.Create(ctx, delegations.Delegation{
		FromAdminID: "admin-1", ToAdminID: "admin-2",
		StartDate: t0, EndDate: t0.Add(48 * time.Hour),
		Status: delegations.StatusActive, CreatedAt: t0,
	})

	active, _ := repo.ListActiveTo(ctx, "ADMIN-2", t0.Add(time.Hour))
	if len(active) != 1 {
		t.Fatalf("expected 1 active delegation, got %d", len(active))
	}

	first, applied, err := repo.Revoke(ctx, d.ID, t0.Add(time.Hour))
	if err != nil || !applied {
		t.Fatalf("unexpected revoke: applied=%v err=%v", applied, err)
	}
	second, applied, _ := repo.Revoke(ctx, d.ID, t0.Add(2*time.Hour))
	if applied || !second.RevokedAt.Equal(*first.RevokedAt) {
		t.Fatalf("second revoke must keep the first revoked_at, got %+v", second)
	}

	active, _ = repo.ListActiveTo(ctx, "admin-2", t0.Add(time.Hour))
	if len(active) != 0 {
		t.Fatalf("revoked delegation must not be active, got %d", len(active))
	}
}

func TestDepartmentsRepo_ClaimOwnerOnce(t *testing.T) {
	repo := NewDepartmentsRepo()
	ctx := context.Background()

	d, _ := repo.Create(ctx, departments.Department{Name: "Legales", CreatedAt: t0, UpdatedAt: t0})

	var wg sync.WaitGroup
	owners := make([]string, 5)
	for i := range owners {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			owners[i], _ = repo.ClaimOwner(ctx, d.ID, []string{"a", "b", "c", "d", "e"}[i])
		}(i)
	}
	wg.Wait()

	for _, o := range owners {
		if o != owners[0] {
			t.Fatalf("all claimers must see the same owner, got %v", owners)
		}
	}

	// Update no pisa el owner.
	d.Name = "Legales y Compliance"
	d.OwnerAdminID = "intruder"
	updated, _ := repo.Update(ctx, d)
	if updated.OwnerAdminID != owners[0] {
		t.Fatalf("update must keep owner, got %q", updated.OwnerAdminID)
	}

	if _, err := repo.ClaimOwner(ctx, 404, "a"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEmployeesRepo_EmailConflictAndSetStatus(t *testing.T) {
	repo := NewEmployeesRepo()
	ctx := context.Background()

	e, err := repo.Create(ctx, employees.Employee{FirstName: "Ana", Email: "ana@example.com", Status: employees.StatusActive})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := repo.Create(ctx, employees.Employee{FirstName: "Ana B", Email: "ANA@example.com", Status: employees.StatusActive}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	applied, err := repo.SetStatus(ctx, e.ID, employees.StatusActive, employees.StatusOnLeave)
	if err != nil || !applied {
		t.Fatalf("expected applied, got %v err=%v", applied, err)
	}
	applied, _ = repo.SetStatus(ctx, e.ID, employees.StatusActive, employees.StatusTerminated)
	if applied {
		t.Fatal("stale from must not apply")
	}
}

func TestLeavesRepo_PendingAndCovering(t *testing.T) {
	repo := NewLeavesRepo()
	ctx := context.Background()

	day := func(s string) time.Time { d, _ := time.Parse(time.DateOnly, s); return d }

	older, _ := repo.Create(ctx, leaves.LeaveRequest{EmployeeID: 1, StartDate: day("2025-05-05"), EndDate: day("2025-05-09"), Status: leaves.StatusPending, CreatedAt: t0.Add(-time.Hour)})
	newer, _ := repo.Create(ctx, leaves.LeaveRequest{EmployeeID: 2, StartDate: day("2025-05-05"), EndDate: day("2025-05-05"), Status: leaves.StatusPending, CreatedAt: t0.Add(-10 * time.Minute)})

	pending, _ := repo.ListPending(ctx, t0)
	if len(pending) != 2 || pending[0].ID != older.ID {
		t.Fatalf("expected oldest first, got %+v", pending)
	}

	if _, applied, _ := repo.Decide(ctx, newer.ID, leaves.StatusApproved, "admin-1", t0); !applied {
		t.Fatal("expected decision to apply")
	}
	covering, _ := repo.ListApprovedCovering(ctx, day("2025-05-05").Add(13*time.Hour))
	if len(covering) != 1 || covering[0].ID != newer.ID {
		t.Fatalf("unexpected covering: %+v", covering)
	}
	covering, _ = repo.ListApprovedCovering(ctx, day("2025-05-06"))
	if len(covering) != 0 {
		t.Fatalf("expected none covering 05-06, got %+v", covering)
	}
}

func TestLeavesRepo_UpdateOnlyWhilePending(t *testing.T) {
	repo := NewLeavesRepo()
	ctx := context.Background()

	day := func(s string) time.Time { d, _ := time.Parse(time.DateOnly, s); return d }

	l, _ := repo.Create(ctx, leaves.LeaveRequest{EmployeeID: 1, StartDate: day("2025-05-05"), EndDate: day("2025-05-09"), Status: leaves.StatusPending, CreatedAt: t0})

	stale := l
	if _, applied, _ := repo.Decide(ctx, l.ID, leaves.StatusApproved, "simulated-manager", t0); !applied {
		t.Fatal("expected decision to apply")
	}

	stale.EndDate = day("2025-05-20")
	if _, err := repo.Update(ctx, stale); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected ErrConflict on decided leave, got %v", err)
	}
	got, _ := repo.GetByID(ctx, l.ID)
	if !got.EndDate.Equal(day("2025-05-09")) || got.Status != leaves.StatusApproved {
		t.Fatalf("decided leave must keep its dates, got %+v", got)
	}

	if _, err := repo.Update(ctx, leaves.LeaveRequest{ID: 404}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
