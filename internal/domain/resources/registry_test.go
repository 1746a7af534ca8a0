package resources

import (
	"context"
	"errors"
	"testing"

	"hr-portal/internal/domain/apperr"
)

type fakeLocator struct {
	owners map[int64]string
}

func (f *fakeLocator) OwnerOf(_ context.Context, id int64) (string, error) {
	o, ok := f.owners[id]
	if !ok {
		return "", apperr.ErrNotFound
	}
	return o, nil
}

func (f *fakeLocator) ClaimOwner(_ context.Context, id int64, adminID string) (string, error) {
	o, ok := f.owners[id]
	if !ok {
		return "", apperr.ErrNotFound
	}
	if o == "" {
		f.owners[id] = adminID
		return adminID, nil
	}
	return o, nil
}

func TestRegistry_ResolveOwnerAndExists(t *testing.T) {
	reg := NewRegistry()
	reg.Register(TypeEmployee, &fakeLocator{owners: map[int64]string{15: "admin-1", 16: ""}})

	ctx := context.Background()

	owner, err := reg.ResolveOwner(ctx, Ref{TypeEmployee, 15})
	if err != nil || owner != "admin-1" {
		t.Fatalf("expected admin-1, got %q %v", owner, err)
	}

	owner, err = reg.ResolveOwner(ctx, Ref{TypeEmployee, 16})
	if err != nil || owner != "" {
		t.Fatalf("expected blank owner, got %q %v", owner, err)
	}

	if ok, _ := reg.Exists(ctx, Ref{TypeEmployee, 99}); ok {
		t.Fatalf("expected missing employee")
	}

	// Tipo sin registrar => NotFound.
	if _, err := reg.ResolveOwner(ctx, Ref{TypeDepartment, 1}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unregistered type, got %v", err)
	}
	if _, err := reg.ResolveOwner(ctx, Ref{Type("Payroll"), 1}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown tag, got %v", err)
	}
}

func TestRegistry_Adopt_FirstWins(t *testing.T) {
	reg := NewRegistry()
	reg.Register(TypeLeaveRequest, &fakeLocator{owners: map[int64]string{3: ""}})
	ctx := context.Background()

	owner, err := reg.Adopt(ctx, Ref{TypeLeaveRequest, 3}, "admin-1")
	if err != nil || owner != "admin-1" {
		t.Fatalf("first adopt: got %q %v", owner, err)
	}
	owner, err = reg.Adopt(ctx, Ref{TypeLeaveRequest, 3}, "admin-2")
	if err != nil || owner != "admin-1" {
		t.Fatalf("second adopt must keep admin-1, got %q %v", owner, err)
	}
}

func TestRegistry_Register_UnknownTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	NewRegistry().Register(Type("Payroll"), &fakeLocator{})
}
