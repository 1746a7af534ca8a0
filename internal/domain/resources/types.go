package resources

import (
	"strings"

	"hr-portal/internal/domain/apperr"
)

// Type es el tag cerrado de recursos sobre los que razona el control de acceso.
type Type string

const (
	TypeDepartment     Type = "Department"
	TypeEmployee       Type = "Employee"
	TypeCandidate      Type = "Candidate"
	TypeJobApplication Type = "JobApplication"
	TypeLeaveRequest   Type = "LeaveRequest"
)

// AllTypes en orden estable.
var AllTypes = []Type{
	TypeDepartment,
	TypeEmployee,
	TypeCandidate,
	TypeJobApplication,
	TypeLeaveRequest,
}

func (t Type) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseType acepta el tag sin importar mayúsculas ("employee", "EMPLOYEE").
func ParseType(raw string) (Type, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperr.Invalid("resource type required")
	}
	for _, t := range AllTypes {
		if strings.EqualFold(string(t), raw) {
			return t, nil
		}
	}
	return "", apperr.Invalid("unknown resource type " + raw)
}

// Ref identifica un recurso: (tipo, id numérico).
type Ref struct {
	Type Type
	ID   int64
}

func (r Ref) String() string {
	return Encode(r.Type, r.ID)
}

// Scope es el filtro "tuyos vs todos" de los listados.
type Scope string

const (
	ScopeMine Scope = "mine"
	ScopeAll  Scope = "all"
)

// ParseScope: vacío => all.
func ParseScope(raw string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all":
		return ScopeAll, nil
	case "mine", "yours":
		return ScopeMine, nil
	default:
		return "", apperr.Invalid("scope must be mine or all")
	}
}

// OwnerFilter traduce el scope al owner a filtrar ("" = sin filtro).
func OwnerFilter(scope Scope, adminID string) string {
	if scope == ScopeMine {
		return strings.TrimSpace(adminID)
	}
	return ""
}

// SameAdmin compara ids de admin sin distinguir mayúsculas.
func SameAdmin(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
