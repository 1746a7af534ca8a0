package accessrequests

import (
	"time"

	"hr-portal/internal/domain/resources"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

// DefaultGrant aplica cuando Approve recibe allowMinutes <= 0.
const DefaultGrant = 15 * time.Minute

// MaxAllowMinutes es el grant más largo que acepta Approve (un año).
const MaxAllowMinutes = 365 * 24 * 60

// AccessRequest es una negociación de acceso temporal a un recurso ajeno.
// Pending -> Approved | Denied, sin vuelta atrás. Nunca se borra.
type AccessRequest struct {
	ID int64

	ResourceType resources.Type
	ResourceID   int64

	OwnerAdminID     string // quien decide
	RequesterAdminID string // quien pide

	Status Status
	Note   string

	RequestedAt  time.Time
	DecidedAt    *time.Time
	AllowedUntil *time.Time // solo con Status == approved
}

func (r AccessRequest) Ref() resources.Ref {
	return resources.Ref{Type: r.ResourceType, ID: r.ResourceID}
}

func (r AccessRequest) IsPending() bool {
	return r.Status == StatusPending
}

// IsActive: aprobado y sin vencer.
func (r AccessRequest) IsActive(now time.Time) bool {
	return r.Status == StatusApproved && r.AllowedUntil != nil && r.AllowedUntil.After(now)
}

// Decision es la transición que aplica Repository.Decide.
type Decision struct {
	Status       Status
	DecidedAt    time.Time
	AllowedUntil *time.Time
}
