package delegations

import "time"

type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// EffectiveStatus es el estado que se muestra: combina Status con la ventana.
type EffectiveStatus string

const (
	EffectiveScheduled EffectiveStatus = "scheduled"
	EffectiveActive    EffectiveStatus = "active"
	EffectiveExpired   EffectiveStatus = "expired"
	EffectiveRevoked   EffectiveStatus = "revoked"
)

// Delegation: FromAdminID delega su autoridad en ToAdminID durante [StartDate, EndDate).
type Delegation struct {
	ID int64

	FromAdminID string // quien delega (único que puede revocar)
	ToAdminID   string // delegado

	StartDate time.Time
	EndDate   time.Time

	Status Status
	Reason string

	CreatedAt time.Time
	RevokedAt *time.Time
}

// ActiveAt: no revocada y now dentro de [start, end).
func (d Delegation) ActiveAt(now time.Time) bool {
	return d.Status == StatusActive && !now.Before(d.StartDate) && now.Before(d.EndDate)
}

func (d Delegation) Effective(now time.Time) EffectiveStatus {
	switch {
	case d.Status == StatusRevoked:
		return EffectiveRevoked
	case now.Before(d.StartDate):
		return EffectiveScheduled
	case !now.Before(d.EndDate):
		return EffectiveExpired
	default:
		return EffectiveActive
	}
}
