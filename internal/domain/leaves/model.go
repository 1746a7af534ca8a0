package leaves

import "time"

// Status
// @Enum pending, approved, rejected
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// LeaveRequest es un pedido de licencia. StartDate y EndDate son días completos (inclusive).
type LeaveRequest struct {
	ID int64

	EmployeeID int64
	StartDate  time.Time
	EndDate    time.Time
	Reason     string

	Status    Status
	DecidedAt *time.Time
	DecidedBy string // admin o "simulated-manager"

	OwnerAdminID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (l LeaveRequest) IsPending() bool {
	return l.Status == StatusPending
}

// Covers indica si day cae dentro de [StartDate, EndDate], comparando por fecha.
func (l LeaveRequest) Covers(day time.Time) bool {
	d := dateOnly(day)
	return !d.Before(dateOnly(l.StartDate)) && !d.After(dateOnly(l.EndDate))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
