package employees

import "time"

// Status
// @Enum active, on_leave, terminated
type Status string

const (
	StatusActive     Status = "active"
	StatusOnLeave    Status = "on_leave"
	StatusTerminated Status = "terminated"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusOnLeave, StatusTerminated:
		return true
	}
	return false
}

type Employee struct {
	ID int64

	FirstName string
	LastName  string
	Email     string // único, en minúsculas
	Position  string

	DepartmentID *int64
	HireDate     *time.Time

	Status       Status
	OwnerAdminID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
