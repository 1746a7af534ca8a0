package recruitment

import "time"

type Candidate struct {
	ID int64

	FullName string
	Email    string
	Phone    string
	Notes    string

	OwnerAdminID string // vacío si llegó por postulación pública

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplicationStatus
// @Enum submitted, interview, offered, hired, rejected
type ApplicationStatus string

const (
	StatusSubmitted ApplicationStatus = "submitted"
	StatusInterview ApplicationStatus = "interview"
	StatusOffered   ApplicationStatus = "offered"
	StatusHired     ApplicationStatus = "hired"
	StatusRejected  ApplicationStatus = "rejected"
)

// transitions: hired y rejected son terminales.
var transitions = map[ApplicationStatus][]ApplicationStatus{
	StatusSubmitted: {StatusInterview, StatusRejected},
	StatusInterview: {StatusOffered, StatusRejected},
	StatusOffered:   {StatusHired, StatusRejected},
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusInterview, StatusOffered, StatusHired, StatusRejected:
		return true
	}
	return false
}

func (s ApplicationStatus) CanMoveTo(next ApplicationStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type JobApplication struct {
	ID int64

	CandidateID int64
	Position    string
	Status      ApplicationStatus
	Notes       string

	OwnerAdminID string

	CreatedAt time.Time
	UpdatedAt time.Time
}
