package recruitment

import (
	"context"
	"time"
)

type CandidateRepository interface {
	Create(ctx context.Context, c Candidate) (Candidate, error)
	GetByID(ctx context.Context, id int64) (Candidate, error)
	List(ctx context.Context, ownerAdminID string) ([]Candidate, error)
	Update(ctx context.Context, c Candidate) (Candidate, error)
	Delete(ctx context.Context, id int64) error
	ClaimOwner(ctx context.Context, id int64, adminID string) (string, error)
}

type ApplicationRepository interface {
	Create(ctx context.Context, a JobApplication) (JobApplication, error)
	GetByID(ctx context.Context, id int64) (JobApplication, error)
	List(ctx context.Context, ownerAdminID string) ([]JobApplication, error)
	ListByCandidate(ctx context.Context, candidateID int64) ([]JobApplication, error)
	Update(ctx context.Context, a JobApplication) (JobApplication, error)
	Delete(ctx context.Context, id int64) error
	ClaimOwner(ctx context.Context, id int64, adminID string) (string, error)

	// SetStatus cambia el estado solo si sigue en from. applied=false => estado actual.
	SetStatus(ctx context.Context, id int64, from, to ApplicationStatus, at time.Time) (JobApplication, bool, error)
}
