package departments

import "time"

// Department es un recurso con owner (nullable hasta el primer toque).
type Department struct {
	ID int64

	Name        string
	Description string

	OwnerAdminID string

	CreatedAt time.Time
	UpdatedAt time.Time
}
