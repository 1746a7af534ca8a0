package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hr-portal/internal/domain/accessrequests"
	"hr-portal/internal/domain/resources"
)

const accessRequestColumns = `
	id, resource_type, resource_id,
	owner_admin_id, requester_admin_id,
	status, note,
	requested_at, decided_at, allowed_until`

type AccessRequestsRepo struct {
	db *sql.DB
}

func NewAccessRequestsRepo(db *sql.DB) *AccessRequestsRepo {
	return &AccessRequestsRepo{db: db}
}

var _ accessrequests.Repository = (*AccessRequestsRepo)(nil)

// CreatePending se apoya en access_requests_one_pending: si el insert choca,
// devuelve el pending que ganó. Si ese pending se decidió entre medio, reintenta.
func (r *AccessRequestsRepo) CreatePending(ctx context.Context, ar accessrequests.AccessRequest) (accessrequests.AccessRequest, bool, error) {
	for attempt := 0; attempt < 3; attempt++ {
		row := r.db.QueryRowContext(ctx, `
			INSERT INTO access_requests (
				resource_type, resource_id,
				owner_admin_id, requester_admin_id,
				status, note, requested_at
			) VALUES ($1,$2,$3,$4,'pending',$5,$6)
			ON CONFLICT DO NOTHING
			RETURNING `+accessRequestColumns,
			string(ar.ResourceType),
			ar.ResourceID,
			ar.OwnerAdminID,
			ar.RequesterAdminID,
			ar.Note,
			ar.RequestedAt,
		)
		created, err := scanAccessRequest(row)
		if err == nil {
			return created, true, nil
		}
		if !notFound(err) {
			if isUniqueViolation(err) {
				continue
			}
			return accessrequests.AccessRequest{}, false, err
		}

		existing, ok, err := r.FindPending(ctx, ar.RequesterAdminID, ar.Ref())
		if err != nil {
			return accessrequests.AccessRequest{}, false, err
		}
		if ok {
			return existing, false, nil
		}
	}
	return accessrequests.AccessRequest{}, false, fmt.Errorf("create pending access request: too much contention on %s", ar.Ref())
}

func (r *AccessRequestsRepo) Decide(ctx context.Context, id int64, d accessrequests.Decision) (accessrequests.AccessRequest, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE access_requests
		SET
			status = $2,
			decided_at = $3,
			allowed_until = $4
		WHERE id = $1
		  AND status = 'pending'
		RETURNING `+accessRequestColumns,
		id,
		string(d.Status),
		d.DecidedAt,
		toNullTime(d.AllowedUntil),
	)
	updated, err := scanAccessRequest(row)
	if err == nil {
		return updated, true, nil
	}
	if !notFound(err) {
		return accessrequests.AccessRequest{}, false, err
	}

	// Ya no estaba pending (o no existe): devolvemos el estado actual.
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return accessrequests.AccessRequest{}, false, err
	}
	return current, false, nil
}

func (r *AccessRequestsRepo) GetByID(ctx context.Context, id int64) (accessrequests.AccessRequest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accessRequestColumns+` FROM access_requests WHERE id = $1`, id)
	ar, err := scanAccessRequest(row)
	if err != nil {
		if notFound(err) {
			return accessrequests.AccessRequest{}, ErrNotFound
		}
		return accessrequests.AccessRequest{}, err
	}
	return ar, nil
}

func (r *AccessRequestsRepo) FindActiveApproval(ctx context.Context, requester string, ref resources.Ref, now time.Time) (accessrequests.AccessRequest, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accessRequestColumns+`
		FROM access_requests
		WHERE lower(requester_admin_id) = lower($1)
		  AND resource_type = $2
		  AND resource_id = $3
		  AND status = 'approved'
		  AND allowed_until > $4
		ORDER BY id DESC
		LIMIT 1
	`, requester, string(ref.Type), ref.ID, now)
	return optionalAccessRequest(row)
}

func (r *AccessRequestsRepo) FindPending(ctx context.Context, requester string, ref resources.Ref) (accessrequests.AccessRequest, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accessRequestColumns+`
		FROM access_requests
		WHERE lower(requester_admin_id) = lower($1)
		  AND resource_type = $2
		  AND resource_id = $3
		  AND status = 'pending'
		LIMIT 1
	`, requester, string(ref.Type), ref.ID)
	return optionalAccessRequest(row)
}

func (r *AccessRequestsRepo) ListByOwner(ctx context.Context, owner string) ([]accessrequests.AccessRequest, error) {
	return r.list(ctx, `lower(owner_admin_id) = lower($1)`, owner)
}

func (r *AccessRequestsRepo) ListByRequester(ctx context.Context, requester string) ([]accessrequests.AccessRequest, error) {
	return r.list(ctx, `lower(requester_admin_id) = lower($1)`, requester)
}

func (r *AccessRequestsRepo) list(ctx context.Context, where string, adminID string) ([]accessrequests.AccessRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accessRequestColumns+`
		FROM access_requests
		WHERE `+where+`
		ORDER BY requested_at DESC, id DESC
	`, adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]accessrequests.AccessRequest, 0)
	for rows.Next() {
		ar, err := scanAccessRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ar)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccessRequest(row rowScanner) (accessrequests.AccessRequest, error) {
	var ar accessrequests.AccessRequest
	var resourceType, status string
	var decidedAt, allowedUntil sql.NullTime

	if err := row.Scan(
		&ar.ID,
		&resourceType,
		&ar.ResourceID,
		&ar.OwnerAdminID,
		&ar.RequesterAdminID,
		&status,
		&ar.Note,
		&ar.RequestedAt,
		&decidedAt,
		&allowedUntil,
	); err != nil {
		return accessrequests.AccessRequest{}, err
	}

	ar.ResourceType = resources.Type(resourceType)
	ar.Status = accessrequests.Status(status)
	ar.DecidedAt = fromNullTime(decidedAt)
	ar.AllowedUntil = fromNullTime(allowedUntil)
	return ar, nil
}

func optionalAccessRequest(row *sql.Row) (accessrequests.AccessRequest, bool, error) {
	ar, err := scanAccessRequest(row)
	if err != nil {
		if notFound(err) {
			return accessrequests.AccessRequest{}, false, nil
		}
		return accessrequests.AccessRequest{}, false, err
	}
	return ar, true, nil
}
