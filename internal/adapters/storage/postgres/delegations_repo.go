package postgres

import (
	"context"
	"database/sql"
	"time"

	"hr-portal/internal/domain/delegations"
)

const delegationColumns = `
	id, from_admin_id, to_admin_id,
	start_date, end_date,
	status, reason,
	created_at, revoked_at`

type DelegationsRepo struct {
	db *sql.DB
}

func NewDelegationsRepo(db *sql.DB) *DelegationsRepo {
	return &DelegationsRepo{db: db}
}

var _ delegations.Repository = (*DelegationsRepo)(nil)

func (r *DelegationsRepo) Create(ctx context.Context, d delegations.Delegation) (delegations.Delegation, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO delegations (
			from_admin_id, to_admin_id,
			start_date, end_date,
			status, reason,
			created_at, revoked_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING `+delegationColumns,
		d.FromAdminID,
		d.ToAdminID,
		d.StartDate,
		d.EndDate,
		string(d.Status),
		d.Reason,
		d.CreatedAt,
		toNullTime(d.RevokedAt),
	)
	return scanDelegation(row)
}

func (r *DelegationsRepo) Revoke(ctx context.Context, id int64, at time.Time) (delegations.Delegation, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE delegations
		SET status = 'revoked', revoked_at = $2
		WHERE id = $1
		  AND status = 'active'
		RETURNING `+delegationColumns,
		id, at,
	)
	d, err := scanDelegation(row)
	if err == nil {
		return d, true, nil
	}
	if !notFound(err) {
		return delegations.Delegation{}, false, err
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return delegations.Delegation{}, false, err
	}
	return current, false, nil
}

func (r *DelegationsRepo) GetByID(ctx context.Context, id int64) (delegations.Delegation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+delegationColumns+` FROM delegations WHERE id = $1`, id)
	d, err := scanDelegation(row)
	if err != nil {
		if notFound(err) {
			return delegations.Delegation{}, ErrNotFound
		}
		return delegations.Delegation{}, err
	}
	return d, nil
}

func (r *DelegationsRepo) ListActiveTo(ctx context.Context, to string, now time.Time) ([]delegations.Delegation, error) {
	return r.list(ctx, `
		WHERE lower(to_admin_id) = lower($1)
		  AND status = 'active'
		  AND start_date <= $2
		  AND end_date > $2`, to, now)
}

func (r *DelegationsRepo) ListByFrom(ctx context.Context, from string) ([]delegations.Delegation, error) {
	return r.list(ctx, `WHERE lower(from_admin_id) = lower($1)`, from)
}

func (r *DelegationsRepo) ListByTo(ctx context.Context, to string) ([]delegations.Delegation, error) {
	return r.list(ctx, `WHERE lower(to_admin_id) = lower($1)`, to)
}

func (r *DelegationsRepo) list(ctx context.Context, where string, args ...any) ([]delegations.Delegation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+delegationColumns+`
		FROM delegations
		`+where+`
		ORDER BY created_at DESC, id DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]delegations.Delegation, 0)
	for rows.Next() {
		d, err := scanDelegation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDelegation(row rowScanner) (delegations.Delegation, error) {
	var d delegations.Delegation
	var status string
	var revokedAt sql.NullTime

	if err := row.Scan(
		&d.ID,
		&d.FromAdminID,
		&d.ToAdminID,
		&d.StartDate,
		&d.EndDate,
		&status,
		&d.Reason,
		&d.CreatedAt,
		&revokedAt,
	); err != nil {
		return delegations.Delegation{}, err
	}

	d.Status = delegations.Status(status)
	d.RevokedAt = fromNullTime(revokedAt)
	return d, nil
}
