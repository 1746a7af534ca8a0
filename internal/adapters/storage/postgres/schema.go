package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"
)

// coreSchema: tablas del control de acceso, manejadas con SQL explícito.
// El índice parcial garantiza un único pending por (requester, recurso).
var coreSchema = []string{
	`CREATE TABLE IF NOT EXISTS access_requests (
		id                 BIGSERIAL PRIMARY KEY,
		resource_type      TEXT        NOT NULL,
		resource_id        BIGINT      NOT NULL,
		owner_admin_id     TEXT        NOT NULL,
		requester_admin_id TEXT        NOT NULL,
		status             TEXT        NOT NULL CHECK (status IN ('pending','approved','denied')),
		note               TEXT        NOT NULL DEFAULT '',
		requested_at       TIMESTAMPTZ NOT NULL,
		decided_at         TIMESTAMPTZ NULL,
		allowed_until      TIMESTAMPTZ NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS access_requests_one_pending
		ON access_requests (lower(requester_admin_id), resource_type, resource_id)
		WHERE status = 'pending'`,
	`CREATE INDEX IF NOT EXISTS access_requests_owner_idx
		ON access_requests (lower(owner_admin_id), requested_at DESC)`,
	`CREATE INDEX IF NOT EXISTS access_requests_requester_idx
		ON access_requests (lower(requester_admin_id), requested_at DESC)`,

	`CREATE TABLE IF NOT EXISTS delegations (
		id            BIGSERIAL PRIMARY KEY,
		from_admin_id TEXT        NOT NULL,
		to_admin_id   TEXT        NOT NULL,
		start_date    TIMESTAMPTZ NOT NULL,
		end_date      TIMESTAMPTZ NOT NULL,
		status        TEXT        NOT NULL CHECK (status IN ('active','revoked')),
		reason        TEXT        NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL,
		revoked_at    TIMESTAMPTZ NULL,
		CHECK (end_date > start_date)
	)`,
	`CREATE INDEX IF NOT EXISTS delegations_to_idx ON delegations (lower(to_admin_id), status)`,
	`CREATE INDEX IF NOT EXISTS delegations_from_idx ON delegations (lower(from_admin_id))`,
}

// EnsureSchema crea las tablas core si no existen. Es idempotente.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range coreSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Migrate crea/actualiza las tablas de entidades a partir de los modelos gorm.
func Migrate(ctx context.Context, gdb *gorm.DB) error {
	if err := gdb.WithContext(ctx).AutoMigrate(
		&departmentModel{},
		&employeeModel{},
		&candidateModel{},
		&applicationModel{},
		&leaveModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
