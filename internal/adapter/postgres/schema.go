package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS diagnosis_runs (
	id              TEXT PRIMARY KEY,
	endpoint        TEXT NOT NULL,
	started_at      TIMESTAMPTZ NOT NULL,
	verdict         TEXT NOT NULL,
	exit_code       INTEGER NOT NULL,
	unauthenticated JSONB,
	authenticated   JSONB,
	diagnosis       JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS diagnosis_runs_started_at_idx ON diagnosis_runs (started_at DESC);

CREATE TABLE IF NOT EXISTS probe_failures (
	id                     BIGSERIAL PRIMARY KEY,
	endpoint               TEXT NOT NULL,
	mode                   TEXT NOT NULL,
	failure_reason         TEXT NOT NULL,
	http_status_code       INTEGER NOT NULL DEFAULT 0,
	last_attempt_timestamp TIMESTAMPTZ NOT NULL,
	consecutive_failures   INTEGER NOT NULL DEFAULT 1,
	UNIQUE (endpoint, mode)
);
`

// EnsureSchema creates the tables used by the repositories if they are missing.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schema)
	return err
}
