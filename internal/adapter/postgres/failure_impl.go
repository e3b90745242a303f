package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/edge-probe/internal/entity"
)

// FailureRepoImpl provides a concrete implementation for the FailureRepository interface using PostgreSQL.
type FailureRepoImpl struct {
	db *pgxpool.Pool
}

// NewFailureRepo creates a new instance of FailureRepoImpl.
func NewFailureRepo(db *pgxpool.Pool) *FailureRepoImpl {
	return &FailureRepoImpl{db: db}
}

// SaveOrUpdate creates or updates a failure record.
// It increments consecutive_failures on conflict.
func (r *FailureRepoImpl) SaveOrUpdate(ctx context.Context, failure *entity.ProbeFailure) error {
	query := `
		INSERT INTO probe_failures (endpoint, mode, failure_reason, http_status_code, last_attempt_timestamp, consecutive_failures)
		VALUES ($1, $2, $3, $4, $5, 1)
		ON CONFLICT (endpoint, mode) DO UPDATE SET
			failure_reason = EXCLUDED.failure_reason,
			http_status_code = EXCLUDED.http_status_code,
			last_attempt_timestamp = EXCLUDED.last_attempt_timestamp,
			consecutive_failures = probe_failures.consecutive_failures + 1;
	`
	_, err := r.db.Exec(ctx, query,
		failure.Endpoint,
		string(failure.Mode),
		failure.FailureReason,
		failure.HTTPStatusCode,
		failure.LastAttemptTimestamp,
	)
	return err
}

// Find returns the failure record for an endpoint and mode, or nil if there is none.
func (r *FailureRepoImpl) Find(ctx context.Context, endpoint string, mode entity.ProbeMode) (*entity.ProbeFailure, error) {
	query := `
		SELECT id, endpoint, mode, failure_reason, http_status_code, last_attempt_timestamp, consecutive_failures
		FROM probe_failures
		WHERE endpoint = $1 AND mode = $2;
	`
	var f entity.ProbeFailure
	var modeStr string
	err := r.db.QueryRow(ctx, query, endpoint, string(mode)).Scan(
		&f.ID,
		&f.Endpoint,
		&modeStr,
		&f.FailureReason,
		&f.HTTPStatusCode,
		&f.LastAttemptTimestamp,
		&f.ConsecutiveFailures,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.Mode = entity.ProbeMode(modeStr)
	return &f, nil
}

// Delete removes a failure record, typically after a successful probe.
func (r *FailureRepoImpl) Delete(ctx context.Context, endpoint string, mode entity.ProbeMode) error {
	query := `DELETE FROM probe_failures WHERE endpoint = $1 AND mode = $2;`
	_, err := r.db.Exec(ctx, query, endpoint, string(mode))
	return err
}
