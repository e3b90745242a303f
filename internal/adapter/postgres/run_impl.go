package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/edge-probe/internal/entity"
)

// RunRepoImpl provides a concrete implementation for the RunRepository interface using PostgreSQL.
type RunRepoImpl struct {
	db *pgxpool.Pool
}

// NewRunRepo creates a new instance of RunRepoImpl.
func NewRunRepo(db *pgxpool.Pool) *RunRepoImpl {
	return &RunRepoImpl{db: db}
}

// Save stores a run. Probe results and the diagnosis are kept as JSONB.
func (r *RunRepoImpl) Save(ctx context.Context, run *entity.Run) error {
	unauthJSON, err := json.Marshal(run.Unauthenticated)
	if err != nil {
		return err
	}
	authJSON, err := json.Marshal(run.Authenticated)
	if err != nil {
		return err
	}
	diagnosisJSON, err := json.Marshal(run.Diagnosis)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO diagnosis_runs (id, endpoint, started_at, verdict, exit_code, unauthenticated, authenticated, diagnosis)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			verdict = EXCLUDED.verdict,
			exit_code = EXCLUDED.exit_code,
			unauthenticated = EXCLUDED.unauthenticated,
			authenticated = EXCLUDED.authenticated,
			diagnosis = EXCLUDED.diagnosis;
	`
	_, err = r.db.Exec(ctx, query,
		run.ID,
		run.Endpoint,
		run.StartedAt,
		string(run.Diagnosis.Verdict),
		run.ExitCode,
		unauthJSON,
		authJSON,
		diagnosisJSON,
	)
	return err
}

// List retrieves the most recent runs, newest first.
func (r *RunRepoImpl) List(ctx context.Context, limit int) ([]*entity.Run, error) {
	query := `
		SELECT id, endpoint, started_at, exit_code, unauthenticated, authenticated, diagnosis
		FROM diagnosis_runs
		ORDER BY started_at DESC
		LIMIT $1;
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*entity.Run
	for rows.Next() {
		var run entity.Run
		var unauthJSON, authJSON, diagnosisJSON []byte
		if err := rows.Scan(
			&run.ID,
			&run.Endpoint,
			&run.StartedAt,
			&run.ExitCode,
			&unauthJSON,
			&authJSON,
			&diagnosisJSON,
		); err != nil {
			return nil, err
		}
		if err := decodeRun(&run, unauthJSON, authJSON, diagnosisJSON); err != nil {
			return nil, fmt.Errorf("decode run %s: %w", run.ID, err)
		}
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

func decodeRun(run *entity.Run, unauthJSON, authJSON, diagnosisJSON []byte) error {
	if len(unauthJSON) > 0 {
		if err := json.Unmarshal(unauthJSON, &run.Unauthenticated); err != nil {
			return err
		}
	}
	if len(authJSON) > 0 {
		if err := json.Unmarshal(authJSON, &run.Authenticated); err != nil {
			return err
		}
	}
	return json.Unmarshal(diagnosisJSON, &run.Diagnosis)
}
