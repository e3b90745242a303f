package repository

import (
	"context"

	"github.com/user/edge-probe/internal/entity"
)

// RunRepository stores completed diagnosis runs.
type RunRepository interface {
	Save(ctx context.Context, run *entity.Run) error
	// List returns the most recent runs, newest first.
	List(ctx context.Context, limit int) ([]*entity.Run, error)
}
