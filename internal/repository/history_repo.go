package repository

import (
	"context"

	"github.com/user/edge-probe/internal/entity"
)

// HistoryRepository keeps a short list of recent runs for fast reads.
type HistoryRepository interface {
	// Push adds a run to the front of the list.
	Push(ctx context.Context, run *entity.Run) error
	// Latest returns the newest run, or nil when the list is empty.
	Latest(ctx context.Context) (*entity.Run, error)
}
