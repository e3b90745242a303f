package repository

import (
	"context"

	"github.com/user/edge-probe/internal/entity"
)

// FailureRepository tracks consecutive probe failures per endpoint and mode.
type FailureRepository interface {
	// SaveOrUpdate creates a failure record or increments its streak.
	SaveOrUpdate(ctx context.Context, failure *entity.ProbeFailure) error
	// Find returns the current record, or nil when the mode is not failing.
	Find(ctx context.Context, endpoint string, mode entity.ProbeMode) (*entity.ProbeFailure, error)
	// Delete clears the streak, typically after a successful probe.
	Delete(ctx context.Context, endpoint string, mode entity.ProbeMode) error
}
