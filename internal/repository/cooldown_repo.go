package repository

import (
	"context"
	"time"
)

// CooldownRepository rate-limits diagnoses of the same endpoint.
type CooldownRepository interface {
	MarkDiagnosed(ctx context.Context, endpoint string, expiry time.Duration) error
	IsCoolingDown(ctx context.Context, endpoint string) (bool, error)
	Clear(ctx context.Context, endpoint string) error
}
