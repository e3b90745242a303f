package redis

import (
	"context"
	"fmt"
	"github.com/redis/go-redis/v9"
	"github.com/user/edge-probe/pkg/utils"
	"time"
)

const cooldownPrefix = "edgeprobe:cooldown:"

// CooldownRepoImpl provides a concrete implementation for the CooldownRepository interface using Redis.
type CooldownRepoImpl struct {
	client *redis.Client
}

// NewCooldownRepo creates a new instance of CooldownRepoImpl.
func NewCooldownRepo(client *redis.Client) *CooldownRepoImpl {
	return &CooldownRepoImpl{client: client}
}

func (r *CooldownRepoImpl) generateKey(endpoint string) string {
	return fmt.Sprintf("%s%s", cooldownPrefix, utils.HashURL(endpoint))
}

// MarkDiagnosed starts the cooldown window for an endpoint.
func (r *CooldownRepoImpl) MarkDiagnosed(ctx context.Context, endpoint string, expiry time.Duration) error {
	return r.client.SetEx(ctx, r.generateKey(endpoint), "1", expiry).Err()
}

// IsCoolingDown reports whether the endpoint was diagnosed within the window.
func (r *CooldownRepoImpl) IsCoolingDown(ctx context.Context, endpoint string) (bool, error) {
	val, err := r.client.Exists(ctx, r.generateKey(endpoint)).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}

// Clear ends the cooldown early, used for forced diagnoses.
func (r *CooldownRepoImpl) Clear(ctx context.Context, endpoint string) error {
	return r.client.Del(ctx, r.generateKey(endpoint)).Err()
}
