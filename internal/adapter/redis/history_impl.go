package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/user/edge-probe/internal/entity"
)

const historyKey = "edgeprobe:history"

// HistoryRepoImpl keeps the most recent runs in a capped Redis list.
type HistoryRepoImpl struct {
	client  *redis.Client
	maxSize int64
}

// NewHistoryRepo creates a new instance of HistoryRepoImpl holding at most maxSize runs.
func NewHistoryRepo(client *redis.Client, maxSize int) *HistoryRepoImpl {
	if maxSize <= 0 {
		maxSize = 50
	}
	return &HistoryRepoImpl{client: client, maxSize: int64(maxSize)}
}

// Push adds a run to the left side of the list and trims it to maxSize.
func (r *HistoryRepoImpl) Push(ctx context.Context, run *entity.Run) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, historyKey, payload)
	pipe.LTrim(ctx, historyKey, 0, r.maxSize-1)
	_, err = pipe.Exec(ctx)
	return err
}

// Latest returns the newest run, or nil when the list is empty.
func (r *HistoryRepoImpl) Latest(ctx context.Context) (*entity.Run, error) {
	payload, err := r.client.LIndex(ctx, historyKey, 0).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var run entity.Run
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, err
	}
	return &run, nil
}
