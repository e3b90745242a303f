package memory

import (
	"context"
	"sync"

	"github.com/user/edge-probe/internal/entity"
)

type failureKey struct {
	endpoint string
	mode     entity.ProbeMode
}

// FailureStore tracks failure streaks in process memory.
type FailureStore struct {
	failures map[failureKey]*entity.ProbeFailure
	nextID   int64
	mutex    sync.RWMutex
}

func NewFailureStore() *FailureStore {
	return &FailureStore{failures: make(map[failureKey]*entity.ProbeFailure)}
}

func (s *FailureStore) SaveOrUpdate(ctx context.Context, failure *entity.ProbeFailure) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := failureKey{failure.Endpoint, failure.Mode}
	existing, ok := s.failures[key]
	if !ok {
		s.nextID++
		stored := *failure
		stored.ID = s.nextID
		stored.ConsecutiveFailures = 1
		s.failures[key] = &stored
		return nil
	}
	existing.FailureReason = failure.FailureReason
	existing.HTTPStatusCode = failure.HTTPStatusCode
	existing.LastAttemptTimestamp = failure.LastAttemptTimestamp
	existing.ConsecutiveFailures++
	return nil
}

func (s *FailureStore) Find(ctx context.Context, endpoint string, mode entity.ProbeMode) (*entity.ProbeFailure, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if f, ok := s.failures[failureKey{endpoint, mode}]; ok {
		copied := *f
		return &copied, nil
	}
	return nil, nil
}

func (s *FailureStore) Delete(ctx context.Context, endpoint string, mode entity.ProbeMode) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.failures, failureKey{endpoint, mode})
	return nil
}
