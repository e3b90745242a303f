package memory

import (
	"context"
	"sync"

	"github.com/user/edge-probe/internal/entity"
)

// RunStore keeps runs in process memory. It serves as both the run
// repository and the recent-run history when no storage is configured.
type RunStore struct {
	runs    []*entity.Run // newest first
	maxSize int
	mutex   sync.RWMutex
}

// NewRunStore creates a store holding at most maxSize runs (0 means unbounded).
func NewRunStore(maxSize int) *RunStore {
	return &RunStore{maxSize: maxSize}
}

func (s *RunStore) Save(ctx context.Context, run *entity.Run) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for i, existing := range s.runs {
		if existing.ID == run.ID {
			s.runs[i] = run
			return nil
		}
	}
	s.runs = append([]*entity.Run{run}, s.runs...)
	if s.maxSize > 0 && len(s.runs) > s.maxSize {
		s.runs = s.runs[:s.maxSize]
	}
	return nil
}

// Push is Save under the HistoryRepository name.
func (s *RunStore) Push(ctx context.Context, run *entity.Run) error {
	return s.Save(ctx, run)
}

func (s *RunStore) Latest(ctx context.Context) (*entity.Run, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if len(s.runs) == 0 {
		return nil, nil
	}
	return s.runs[0], nil
}

func (s *RunStore) List(ctx context.Context, limit int) ([]*entity.Run, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if limit <= 0 || limit > len(s.runs) {
		limit = len(s.runs)
	}
	out := make([]*entity.Run, limit)
	copy(out, s.runs[:limit])
	return out, nil
}
