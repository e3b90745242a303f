package memory

import (
	"context"
	"sync"
	"time"
)

// CooldownStore is the in-process counterpart of the Redis cooldown keys.
type CooldownStore struct {
	expiries map[string]time.Time
	now      func() time.Time
	mutex    sync.RWMutex
}

func NewCooldownStore() *CooldownStore {
	return &CooldownStore{
		expiries: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (s *CooldownStore) MarkDiagnosed(ctx context.Context, endpoint string, expiry time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.expiries[endpoint] = s.now().Add(expiry)
	return nil
}

func (s *CooldownStore) IsCoolingDown(ctx context.Context, endpoint string) (bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	until, ok := s.expiries[endpoint]
	return ok && s.now().Before(until), nil
}

func (s *CooldownStore) Clear(ctx context.Context, endpoint string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.expiries, endpoint)
	return nil
}
