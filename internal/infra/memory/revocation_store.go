package memory

import (
	"context"
	"sync"
	"time"
)

// RevocationStore remembers revoked token ids in-process until they expire.
type RevocationStore struct {
	mu      sync.Mutex
	clock   func() time.Time
	revoked map[string]time.Time
}

func NewRevocationStore() *RevocationStore {
	return &RevocationStore{
		clock:   time.Now,
		revoked: make(map[string]time.Time),
	}
}

func (s *RevocationStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	s.pruneLocked(now)
	s.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (s *RevocationStore) Revoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.revoked[tokenID]
	return ok && expiresAt.After(s.clock()), nil
}

func (s *RevocationStore) pruneLocked(now time.Time) {
	for id, expiresAt := range s.revoked {
		if !expiresAt.After(now) {
			delete(s.revoked, id)
		}
	}
}
