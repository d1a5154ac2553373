package memory

import (
	"context"
	"sync"
	"time"
)

// revocationSweepInterval spaces out purges of expired entries.
const revocationSweepInterval = time.Minute

// RevocationStore implements ports.TokenRevocationStore for a single
// process. Entries are dropped once the token they revoke has expired.
type RevocationStore struct {
	mu      sync.Mutex
	revoked   map[string]time.Time
	lastSweep time.Time
	now       func() time.Time
}

// NewRevocationStore creates an empty revocation store.
func NewRevocationStore() *RevocationStore {
	return &RevocationStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke records tokenID until ttl elapses.
func (s *RevocationStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= revocationSweepInterval {
		s.lastSweep = now
		for id, until := range s.revoked {
			if !now.Before(until) {
				delete(s.revoked, id)
			}
		}
	}
	s.revoked[tokenID] = now.Add(ttl)
	return nil
}

// IsRevoked reports whether tokenID was revoked and has not yet expired.
func (s *RevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !s.now().Before(until) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
