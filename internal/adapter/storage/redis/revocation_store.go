package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RevocationStore implements ports.TokenRevocationStore using Redis keys
// that expire together with the revoked token.
type RevocationStore struct {
	client *goredis.Client
	prefix string
}

// NewRevocationStore creates a new Redis-backed revocation store.
func NewRevocationStore(client *goredis.Client) *RevocationStore {
	return &RevocationStore{
		client: client,
		prefix: "revoked:",
	}
}

// Revoke marks the token ID as logged out for ttl. A non-positive ttl means
// the token has already expired and nothing needs to be stored.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.prefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token ID was logged out.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := s.client.Get(ctx, s.prefix+tokenID).Err()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis revocation check: %w", err)
	}
	return true, nil
}
