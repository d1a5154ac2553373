package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// healthKey is written on every check: token revocation needs a writable
// primary, and a read-only replica still answers PING.
const healthKey = "wls:health"

// HealthCheck reports whether the session and rate-limit store can take writes.
type HealthCheck struct {
	client *goredis.Client
}

// NewHealthCheck creates a Redis health checker.
func NewHealthCheck(client *goredis.Client) *HealthCheck {
	return &HealthCheck{client: client}
}

// Ping checks connectivity, then writes a short-lived marker key.
func (h *HealthCheck) Ping(ctx context.Context) error {
	if err := h.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if err := h.client.Set(ctx, healthKey, time.Now().Unix(), 10*time.Second).Err(); err != nil {
		return fmt.Errorf("write check: %w", err)
	}
	return nil
}

// Name returns the dependency name shown by /health.
func (h *HealthCheck) Name() string {
	return "redis"
}
