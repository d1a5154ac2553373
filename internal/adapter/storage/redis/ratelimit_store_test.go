package redis_test

import (
	"context"
	"testing"
	"time"

	"wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitStore_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := redis.NewRateLimitStore(client)
	ctx := context.Background()

	t.Run("allows requests within limit", func(t *testing.T) {
		rule := ports.RateLimitRule{Limit: 3, Window: time.Minute}
		for i := int64(1); i <= 3; i++ {
			result, err := store.Allow(ctx, "user1:charge", rule)
			require.NoError(t, err)
			assert.True(t, result.Allowed, "request %d should be allowed", i)
			assert.Equal(t, int64(3), result.Limit)
			assert.Equal(t, 3-i, result.Remaining)
		}
	})

	t.Run("blocks requests over limit", func(t *testing.T) {
		result, err := store.Allow(ctx, "user1:charge", ports.RateLimitRule{Limit: 3, Window: time.Minute})
		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, int64(0), result.Remaining)
	})

	t.Run("different keys are independent", func(t *testing.T) {
		result, err := store.Allow(ctx, "user2:charge", ports.RateLimitRule{Limit: 5, Window: time.Minute})
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, int64(4), result.Remaining)
	})

	t.Run("reset after window expires", func(t *testing.T) {
		rule := ports.RateLimitRule{Limit: 1, Window: time.Minute}
		key := "user3:login"
		_, err := store.Allow(ctx, key, rule)
		require.NoError(t, err)

		result, err := store.Allow(ctx, key, rule)
		require.NoError(t, err)
		assert.False(t, result.Allowed)

		mr.FastForward(62 * time.Second)

		result, err = store.Allow(ctx, key, rule)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})

	t.Run("sets ResetAt in the future", func(t *testing.T) {
		result, err := store.Allow(ctx, "user4:history", ports.RateLimitRule{Limit: 10, Window: time.Minute})
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Greater(t, result.ResetAt, time.Now().Unix()-1)
	})
}
