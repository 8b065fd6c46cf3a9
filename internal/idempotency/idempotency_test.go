package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ClaimRelease(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ok, err := s.Claim(ctx, "order:u1:k1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Claim(ctx, "order:u1:k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Release(ctx, "order:u1:k1"))
	ok, err = s.Claim(ctx, "order:u1:k1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStore_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	s := NewRedisStore(client)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ok, err := s.Claim(ctx, "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, s.Ping(ctx))
	assert.Equal(t, 24*time.Hour, s.ttl)
}
