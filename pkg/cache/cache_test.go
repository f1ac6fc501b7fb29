package cache_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/attest/pkg/cache"
)

func TestFinalizeDefaults(t *testing.T) {
	t.Parallel()

	cfg := cache.Config{}
	require.NoError(t, cfg.Finalize(nil))

	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Equal(t, "attest:", cfg.KeyPrefix)
	assert.Equal(t, 2*time.Minute, cfg.LockTTLDuration())
	assert.Equal(t, 5*time.Second, cfg.DialTimeoutDuration())
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_REDIS_ADDR", "redis:6380")
	t.Setenv("TEST_REDIS_DB", "3")
	t.Setenv("TEST_REDIS_LOCK_TTL", "45s")

	cfg := cache.Config{}
	require.NoError(t, cfg.Finalize(&cache.Env{
		Addr:    "TEST_REDIS_ADDR",
		DB:      "TEST_REDIS_DB",
		LockTTL: "TEST_REDIS_LOCK_TTL",
	}))

	assert.Equal(t, "redis:6380", cfg.Addr)
	assert.Equal(t, 3, cfg.DB)
	assert.Equal(t, 45*time.Second, cfg.LockTTLDuration())
}

func TestFinalizeValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     cache.Config
		wantErr string
	}{
		{"negative db", cache.Config{DB: -1}, "invalid db"},
		{"bad ttl", cache.Config{LockTTL: "soon"}, "invalid lock_ttl"},
		{"zero ttl", cache.Config{LockTTL: "0s"}, "lock_ttl must be positive"},
		{"bad dial timeout", cache.Config{DialTimeout: "fast"}, "invalid dial_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	base := cache.Config{Addr: "localhost:6379", LockTTL: "2m"}
	base.Merge(&cache.Config{LockTTL: "10s", DB: 2})

	assert.Equal(t, "localhost:6379", base.Addr)
	assert.Equal(t, "10s", base.LockTTL)
	assert.Equal(t, 2, base.DB)
}

func TestAcquireUnreachable(t *testing.T) {
	t.Parallel()

	cfg := cache.Config{Addr: "127.0.0.1:1", DialTimeout: "200ms"}
	require.NoError(t, cfg.Finalize(nil))

	sys := cache.New(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lock, err := sys.Acquire(ctx, "submit:abc")
	require.Error(t, err)
	assert.Nil(t, lock)
	assert.False(t, errors.Is(err, cache.ErrLocked), "connection failure must not look like contention")
}
