// Package cache provides Redis-backed advisory locks with lifecycle coordination.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/attest/pkg/lifecycle"
)

// ErrLocked indicates another holder owns the requested lock.
var ErrLocked = errors.New("lock held by another request")

// releaseScript deletes the key only while it still carries the caller's token,
// so a lock that expired and was re-acquired is never released by the old holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// System manages the Redis connection and hands out short-lived locks.
type System interface {
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Acquire takes the lock named key for the configured TTL.
	// Returns ErrLocked if it is already held.
	Acquire(ctx context.Context, key string) (Lock, error)
}

// Lock is a held lock.
type Lock interface {
	// Release frees the lock if this holder still owns it.
	Release(ctx context.Context) error
}

type cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a cache system. The connection is verified in Start.
func New(cfg *Config, logger *slog.Logger) System {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeoutDuration(),
	})

	return &cache{
		client: client,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.LockTTLDuration(),
		logger: logger.With("system", "cache"),
	}
}

func (c *cache) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting cache connection")

	lc.OnStartup(func() {
		if err := c.client.Ping(lc.Context()).Err(); err != nil {
			c.logger.Error("redis ping failed", "error", err)
			return
		}
		c.logger.Info("cache connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		c.logger.Info("closing cache connection")

		if err := c.client.Close(); err != nil {
			c.logger.Error("cache close failed", "error", err)
			return
		}
		c.logger.Info("cache connection closed")
	})

	return nil
}

func (c *cache) Acquire(ctx context.Context, key string) (Lock, error) {
	token := uuid.NewString()
	full := c.prefix + key
	ok, err := c.client.SetNX(ctx, full, token, c.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", full, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, full)
	}

	return &lock{client: c.client, key: full, token: token, logger: c.logger}, nil
}

type lock struct {
	client *redis.Client
	key    string
	token  string
	logger *slog.Logger
}

func (l *lock) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int64()
	if err != nil {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	if n == 0 {
		l.logger.Warn("lock expired before release", "key", l.key)
	}
	return nil
}
