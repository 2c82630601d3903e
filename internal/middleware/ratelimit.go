// ratelimit.go provides Gin middleware that enforces a fixed-window admission
// limit per source address on the sync endpoint, returning 429 with the
// protocol's error envelope before any authentication work occurs.
//
// Counters live behind the CounterStore interface. The in-process store is
// only correct for a single server instance: with N instances each keeps its
// own window and the effective limit silently becomes N times the configured
// one. Multi-instance deployments must use the Redis store so all instances
// share one counter.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/songbird-live/songbird-backend/internal/telemetry"
)

// Window is the fixed rate-limit window length.
const Window = time.Minute

// CounterStore increments the admission counter for a key within the current
// fixed window and returns the post-increment count. Implementations must make
// the increment atomic.
type CounterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// MemoryCounterStore is an in-process fixed-window counter. Single-instance
// deployments only; see the package comment.
type MemoryCounterStore struct {
	mu      sync.Mutex
	windows map[string]*windowEntry
	now     func() time.Time
}

type windowEntry struct {
	count   int64
	started time.Time
}

// NewMemoryCounterStore creates an in-process counter store.
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		windows: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// Incr bumps the key's counter, resetting it when the window has elapsed.
func (s *MemoryCounterStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.windows[key]
	if !ok || now.Sub(entry.started) >= Window {
		entry = &windowEntry{started: now}
		s.windows[key] = entry
	}
	entry.count++

	// Opportunistic cleanup: drop stale windows so long-gone addresses do not
	// accumulate forever.
	if len(s.windows) > 10000 {
		for k, e := range s.windows {
			if now.Sub(e.started) >= Window {
				delete(s.windows, k)
			}
		}
	}

	return entry.count, nil
}

// RedisCounterStore is a shared fixed-window counter backed by Redis INCR with
// a window-length expiry, so every server instance accounts against the same
// counter.
type RedisCounterStore struct {
	client *redis.Client
}

// NewRedisCounterStore creates a Redis-backed counter store.
func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

// Incr atomically bumps the key's counter, setting the window expiry when the
// key is created. INCR and EXPIRE NX run in one pipeline round-trip.
func (s *RedisCounterStore) Incr(ctx context.Context, key string) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, "ratelimit:"+key)
	pipe.ExpireNX(ctx, "ratelimit:"+key, Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RateLimitMiddleware rejects requests from a source address once it exceeds
// limit admissions in the current window. The rejection body uses the sync
// protocol's error envelope so devices can parse it like any other response.
//
// Counter store failures fail open with a warning: the sync endpoint staying
// reachable matters more than precise admission control during a Redis outage.
func RateLimitMiddleware(store CounterStore, limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := store.Incr(c.Request.Context(), c.ClientIP())
		if err != nil {
			slog.Warn("rate limit counter unavailable, admitting request", "error", err)
			c.Next()
			return
		}

		if count > limit {
			telemetry.SyncRateLimitedTotal.Inc()
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       true,
				"errorString": "Rate limit exceeded, retry later",
			})
			return
		}

		c.Next()
	}
}
