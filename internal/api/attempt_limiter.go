package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const (
	attemptLimiterIdle    = 10 * time.Minute
	attemptLimiterMaxKeys = 10000
)

// attemptLimiter holds one token bucket per key. Buckets that have not been
// touched for attemptLimiterIdle are dropped.
type attemptLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newAttemptLimiter(perMinute int) *attemptLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &attemptLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		limiters: make(map[string]*limiterEntry),
	}
}

func (limiter *attemptLimiter) allow(key string, now time.Time) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	limiter.pruneLocked(now)
	entry, ok := limiter.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(limiter.limit, limiter.burst)}
		limiter.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (limiter *attemptLimiter) reset(key string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	delete(limiter.limiters, key)
}

func (limiter *attemptLimiter) pruneLocked(now time.Time) {
	threshold := now.Add(-attemptLimiterIdle)
	for key, entry := range limiter.limiters {
		if entry.lastSeen.Before(threshold) {
			delete(limiter.limiters, key)
		}
	}
	if len(limiter.limiters) >= attemptLimiterMaxKeys {
		limiter.limiters = make(map[string]*limiterEntry)
	}
}

func requestLimiterKey(c *fiber.Ctx) string {
	key := strings.TrimSpace(c.IP())
	if key == "" {
		return "unknown"
	}
	return key
}
