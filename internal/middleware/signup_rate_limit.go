package middleware

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/retain-dental/retain/internal/metrics"
)

const (
	defaultSignupsPerMinute = 10
	signupRateKeyPrefix     = "rl:signup:"
	limiterIdleTTL          = 10 * time.Minute
)

// SignupRateLimit caps onboarding attempts per mobile number (or client IP when
// the body carries none). Counts live in Redis so every replica shares them; when
// Redis is absent or failing the limit is enforced per process instead.
func SignupRateLimit(cache *redis.Client, perMinute int, m *metrics.Metrics) fiber.Handler {
	if perMinute <= 0 {
		perMinute = defaultSignupsPerMinute
	}
	local := newKeyedLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)

	return func(c *fiber.Ctx) error {
		var req struct {
			Mobile string `json:"mobile"`
		}
		_ = c.BodyParser(&req)
		subject := strings.TrimSpace(req.Mobile)
		if subject == "" {
			subject = c.IP()
		}

		var allowed bool
		if cache != nil {
			var err error
			if allowed, err = redisAllow(c.UserContext(), cache, signupRateKeyPrefix+subject, perMinute); err != nil {
				allowed = local.allow(subject, time.Now())
			}
		} else {
			allowed = local.allow(subject, time.Now())
		}

		if !allowed {
			m.IncSignupRateLimited()
			c.Set(fiber.HeaderRetryAfter, "60")
			return fiber.NewError(fiber.StatusTooManyRequests, "too many onboarding attempts, try again later")
		}
		return c.Next()
	}
}

// redisAllow counts an attempt in a one-minute window. A counter found without
// an expiry, such as one whose EXPIRE was lost, gets one so it cannot lock the
// subject out for good.
func redisAllow(ctx context.Context, cache *redis.Client, key string, perMinute int) (bool, error) {
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	if _, err := cache.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	}); err != nil {
		return false, err
	}

	if incr.Val() == 1 || ttl.Val() < 0 {
		if err := cache.Expire(ctx, key, time.Minute).Err(); err != nil {
			return false, err
		}
	}
	return incr.Val() <= int64(perMinute), nil
}

// keyedLimiter applies a token bucket per key and evicts idle entries.
type keyedLimiter struct {
	limit rate.Limit
	burst int

	mu    sync.Mutex
	byKey map[string]*limiterEntry
	hits  uint64
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newKeyedLimiter(limit rate.Limit, burst int) *keyedLimiter {
	return &keyedLimiter{limit: limit, burst: burst, byKey: make(map[string]*limiterEntry)}
}

func (l *keyedLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.byKey[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[key] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%512 == 0 {
		cutoff := now.Add(-limiterIdleTTL)
		for k, v := range l.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(l.byKey, k)
			}
		}
	}
	return allowed
}
