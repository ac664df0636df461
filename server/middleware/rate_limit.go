package middleware

import (
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	apierrors "github.com/soleshop/soleshop/server/internal/errors"
)

// RateLimiter keeps one token bucket per key (user ID, or client IP for
// anonymous calls).
type RateLimiter struct {
	mu     sync.Mutex
	limits map[string]*rate.Limiter

	rate  rate.Limit
	burst int
}

// NewRateLimiter creates a limiter allowing perSecond sustained requests
// per key with the given burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limits: make(map[string]*rate.Limiter),
		rate:   rate.Limit(perSecond),
		burst:  burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limits[key]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.limits[key] = limiter
	return limiter
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Middleware rejects over-limit requests with 429. The key is the
// authenticated user ID when present, otherwise the client IP.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := UserIDFromContext(c)
			if key == "" {
				key = c.RealIP()
			}
			if !rl.Allow(key) {
				return apierrors.RateLimitExceeded("rate limit exceeded")
			}
			return next(c)
		}
	}
}
