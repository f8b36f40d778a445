package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	apperrors "todoapp/internal/errors"
)

const maxTrackedVisitors = 10000

// RateLimiter applies a per-client-IP token bucket. Used on the auth
// endpoints to slow down credential stuffing.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing `limit` events per second with
// the given burst, tracked per client IP.
func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
	}
}

// Middleware returns the echo middleware enforcing the limit.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.allow(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, apperrors.ErrorResponse{
					Error: "too many requests",
					Code:  "RATE_LIMITED",
				})
			}
			return next(c)
		}
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		if len(rl.visitors) >= maxTrackedVisitors {
			rl.evictStaleLocked()
		}
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

// evictStaleLocked drops visitors idle for over an hour. Caller holds mu.
func (rl *RateLimiter) evictStaleLocked() {
	cutoff := time.Now().Add(-time.Hour)
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}
