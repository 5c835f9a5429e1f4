// Package gateway provides API gateway functionality including rate limiting
// for the analyze endpoints.
package gateway

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qrshield/engine/internal/config"
)

// RateLimiter applies a per-client fixed-window request budget. Analysis is
// CPU-only and fast, so an in-process window is enough; the limiter exists
// to keep one client from monopolizing a shared deployment.
type RateLimiter struct {
	logger  *zap.Logger
	cfg     config.RateLimitConfig
	mu      sync.Mutex
	windows map[string]*window

	// now is swapped in tests.
	now func() time.Time
}

type window struct {
	start time.Time
	used  int
}

// NewRateLimiter creates a limiter from config.
func NewRateLimiter(cfg config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 120
	}
	if cfg.BatchCost <= 0 {
		cfg.BatchCost = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		logger:  logger,
		cfg:     cfg,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow charges cost units against the client's current minute window and
// reports whether the request may proceed, plus the remaining budget and
// the time until the window resets.
func (rl *RateLimiter) Allow(clientID string, cost int) (allowed bool, remaining int, reset time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[clientID]
	if !ok || now.Sub(w.start) >= time.Minute {
		w = &window{start: now}
		rl.windows[clientID] = w
		if len(rl.windows) > 4096 {
			rl.sweepLocked(now)
		}
	}

	reset = time.Minute - now.Sub(w.start)
	if w.used+cost > rl.cfg.RequestsPerMinute {
		return false, rl.cfg.RequestsPerMinute - w.used, reset
	}
	w.used += cost
	return true, rl.cfg.RequestsPerMinute - w.used, reset
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	for id, w := range rl.windows {
		if now.Sub(w.start) >= time.Minute {
			delete(rl.windows, id)
		}
	}
}

// Middleware enforces the limit per client IP. cost is charged per request;
// batch endpoints pass a higher cost.
func (rl *RateLimiter) Middleware(cost int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			clientID := clientIP(r)
			allowed, remaining, reset := rl.Allow(clientID, cost)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.cfg.RequestsPerMinute))
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				rl.logger.Debug("rate limit exceeded", zap.String("client", clientID))
				w.Header().Set("Retry-After", strconv.Itoa(int(reset.Seconds())+1))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprintf(w, `{"error":"rate_limit_exceeded","retry_after":%d}`, int(reset.Seconds())+1)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP identifies the client for rate limiting. The router's RealIP
// middleware already folds forwarding headers into RemoteAddr; the header
// fallbacks cover deployments that mount the limiter without it. Only the
// first X-Forwarded-For entry counts: the rest of the chain is
// proxy-appended and attacker-extendable.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			xff = xff[:i]
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
