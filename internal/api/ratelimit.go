// internal/api/ratelimit.go
package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"govsupport-chatbot/internal/common/config"
	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/common/metrics"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per endpoint and client address.
type RateLimiter struct {
	mu       sync.Mutex
	limits   func(endpoint string) config.RateLimitConfig
	visitors map[string]*visitor
	now      func() time.Time
}

func NewRateLimiter(limits func(endpoint string) config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limits:   limits,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Allow takes one token for client on endpoint.
func (rl *RateLimiter) Allow(endpoint, client string) bool {
	key := endpoint + "|" + client

	rl.mu.Lock()
	v, ok := rl.visitors[key]
	if !ok {
		cfg := rl.limits(endpoint)
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = rl.now()
	rl.mu.Unlock()

	return v.limiter.AllowN(v.lastSeen, 1)
}

// Cleanup forgets clients idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	cutoff := rl.now().Add(-maxIdle)
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

// Middleware rejects requests over the endpoint's limit with 429.
func (rl *RateLimiter) Middleware(endpoint string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(endpoint, clientIP(r)) {
			metrics.RateLimitedRequests.WithLabelValues(endpoint).Inc()
			w.Header().Set("Retry-After", "1")
			writeError(w, errors.NewRateLimitedError(endpoint))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = strings.TrimSuffix(strings.TrimPrefix(r.RemoteAddr, "["), "]")
	}
	return ip
}
