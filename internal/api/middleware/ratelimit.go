package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterResetThreshold = 10000

// RateLimiter keeps a token-bucket limiter per client key.
type RateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether a request from key fits its bucket.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.RLock()
	lim, ok := rl.limiters[key]
	rl.mu.RUnlock()
	if ok {
		return lim.Allow()
	}

	rl.mu.Lock()
	if lim, ok = rl.limiters[key]; !ok {
		lim = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = lim
	}
	rl.mu.Unlock()

	return lim.Allow()
}

// Cleanup bounds map growth. Limiters are cheap to rebuild, so past the
// threshold the whole map is reset rather than tracking last access per key.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	if len(rl.limiters) > limiterResetThreshold {
		rl.limiters = make(map[string]*rate.Limiter)
	}
	rl.mu.Unlock()
}

// RateLimit throttles requests per client IP and answers 429 when a
// bucket is empty.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rps, burst)

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			limiter.Cleanup()
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.Header.Get("X-Real-IP")
			if ip == "" {
				ip = r.RemoteAddr
			}

			if !limiter.Allow(ip) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
