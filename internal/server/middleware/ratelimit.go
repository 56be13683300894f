package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"employee-management/backend/internal/platform/httpx"
)

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client.
	RequestsPerSecond float64
	// Burst is the bucket size per client.
	Burst int
	// MaxClients bounds the number of tracked clients; the least recently seen are evicted.
	MaxClients int
	// IdleTTL drops a client's limiter after this long without requests.
	IdleTTL time.Duration
}

const (
	defaultMaxClients = 10000
	defaultIdleTTL    = 10 * time.Minute
)

// RateLimit returns a per-client token-bucket limiter keyed by the connection address.
// Requests over the limit get 429 with Retry-After.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = defaultMaxClients
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultIdleTTL
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	clients := expirable.NewLRU[string, *rate.Limiter](cfg.MaxClients, nil, cfg.IdleTTL)

	limiterFor := func(key string) *rate.Limiter {
		if l, ok := clients.Get(key); ok {
			// Re-adding refreshes the idle TTL.
			clients.Add(key, l)
			return l
		}
		l := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
		clients.Add(key, l)
		return l
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := limiterFor(remoteHost(r))
			res := limiter.Reserve()
			if !res.OK() {
				httpx.Message(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}
			if delay := res.Delay(); delay > 0 {
				res.Cancel()
				w.Header().Set("Retry-After", strconv.Itoa(int(delay.Seconds())+1))
				httpx.Message(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
			next.ServeHTTP(w, r)
		})
	}
}
