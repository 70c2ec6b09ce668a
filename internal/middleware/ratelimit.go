package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"catalog-api/internal/model"
	"catalog-api/internal/response"

	"golang.org/x/time/rate"
)

const (
	// visitorTTL is how long an idle client bucket is kept.
	visitorTTL = 10 * time.Minute
	// cleanupEvery is the number of lookups between idle bucket sweeps.
	cleanupEvery = 5000
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per client address.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	now   func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
	lookups  int
}

// NewRateLimiter creates a limiter allowing rps requests per second per
// client with bursts up to burst. A burst below 1 is raised to 1.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// limiterFor returns the bucket for key, sweeping idle buckets periodically.
func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= cleanupEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= visitorTTL {
				delete(rl.visitors, k)
			}
		}
		rl.lookups = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}

	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// Handler rejects requests over the limit with a 429 failure envelope.
func (rl *RateLimiter) Handler(formatter *response.Formatter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.limiterFor(clientKey(r)).AllowN(rl.now(), 1) {
				w.Header().Set("Retry-After", "1")
				formatter.Error(w, r, model.NewDomainError(model.KindRateLimited, model.MsgTooManyRequests))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller by the transport peer host, without the port.
// Forwarded headers are client-controlled and ignored.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
