package stdresp

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrTooManyRequests is written when RateLimit rejects a request.
var ErrTooManyRequests = Error(http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))

// RateLimitConfig configures the RateLimit middleware.
type RateLimitConfig struct {
	Rate    float64                      // requests per second
	Burst   int                          // default: 1
	KeyFunc func(r *http.Request) string // default: remote IP
	MaxIdle time.Duration                // default: 5m
}

// RateLimit returns middleware that applies per-client token bucket limits.
// Rejected requests get a 429 problem response with a Retry-After header.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = remoteHost
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = 5 * time.Minute
	}

	set := &limiterSet{
		limit:   rate.Limit(cfg.Rate),
		burst:   cfg.Burst,
		maxIdle: cfg.MaxIdle,
		entries: make(map[string]*limiterEntry),
	}
	retryAfter := "1"
	if cfg.Rate > 0 {
		retryAfter = strconv.Itoa(int(math.Ceil(1 / cfg.Rate)))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !set.allow(cfg.KeyFunc(r), time.Now()) {
				w.Header().Set("Retry-After", retryAfter)
				writeErrorResponse(w, ErrTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet keeps one limiter per key and drops keys idle for longer
// than maxIdle.
type limiterSet struct {
	limit   rate.Limit
	burst   int
	maxIdle time.Duration

	mu        sync.Mutex
	entries   map[string]*limiterEntry
	lastPrune time.Time
}

func (s *limiterSet) allow(key string, now time.Time) bool {
	s.mu.Lock()
	if now.Sub(s.lastPrune) >= s.maxIdle {
		for k, e := range s.entries {
			if now.Sub(e.lastSeen) > s.maxIdle {
				delete(s.entries, k)
			}
		}
		s.lastPrune = now
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	s.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}
