package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// DefaultMaxVisitors is used when NewIPRateLimiter is given no bound
const DefaultMaxVisitors = 10000

// IPRateLimiter applies a token bucket per client IP
type IPRateLimiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	maxVisitors int
	limit       rate.Limit
	burst       int
	now         func() time.Time
}

// NewIPRateLimiter allows rps requests per second per IP with the given burst.
// At most maxVisitors IPs are tracked; the least recently seen one is dropped to make room.
func NewIPRateLimiter(rps float64, burst, maxVisitors int) *IPRateLimiter {
	if burst < 1 {
		burst = 1
	}
	if maxVisitors < 1 {
		maxVisitors = DefaultMaxVisitors
	}
	return &IPRateLimiter{
		visitors:    make(map[string]*visitor),
		maxVisitors: maxVisitors,
		limit:       rate.Limit(rps),
		burst:       burst,
		now:         time.Now,
	}
}

// Allow reports whether a request from ip may proceed now
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	v, ok := l.visitors[ip]
	if !ok {
		if len(l.visitors) >= l.maxVisitors {
			l.evictOldest()
		}
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	now := l.now()
	v.lastSeen = now
	l.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// evictOldest drops the least recently seen visitor; callers hold mu
func (l *IPRateLimiter) evictOldest() {
	var oldestIP string
	var oldest time.Time
	for ip, v := range l.visitors {
		if oldestIP == "" || v.lastSeen.Before(oldest) {
			oldestIP, oldest = ip, v.lastSeen
		}
	}
	delete(l.visitors, oldestIP)
}

// Sweep forgets visitors idle for longer than maxIdle and returns how many were removed
func (l *IPRateLimiter) Sweep(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	now := l.now()
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > maxIdle {
			delete(l.visitors, ip)
			removed++
		}
	}
	return removed
}

// Run sweeps idle visitors every interval until ctx is done
func (l *IPRateLimiter) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep(maxIdle)
		}
	}
}

// Handler rejects requests over the limit with 429
func (l *IPRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr. Forwarding headers are honored only when
// chi's RealIP runs ahead of this handler.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
