package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Credential endpoints (register, login) allow each client IP 5 requests per
// second with bursts of 10, enough for a form retry but not for guessing.
const (
	AuthRequestsPerSecond = 5
	AuthBurst             = 10
)

// idleClientTTL is how long a client IP keeps its bucket after its last
// request.
const idleClientTTL = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type clientLimiter struct {
	mu      sync.Mutex
	buckets map[string]*clientBucket
	rps     rate.Limit
	burst   int
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	return &clientLimiter{
		buckets: make(map[string]*clientBucket),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

// allow takes a token from ip's bucket, creating the bucket on first sight.
func (cl *clientLimiter) allow(ip string, now time.Time) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	b, ok := cl.buckets[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(cl.rps, cl.burst)}
		cl.buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

func (cl *clientLimiter) sweep() {
	ticker := time.NewTicker(idleClientTTL)
	defer ticker.Stop()

	for now := range ticker.C {
		cl.evictIdle(now)
	}
}

func (cl *clientLimiter) evictIdle(now time.Time) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	for ip, b := range cl.buckets {
		if now.Sub(b.lastSeen) > idleClientTTL {
			delete(cl.buckets, ip)
		}
	}
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// RateLimit returns middleware that gives every client IP its own token
// bucket of rps requests per second and the given burst. It runs after chi's
// RealIP, so RemoteAddr already reflects forwarding headers. Rejected requests
// get 429 with a Retry-After header and the API's JSON message body.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := newClientLimiter(rps, burst)
	go limiter.sweep()
	retryAfter := strconv.Itoa(max(1, int(1/rps)))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.allow(clientIP(r), time.Now()) {
				w.Header().Set("Retry-After", retryAfter)
				writeJSONError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthRateLimit is RateLimit with the credential endpoint policy.
func AuthRateLimit() func(http.Handler) http.Handler {
	return RateLimit(AuthRequestsPerSecond, AuthBurst)
}
