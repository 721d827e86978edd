package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit throttles a route group per authenticated user, falling back to
// the client IP. A non-positive perMinute disables the limit.
func RateLimit(perMinute, burst int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiters := newLimiterSet(perMinute, burst, time.Now)

	return func(c *gin.Context) {
		key := c.GetString(ContextUserID)
		if key == "" {
			key = c.ClientIP()
		}
		now := limiters.now()
		reservation := limiters.get(key, now).ReserveN(now, 1)
		if delay := reservation.DelayFrom(now); delay > 0 {
			reservation.CancelAt(now)
			c.Header("Retry-After", strconv.Itoa(int(delay.Seconds())+1))
			abortWithError(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, slow down")
			return
		}
		c.Next()
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet keeps one limiter per caller. An entry idle for idleTTL has a
// full bucket again, so dropping it loses no state.
type limiterSet struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
	limiters  map[string]*limiterEntry
}

func newLimiterSet(perMinute, burst int, now func() time.Time) *limiterSet {
	if burst <= 0 {
		burst = 1
	}
	interval := time.Minute / time.Duration(perMinute)
	return &limiterSet{
		limit:     rate.Every(interval),
		burst:     burst,
		idleTTL:   interval * time.Duration(burst),
		lastSweep: now(),
		now:       now,
		limiters:  make(map[string]*limiterEntry),
	}
}

func (s *limiterSet) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) >= s.idleTTL {
		for k, e := range s.limiters {
			if now.Sub(e.lastSeen) >= s.idleTTL {
				delete(s.limiters, k)
			}
		}
		s.lastSweep = now
	}

	e, ok := s.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter
}
