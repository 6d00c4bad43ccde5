package middleware

import (
	"sync"
	"time"

	"notesweb/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore maps client IPs to token buckets. Entries idle longer than
// staleAfter are dropped on the next sweep.
type limiterStore struct {
	mu         sync.Mutex
	entries    map[string]*limiterEntry
	limit      rate.Limit
	burst      int
	staleAfter time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

func newLimiterStore(limit rate.Limit, burst int, staleAfter time.Duration) *limiterStore {
	return &limiterStore{
		entries:    make(map[string]*limiterEntry),
		limit:      limit,
		burst:      burst,
		staleAfter: staleAfter,
		lastSweep:  time.Now(),
		now:        time.Now,
	}
}

func (s *limiterStore) allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) > time.Minute {
		s.sweep(now)
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (s *limiterStore) sweep(now time.Time) {
	cutoff := now.Add(-s.staleAfter)
	for k, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
	s.lastSweep = now
}

// MutationRateLimiter caps how fast one client can submit note changes.
// A non-positive rps disables it.
func MutationRateLimiter(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	store := newLimiterStore(rate.Limit(rps), burst, 10*time.Minute)

	return func(c *gin.Context) {
		if !store.allow(c.ClientIP()) {
			TrackError("rate_limited")
			c.Header("Retry-After", "1")
			utils.TooManyRequests(c, "Too many requests")
			return
		}
		c.Next()
	}
}
