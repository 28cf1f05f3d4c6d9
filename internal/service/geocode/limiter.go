// internal/service/geocode/limiter.go

package geocode

import (
	"sync"
	"time"
)

// IntervalLimiter enforces a minimum interval between outbound geocoding
// requests, per the provider's usage policy. A refused acquisition has no
// side effects.
type IntervalLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// NewIntervalLimiter creates a limiter with the given minimum interval.
func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	return &IntervalLimiter{
		interval: interval,
		now:      time.Now,
	}
}

// TryAcquire reports whether a request may go out now. On success the
// grant timestamp is recorded; on refusal nothing changes.
func (l *IntervalLimiter) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !l.last.IsZero() && now.Sub(l.last) < l.interval {
		return false
	}
	l.last = now
	return true
}
