// internal/service/geocode/limiter_test.go

package geocode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterRefusesWithinInterval(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewIntervalLimiter(2 * time.Second)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.TryAcquire())

	now = now.Add(1500 * time.Millisecond)
	assert.False(t, limiter.TryAcquire())
}

func TestLimiterGrantsAfterInterval(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewIntervalLimiter(2 * time.Second)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.TryAcquire())

	now = now.Add(2100 * time.Millisecond)
	assert.True(t, limiter.TryAcquire())
}

func TestLimiterRefusalHasNoSideEffects(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewIntervalLimiter(2 * time.Second)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.TryAcquire())

	// Refusals must not push the window forward: repeated refused calls
	// still allow a grant once the original interval elapses.
	now = now.Add(time.Second)
	assert.False(t, limiter.TryAcquire())
	now = now.Add(500 * time.Millisecond)
	assert.False(t, limiter.TryAcquire())
	now = now.Add(600 * time.Millisecond)
	assert.True(t, limiter.TryAcquire())
}

func TestLimiterFirstAcquireAlwaysGranted(t *testing.T) {
	limiter := NewIntervalLimiter(time.Hour)
	assert.True(t, limiter.TryAcquire())
}
