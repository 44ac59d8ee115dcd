package usecase

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/LavaJover/shvark-price-proxy/internal/domain"
)

// RateLimitBackoff is the proxy's consecutive-failure counter and
// backoff window. Only rate-limit responses move the window.
type RateLimitBackoff struct {
	mu       sync.Mutex
	failures int
	endTime  time.Time

	maxWindow  time.Duration
	jitterSpan time.Duration
	jitter     func() float64
}

func NewRateLimitBackoff(maxWindow, jitterSpan time.Duration, jitter func() float64) *RateLimitBackoff {
	if jitter == nil {
		jitter = rand.Float64
	}
	return &RateLimitBackoff{
		maxWindow:  maxWindow,
		jitterSpan: jitterSpan,
		jitter:     jitter,
	}
}

// Active reports whether now falls inside the backoff window.
func (b *RateLimitBackoff) Active(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return now.Before(b.endTime)
}

// Remaining is the time left in the window, zero when inactive.
func (b *RateLimitBackoff) Remaining(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !now.Before(b.endTime) {
		return 0
	}
	return b.endTime.Sub(now)
}

// RecordRateLimit counts a 429 and opens a window of
// min(max, 2^(failures+2)s + jitter). The window end never moves backwards.
func (b *RateLimitBackoff) RecordRateLimit(now time.Time) (failures int, window time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	seconds := math.Pow(2, float64(b.failures+2)) + b.jitter()*b.jitterSpan.Seconds()
	seconds = math.Min(b.maxWindow.Seconds(), seconds)
	window = time.Duration(seconds * float64(time.Second))

	if end := now.Add(window); end.After(b.endTime) {
		b.endTime = end
	}
	return b.failures, window
}

// RecordFailure counts a non rate-limit failure without touching the window.
func (b *RateLimitBackoff) RecordFailure() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	return b.failures
}

func (b *RateLimitBackoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.endTime = time.Time{}
}

func (b *RateLimitBackoff) Snapshot(now time.Time) domain.BackoffSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return domain.BackoffSnapshot{
		Failures: b.failures,
		EndTime:  b.endTime,
		Active:   now.Before(b.endTime),
	}
}
