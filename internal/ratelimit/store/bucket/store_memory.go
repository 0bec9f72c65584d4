// Package bucket counts requests per key in sliding windows.
package bucket

import (
	"context"
	"math"
	"sync"
	"time"

	"donorprofile/internal/ratelimit/models"
)

// InMemoryBucketStore keeps sliding windows in process memory. Limits are per
// instance, which is sufficient for a single-replica deployment.
type InMemoryBucketStore struct {
	mu      sync.Mutex
	buckets map[string]*slidingWindow
	now     func() time.Time
}

// slidingWindow tracks request timestamps; counting within a rolling window
// avoids the burst allowed at fixed-window boundaries.
type slidingWindow struct {
	timestamps []time.Time
	window     time.Duration
}

// Option configures the store.
type Option func(*InMemoryBucketStore)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryBucketStore) {
		s.now = now
	}
}

func NewInMemoryBucketStore(opts ...Option) *InMemoryBucketStore {
	s := &InMemoryBucketStore{
		buckets: make(map[string]*slidingWindow),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow records one request for key if it fits in limit per window.
func (s *InMemoryBucketStore) Allow(_ context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sw := s.getOrCreateBucket(key, window)
	sw.cleanup(now)

	if len(sw.timestamps) < limit {
		sw.timestamps = append(sw.timestamps, now)
		return &models.RateLimitResult{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit - len(sw.timestamps),
			ResetAt:   sw.timestamps[0].Add(window),
		}, nil
	}

	resetAt := now.Add(window)
	if len(sw.timestamps) > 0 {
		resetAt = sw.timestamps[0].Add(window)
	}
	return &models.RateLimitResult{
		Allowed:    false,
		Limit:      limit,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: int(math.Ceil(resetAt.Sub(now).Seconds())),
	}, nil
}

// Reset clears the counter for a key.
func (s *InMemoryBucketStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// Sweep drops windows with no live timestamps and returns how many it removed.
func (s *InMemoryBucketStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, sw := range s.buckets {
		sw.cleanup(now)
		if len(sw.timestamps) == 0 {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *InMemoryBucketStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (sw *slidingWindow) cleanup(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

// getOrCreateBucket must be called while holding s.mu.
func (s *InMemoryBucketStore) getOrCreateBucket(key string, window time.Duration) *slidingWindow {
	if sw := s.buckets[key]; sw != nil {
		return sw
	}
	sw := &slidingWindow{window: window}
	s.buckets[key] = sw
	return sw
}
