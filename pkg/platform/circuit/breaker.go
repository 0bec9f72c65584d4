// Package circuit provides a consecutive-failure circuit breaker for outbound calls.
package circuit

import (
	"sync"
	"time"
)

// State is the breaker position.
type State int

const (
	StateClosed State = iota
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// StateChange reports a transition caused by a Record call.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker opens after failureThreshold consecutive failures and closes after
// successThreshold consecutive successes. While open, Allow permits one probe
// per cooldown period.
type Breaker struct {
	mu               sync.Mutex
	name             string
	state            State
	failureCount     int
	successCount     int
	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	openedAt         time.Time
	lastProbe        time.Time
	now              func() time.Time
}

// Option configures a Breaker.
type Option func(*Breaker)

func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		b.cooldown = d
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		b.now = now
	}
}

// New builds a closed breaker. Defaults: 5 failures to open, 2 successes to close,
// 10s probe cooldown.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: 5,
		successThreshold: 2,
		cooldown:         10 * time.Second,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string {
	return b.name
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) IsOpen() bool {
	return b.State() == StateOpen
}

// Allow reports whether a call may proceed. A closed breaker always allows;
// an open one allows a single probe once the cooldown has elapsed since it
// opened or since the previous probe.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateClosed {
		return true
	}
	now := b.now()
	last := b.openedAt
	if b.lastProbe.After(last) {
		last = b.lastProbe
	}
	if now.Sub(last) >= b.cooldown {
		b.lastProbe = now
		return true
	}
	return false
}

// RecordFailure counts a failed call. It returns true when the breaker is
// (now or already) open.
func (b *Breaker) RecordFailure() (bool, StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failureCount++
	b.successCount = 0
	if b.state == StateOpen {
		return true, StateChange{}
	}
	if b.failureCount >= b.failureThreshold {
		b.state = StateOpen
		b.openedAt = b.now()
		return true, StateChange{Opened: true}
	}
	return false, StateChange{}
}

// RecordSuccess counts a successful call. It returns true when the breaker is closed afterwards.
func (b *Breaker) RecordSuccess() (bool, StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen {
		b.successCount++
		if b.successCount >= b.successThreshold {
			b.state = StateClosed
			b.failureCount = 0
			b.successCount = 0
			return true, StateChange{Closed: true}
		}
		return false, StateChange{}
	}
	b.failureCount = 0
	return true, StateChange{}
}

// Reset closes the breaker and clears counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failureCount = 0
	b.successCount = 0
	b.openedAt = time.Time{}
	b.lastProbe = time.Time{}
}
