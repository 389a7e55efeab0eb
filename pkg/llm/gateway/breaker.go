package gateway

import (
	"sync"
	"time"
)

const DefaultCooldown = 30 * time.Second

// State of the local backend as seen by the breaker.
type State int

const (
	StateAvailable State = iota
	StateUnavailable
)

func (s State) String() string {
	if s == StateUnavailable {
		return "UNAVAILABLE"
	}
	return "AVAILABLE"
}

// Breaker is a two-state gate with a fixed cool-down.
// One transport failure opens it; one successful call closes it.
// While open, Allow reports false until the cool-down since the last failure has elapsed.
type Breaker struct {
	mu       sync.Mutex
	state    State
	failedAt time.Time
	cooldown time.Duration
	now      func() time.Time
}

func NewBreaker(cooldown time.Duration) *Breaker {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Breaker{
		cooldown: cooldown,
		now:      time.Now,
	}
}

// WithClock swaps the time source. Tests only.
func (b *Breaker) WithClock(now func() time.Time) *Breaker {
	b.now = now
	return b
}

// Allow reports whether a network attempt should be made.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateAvailable {
		return true
	}
	return b.now().Sub(b.failedAt) > b.cooldown
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	b.state = StateAvailable
	b.mu.Unlock()
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	b.state = StateUnavailable
	b.failedAt = b.now()
	b.mu.Unlock()
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
