package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestBreakerOpensOnSingleFailure(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	b := NewBreaker(30 * time.Second).WithClock(clock.Now)

	assert.True(t, b.Allow())
	assert.Equal(t, StateAvailable, b.State())

	b.RecordFailure()
	assert.Equal(t, StateUnavailable, b.State())
	assert.False(t, b.Allow())

	clock.Advance(30 * time.Second)
	assert.False(t, b.Allow(), "cool-down must be strictly exceeded")

	clock.Advance(time.Millisecond)
	assert.True(t, b.Allow())
}

func TestBreakerTrialCallOutcome(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	b := NewBreaker(30 * time.Second).WithClock(clock.Now)

	b.RecordFailure()
	clock.Advance(31 * time.Second)
	assert.True(t, b.Allow())

	// failed trial call restarts the cool-down from now
	b.RecordFailure()
	assert.False(t, b.Allow())
	clock.Advance(20 * time.Second)
	assert.False(t, b.Allow())
	clock.Advance(11 * time.Second)
	assert.True(t, b.Allow())

	b.RecordSuccess()
	assert.Equal(t, StateAvailable, b.State())
	assert.True(t, b.Allow())
}

func TestNewBreakerDefaultsCooldown(t *testing.T) {
	b := NewBreaker(0)
	assert.Equal(t, DefaultCooldown, b.cooldown)
}
