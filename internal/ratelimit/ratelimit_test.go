package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestRateLimiter_PerMinute(t *testing.T) {
	clock := &fakeClock{t: time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(2, 0, true).WithClock(clock.now)

	assert.True(t, rl.AllowRequest("1.1.1.1"))
	assert.True(t, rl.AllowRequest("1.1.1.1"))
	assert.False(t, rl.AllowRequest("1.1.1.1"))

	// Other clients have their own window.
	assert.True(t, rl.AllowRequest("2.2.2.2"))

	clock.advance(61 * time.Second)
	assert.True(t, rl.AllowRequest("1.1.1.1"))
}

func TestRateLimiter_PerHour(t *testing.T) {
	clock := &fakeClock{t: time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(10, 3, true).WithClock(clock.now)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.AllowRequest("k"))
		clock.advance(2 * time.Minute)
	}
	assert.False(t, rl.AllowRequest("k"))

	stats := rl.GetStats("k")
	assert.Equal(t, 3, stats.RequestsLastHour)
	assert.Equal(t, 0, stats.RemainingThisHour)

	clock.advance(time.Hour)
	assert.True(t, rl.AllowRequest("k"))
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	clock := &fakeClock{t: time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(5, 5, true).WithClock(clock.now)

	rl.AllowRequest("a")
	rl.AllowRequest("b")
	assert.Equal(t, 2, rl.GetStats("a").TrackedClients)

	clock.advance(2 * time.Hour)
	rl.AllowRequest("c")
	assert.Equal(t, 1, rl.GetStats("c").TrackedClients)
}

func TestRateLimiter_DisabledAndReset(t *testing.T) {
	off := NewRateLimiter(1, 1, false)
	for i := 0; i < 5; i++ {
		assert.True(t, off.AllowRequest("x"))
	}
	assert.False(t, off.GetStats("x").Enabled)

	rl := NewRateLimiter(1, 0, true)
	assert.True(t, rl.AllowRequest("x"))
	assert.False(t, rl.AllowRequest("x"))
	rl.Reset()
	assert.True(t, rl.AllowRequest("x"))
}
