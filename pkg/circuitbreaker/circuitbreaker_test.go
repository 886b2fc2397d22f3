package circuitbreaker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBroker = errors.New("broker unavailable")

// fakeClock 可手动推进的时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBreaker(clock *fakeClock) *CircuitBreaker {
	cb := NewCircuitBreaker("event-publisher", Config{
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 3 },
	})
	cb.now = clock.Now
	return cb
}

func TestCircuitBreaker_StaysClosedOnSuccess(t *testing.T) {
	cb := newTestBreaker(&fakeClock{now: time.Now()})

	for i := 0; i < 10; i++ {
		require.NoError(t, cb.Execute(func() error { return nil }))
	}
	assert.Equal(t, StateClosed, cb.State())
	assert.EqualValues(t, 10, cb.Counts().TotalSuccesses)
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := newTestBreaker(&fakeClock{now: time.Now()})

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errBroker }), errBroker)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpenState)
	assert.False(t, called, "熔断后不应调用下游")
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cb := newTestBreaker(clock)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errBroker })
	}

	clock.Advance(31 * time.Second)
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cb := newTestBreaker(clock)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errBroker })
	}
	clock.Advance(31 * time.Second)

	_ = cb.Execute(func() error { return errBroker })
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_WindowResetsCounts(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cb := newTestBreaker(clock)

	_ = cb.Execute(func() error { return errBroker })
	_ = cb.Execute(func() error { return errBroker })
	clock.Advance(11 * time.Second)
	_ = cb.Execute(func() error { return errBroker })

	assert.Equal(t, StateClosed, cb.State())
	assert.EqualValues(t, 1, cb.Counts().ConsecutiveFailures)
}

func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cb := newTestBreaker(clock)

	var transitions []string
	cb.SetStateChangeCallback(func(name string, from, to State) {
		assert.Equal(t, "event-publisher", name)
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errBroker })
	}
	clock.Advance(31 * time.Second)
	_ = cb.Execute(func() error { return nil })

	assert.Equal(t, []string{"CLOSED->OPEN", "OPEN->HALF_OPEN", "HALF_OPEN->CLOSED"}, transitions)
}

func TestCounts_FailureRate(t *testing.T) {
	assert.Zero(t, Counts{}.FailureRate())
	assert.InDelta(t, 0.25, Counts{Requests: 4, TotalFailures: 1}.FailureRate(), 1e-9)
}
