package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold int) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(threshold, 30*time.Second, 10*time.Second)
	cb.now = clock.Now
	return cb, clock
}

func TestCircuitBreaker_OpensAtThreshold(t *testing.T) {
	cb, clock := newTestBreaker(3)

	cb.RecordFailure()
	cb.RecordFailure()
	assert.False(t, cb.IsOpen())

	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	clock.Advance(11 * time.Second)
	assert.False(t, cb.IsOpen(), "closes after the open duration")
}

func TestCircuitBreaker_WindowDropsOldFailures(t *testing.T) {
	cb, clock := newTestBreaker(3)

	cb.RecordFailure()
	cb.RecordFailure()
	clock.Advance(31 * time.Second)
	cb.RecordFailure()

	assert.False(t, cb.IsOpen())
}

func TestCircuitBreaker_SuccessResets(t *testing.T) {
	cb, _ := newTestBreaker(2)

	cb.RecordFailure()
	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	cb.RecordSuccess()
	assert.False(t, cb.IsOpen())
	cb.RecordFailure()
	assert.False(t, cb.IsOpen())
}

func TestCircuitBreaker_DisabledAndNil(t *testing.T) {
	cb, _ := newTestBreaker(0)
	for i := 0; i < 10; i++ {
		cb.RecordFailure()
	}
	assert.False(t, cb.IsOpen())

	var none *CircuitBreaker
	none.RecordFailure()
	none.RecordSuccess()
	assert.False(t, none.IsOpen())
}
