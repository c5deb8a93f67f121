package purge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThrottleDelay(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start

	q := NewThrottle(1000)
	q.now = func() time.Time { return now }
	q.Reset()

	assert.Zero(t, q.Delay(), "nothing deleted yet")

	// 500 documents are worth half a second
	q.Incr(500)
	assert.Equal(t, 500*time.Millisecond, q.Delay())

	now = start.Add(200 * time.Millisecond)
	assert.Equal(t, 300*time.Millisecond, q.Delay())

	now = start.Add(time.Second)
	assert.LessOrEqual(t, q.Delay(), time.Duration(0))
}

func TestThrottleDisabled(t *testing.T) {
	q := NewThrottle(0)
	q.Reset()
	q.Incr(1_000_000)
	assert.Zero(t, q.Delay())
	assert.NoError(t, q.Wait(context.Background()))

	var nilThrottle *Throttle
	assert.Zero(t, nilThrottle.Delay())
}

func TestThrottleWaitHonorsContext(t *testing.T) {
	q := NewThrottle(1)
	q.Reset()
	q.Incr(3600)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, q.Wait(ctx), context.Canceled)
}

func TestCollectionProgress(t *testing.T) {
	p := NewCollectionProgress(Inventory)
	assert.Equal(t, 1.0, p.Progress())

	p.SetTotal(1200)
	p.Increment(500)
	assert.InDelta(t, 500.0/1200.0, p.Progress(), 1e-9)
	p.Increment(700)
	assert.Equal(t, 1.0, p.Progress())
}
