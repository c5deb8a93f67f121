package purge

import (
	"context"
	"time"
)

// Throttle keeps the deletion rate of a purge under a number of documents
// per second. A zero limit disables it.
type Throttle struct {
	Start  time.Time
	MaxQps int
	hits   int
	now    func() time.Time
}

func NewThrottle(maxQps int) *Throttle {
	return &Throttle{
		MaxQps: maxQps,
		now:    time.Now,
	}
}

func (q *Throttle) Reset() {
	q.hits = 0
	q.Start = q.now()
}

func (q *Throttle) Incr(incr int) {
	q.hits += incr
}

// Delay returns how long to wait so that the documents deleted since the
// last reset fit in the budget.
func (q *Throttle) Delay() time.Duration {
	if q == nil || q.MaxQps <= 0 || q.hits == 0 {
		return 0
	}
	budget := time.Duration(float64(q.hits) / float64(q.MaxQps) * float64(time.Second))
	return budget - q.now().Sub(q.Start)
}

// Wait blocks for Delay, or until the context is done.
func (q *Throttle) Wait(ctx context.Context) error {
	wait := q.Delay()
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
