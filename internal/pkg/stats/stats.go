package stats

import (
	"context"
	"sync"
	"time"

	"github.com/sebastienferry/site-purge/internal/pkg/log"
	"github.com/sebastienferry/site-purge/internal/pkg/metrics"
	"github.com/sebastienferry/site-purge/internal/pkg/purge"
)

// Counter returns the number of documents of a collection.
type Counter interface {
	Count(ctx context.Context, collection purge.CollectionName) (int64, error)
}

// CollectionStats periodically publishes the document count of the
// purgeable collections.
type CollectionStats struct {
	counter     Counter
	collections []purge.CollectionName
	interval    time.Duration

	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	started bool
}

func NewCollectionStats(counter Counter, collections []purge.CollectionName, interval time.Duration) *CollectionStats {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &CollectionStats{
		counter:     counter,
		collections: collections,
		interval:    interval,
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
}

func (c *CollectionStats) StartCollectionStats(ctx context.Context) {

	c.started = true

	// Start the collection stats observation
	go func() {
		defer close(c.stopped)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			c.Collect(ctx)

			select {
			case <-ticker.C:
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Collect counts every collection once. Collections that cannot be counted
// are logged and left out of the result.
func (c *CollectionStats) Collect(ctx context.Context) map[purge.CollectionName]int64 {
	counts := make(map[purge.CollectionName]int64, len(c.collections))
	for _, collection := range c.collections {

		count, err := c.counter.Count(ctx, collection)
		if err != nil {
			log.WarnWithFields("error counting documents", log.Fields{
				"collection": collection,
				"error":      err,
			})
			continue
		}

		counts[collection] = count
		metrics.CollectionDocumentsGauge.WithLabelValues(string(collection)).Set(float64(count))
	}
	return counts
}

func (c *CollectionStats) StopCollectionStats() {
	c.once.Do(func() { close(c.done) })
	if c.started {
		<-c.stopped
	}
}
