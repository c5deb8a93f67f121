package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sebastienferry/site-purge/internal/pkg/memstore"
	"github.com/sebastienferry/site-purge/internal/pkg/metrics"
	"github.com/sebastienferry/site-purge/internal/pkg/purge"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCollect(t *testing.T) {
	store := memstore.New()
	store.Seed(purge.Sites, 12)
	store.Seed(purge.JobCards, 3)
	store.FailList(purge.Inventory, errors.New("unavailable"))

	s := NewCollectionStats(store, []purge.CollectionName{purge.Sites, purge.Inventory, purge.JobCards}, time.Minute)
	counts := s.Collect(context.Background())

	assert.Equal(t, map[purge.CollectionName]int64{
		purge.Sites:    12,
		purge.JobCards: 3,
	}, counts)
	assert.Equal(t, 12.0, testutil.ToFloat64(metrics.CollectionDocumentsGauge.WithLabelValues("sites")))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.CollectionDocumentsGauge.WithLabelValues("jobCards")))
}

func TestStartStop(t *testing.T) {
	store := memstore.New()
	store.Seed(purge.Transporters, 5)

	s := NewCollectionStats(store, []purge.CollectionName{purge.Transporters}, 10*time.Millisecond)
	s.StartCollectionStats(context.Background())

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.CollectionDocumentsGauge.WithLabelValues("transporters")) == 5
	}, time.Second, 5*time.Millisecond)

	s.StopCollectionStats()
	// A second stop is a no-op
	s.StopCollectionStats()
}

func TestStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewCollectionStats(memstore.New(), purge.Collections(), time.Hour)
	s.StartCollectionStats(ctx)
	cancel()
	s.StopCollectionStats()
}

func TestStopWithoutStart(t *testing.T) {
	s := NewCollectionStats(memstore.New(), purge.Collections(), 0)
	s.StopCollectionStats()
}
