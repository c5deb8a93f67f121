package main

import (
	"context"
	"fmt"

	"github.com/sebastienferry/site-purge/internal/pkg/config"
	"github.com/sebastienferry/site-purge/internal/pkg/fstore"
	"github.com/sebastienferry/site-purge/internal/pkg/log"
	"github.com/sebastienferry/site-purge/internal/pkg/mdb"
	"github.com/sebastienferry/site-purge/internal/pkg/memstore"
	"github.com/sebastienferry/site-purge/internal/pkg/purge"
	"github.com/sebastienferry/site-purge/internal/pkg/tracing"
	"golang.org/x/sync/errgroup"
)

// backend is what every store driver offers.
type backend interface {
	purge.Store
	Count(ctx context.Context, collection purge.CollectionName) (int64, error)
	Ping(ctx context.Context) error
}

// Deps holds what the commands need, built from the configuration.
type Deps struct {
	Config *config.AppConfig
	Store  backend
	Purger *purge.Purger
}

// withDeps builds the dependencies, calls fn and releases them.
func withDeps(ctx context.Context, cfg *config.AppConfig, fn func(*Deps) error) error {

	tp, err := tracing.NewTracerProvider(ctx, cfg.Tracing.ServiceName, version, cfg.Tracing.Endpoint)
	if err != nil {
		return err
	}
	defer shutdownTracing(tp)

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(context.Background()); err != nil {
			log.WarnWithFields("error closing the store", log.Fields{"error": err})
		}
	}()

	purger, err := newPurger(cfg.Purge, store)
	if err != nil {
		return err
	}

	return fn(&Deps{Config: cfg, Store: store, Purger: purger})
}

func shutdownTracing(tp *tracing.TracerProvider) {
	if err := tp.Shutdown(context.Background()); err != nil {
		log.WarnWithFields("error flushing traces", log.Fields{"error": err})
	}
}

// openStore connects the configured driver.
func openStore(ctx context.Context, cfg config.StoreConfig) (backend, func(context.Context) error, error) {
	switch cfg.Driver {

	case config.DriverMongo:
		db := mdb.NewMongo(cfg.Uri, cfg.Database, cfg.Timeout)
		if err := db.Connect(ctx); err != nil {
			return nil, nil, fmt.Errorf("connecting to mongodb: %w", err)
		}
		return mdb.NewStore(db, cfg.Transactions), db.Disconnect, nil

	case config.DriverFirestore:
		store, err := fstore.NewStore(ctx, cfg.Project, cfg.Credentials)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to firestore: %w", err)
		}
		return store, func(context.Context) error { return store.Close() }, nil

	case config.DriverMemory:
		store := memstore.New()
		for name, n := range cfg.Seed {
			store.Seed(purge.CollectionName(name), n)
		}
		return store, func(context.Context) error { return nil }, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver: %q", cfg.Driver)
}

func newPurger(cfg config.PurgeConfig, store purge.Store) (*purge.Purger, error) {
	collections, err := purge.ParseCollections(cfg.Collections)
	if err != nil {
		return nil, err
	}
	return purge.New(store,
		purge.WithCollections(collections...),
		purge.WithBatchSize(cfg.BatchSize),
		purge.WithMaxDocsPerSecond(cfg.MaxDocsPerSecond),
	)
}

// countCollections counts the documents of each collection concurrently.
// Counts that failed are reported as -1.
func countCollections(ctx context.Context, store backend, collections []purge.CollectionName) []int64 {
	counts := make([]int64, len(collections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, collection := range collections {
		g.Go(func() error {
			count, err := store.Count(gctx, collection)
			if err != nil {
				log.WarnWithFields("error counting documents", log.Fields{
					"collection": collection,
					"error":      err,
				})
				count = -1
			}
			counts[i] = count
			return nil
		})
	}
	_ = g.Wait()
	return counts
}
