package purge

import (
	"context"
	"errors"
	"fmt"

	"github.com/sebastienferry/site-purge/internal/pkg/log"
	"github.com/sebastienferry/site-purge/internal/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/sebastienferry/site-purge/internal/pkg/purge"

// Purger deletes every document of the purgeable collections, one
// collection after the other and one batch at a time.
type Purger struct {
	store       Store
	collections []CollectionName
	batchSize   int
	maxQps      int
	tracer      trace.Tracer
}

type Option func(*Purger) error

// WithCollections narrows the purge to a subset of the allowlist.
func WithCollections(names ...CollectionName) Option {
	return func(p *Purger) error {
		ordered, err := Ordered(names...)
		if err != nil {
			return err
		}
		p.collections = ordered
		return nil
	}
}

// WithBatchSize sets the number of deletions per batch, MaxBatchSize at most.
func WithBatchSize(size int) Option {
	return func(p *Purger) error {
		if size < 1 || size > MaxBatchSize {
			return fmt.Errorf("%w: %d (expected 1 to %d)", ErrInvalidBatchSize, size, MaxBatchSize)
		}
		p.batchSize = size
		return nil
	}
}

// WithMaxDocsPerSecond limits the deletion rate. Zero means no limit.
func WithMaxDocsPerSecond(limit int) Option {
	return func(p *Purger) error {
		if limit < 0 {
			return fmt.Errorf("negative deletion rate: %d", limit)
		}
		p.maxQps = limit
		return nil
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(p *Purger) error {
		p.tracer = tracer
		return nil
	}
}

func New(store Store, opts ...Option) (*Purger, error) {
	if store == nil {
		return nil, errors.New("purge: nil store")
	}

	p := &Purger{
		store:       store,
		collections: Collections(),
		batchSize:   MaxBatchSize,
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Collections returns the collections visited by Purge, in order.
func (p *Purger) Collections() []CollectionName {
	out := make([]CollectionName, len(p.collections))
	copy(out, p.collections)
	return out
}

// Purge visits every collection exactly once, in order. A failure on a
// collection is reported and the purge moves on to the next one; batches
// committed before the failure stay deleted.
// The returned error is only set when the store was unavailable for at
// least one collection, and only once every collection has been attempted.
func (p *Purger) Purge(ctx context.Context, progress ProgressFunc) (Report, error) {

	ctx, span := p.tracer.Start(ctx, "purge", trace.WithAttributes(
		attribute.Int("purge.collections", len(p.collections)),
		attribute.Int("purge.batch_size", p.batchSize),
	))
	defer span.End()

	throttle := NewThrottle(p.maxQps)
	throttle.Reset()

	report := Report{Collections: make([]CollectionReport, 0, len(p.collections))}
	var unavailable []error

	for _, name := range p.collections {

		result := p.purgeCollection(ctx, name, throttle, progress)
		report.Total += result.Deleted

		if result.Err != nil {
			result.Error = result.Err.Error()

			var collErr *CollectionError
			op, cause := OpList, result.Err
			if errors.As(result.Err, &collErr) {
				op, cause = collErr.Op, collErr.Err
			}
			progress.emit(msgFailed, name, cause, result.Deleted)
			metrics.PurgeErrorTotal.WithLabelValues(string(name), string(op)).Inc()
			log.ErrorWithFields("collection purge failed", log.Fields{
				"collection": name,
				"op":         op,
				"deleted":    result.Deleted,
				"error":      result.Err,
			})

			if errors.Is(result.Err, ErrUnavailable) {
				unavailable = append(unavailable, result.Err)
			}
		}
		report.Collections = append(report.Collections, result)
	}

	progress.emit(msgSummary, report.Total)
	log.InfoWithFields("purge finished", log.Fields{
		"deleted": report.Total,
		"failed":  len(report.Failed()),
	})
	span.SetAttributes(attribute.Int("purge.deleted", report.Total))

	err := errors.Join(unavailable...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "document store unavailable")
	}
	return report, err
}

func (p *Purger) purgeCollection(ctx context.Context, name CollectionName,
	throttle *Throttle, progress ProgressFunc) CollectionReport {

	ctx, span := p.tracer.Start(ctx, "purge.collection", trace.WithAttributes(
		attribute.String("collection", string(name)),
	))
	defer span.End()

	result := CollectionReport{Name: name}
	fail := func(op Op, err error) CollectionReport {
		result.Err = &CollectionError{Collection: name, Op: op, Deleted: result.Deleted, Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, string(op))
		return result
	}

	progress.emit(msgBegin, name)
	log.InfoWithFields("purging collection", log.Fields{"collection": name})

	handles, err := p.store.ListDocuments(ctx, name)
	if err != nil {
		return fail(OpList, err)
	}

	result.Found = len(handles)
	metrics.PurgeFoundCounter.WithLabelValues(string(name)).Add(float64(result.Found))
	progress.emit(msgFound, result.Found, name)
	span.SetAttributes(attribute.Int("collection.found", result.Found))

	// Nothing to delete, no batch and no completion message
	if result.Found == 0 {
		metrics.PurgeProgressGauge.WithLabelValues(string(name)).Set(1)
		return result
	}

	tracker := NewCollectionProgress(name)
	tracker.SetTotal(result.Found)
	metrics.PurgeProgressGauge.WithLabelValues(string(name)).Set(0)

	for start := 0; start < len(handles); start += p.batchSize {
		end := min(start+p.batchSize, len(handles))

		if err := throttle.Wait(ctx); err != nil {
			return fail(OpWait, err)
		}

		if err := p.commitBatch(ctx, handles[start:end]); err != nil {
			return fail(OpCommit, err)
		}

		size := end - start
		throttle.Incr(size)
		tracker.Increment(size)
		result.Deleted += size
		result.Batches++

		metrics.PurgeBatchCounter.WithLabelValues(string(name)).Inc()
		metrics.PurgeDeletedCounter.WithLabelValues(string(name)).Add(float64(size))
		metrics.PurgeProgressGauge.WithLabelValues(string(name)).Set(tracker.Progress())

		progress.emit(msgBatch, result.Deleted, result.Found, name)
		log.DebugWithFields("batch committed", log.Fields{
			"collection": name,
			"batch":      result.Batches,
			"size":       size,
			"deleted":    result.Deleted,
		})
	}

	progress.emit(msgDone, name, result.Deleted)
	log.InfoWithFields("collection purged", log.Fields{
		"collection": name,
		"deleted":    result.Deleted,
		"batches":    result.Batches,
	})
	span.SetAttributes(attribute.Int("collection.deleted", result.Deleted))
	return result
}

// Stage and commit the deletion of a slice of documents.
func (p *Purger) commitBatch(ctx context.Context, handles []DocumentHandle) error {

	ctx, span := p.tracer.Start(ctx, "purge.batch", trace.WithAttributes(
		attribute.Int("batch.size", len(handles)),
	))
	defer span.End()

	batch := p.store.NewBatch()
	for _, handle := range handles {
		batch.Delete(handle)
	}

	if err := batch.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit failed")
		return err
	}
	return nil
}
