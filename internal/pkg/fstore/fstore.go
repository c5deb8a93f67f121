// Package fstore runs the purge against Google Cloud Firestore. Deletions
// are staged in a WriteBatch, which Firestore commits atomically and caps
// at 500 writes.
package fstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/sebastienferry/site-purge/internal/pkg/log"
	"github.com/sebastienferry/site-purge/internal/pkg/purge"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const countAlias = "all"

type Store struct {
	Project string
	client  *firestore.Client
}

// NewStore connects to the Firestore database of a project. The
// FIRESTORE_EMULATOR_HOST environment variable is honored by the client.
func NewStore(ctx context.Context, project string, credentialsFile string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, classify(err)
	}
	log.InfoWithFields("firestore client ready", log.Fields{"project": project})

	return &Store{
		Project: project,
		client:  client,
	}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) ListDocuments(ctx context.Context, collection purge.CollectionName) ([]purge.DocumentHandle, error) {

	refs, err := s.client.Collection(string(collection)).DocumentRefs(ctx).GetAll()
	if err != nil {
		return nil, classify(err)
	}

	handles := make([]purge.DocumentHandle, 0, len(refs))
	for _, ref := range refs {
		handles = append(handles, purge.DocumentHandle{Collection: collection, Key: ref})
	}
	return handles, nil
}

// Count runs a count aggregation, no document is read.
func (s *Store) Count(ctx context.Context, collection purge.CollectionName) (int64, error) {

	results, err := s.client.Collection(string(collection)).NewAggregationQuery().WithCount(countAlias).Get(ctx)
	if err != nil {
		return 0, classify(err)
	}

	value, ok := results[countAlias].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count aggregation result: %T", results[countAlias])
	}
	return value.GetIntegerValue(), nil
}

// Ping lists at most one collection to check connectivity and credentials.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.Collections(ctx).Next()
	if err != nil && !errors.Is(err, iterator.Done) {
		return classify(err)
	}
	return nil
}

func (s *Store) NewBatch() purge.Batch {
	return &batch{store: s}
}

type batch struct {
	store *Store
	refs  []*firestore.DocumentRef
	err   error
}

func (b *batch) Delete(handle purge.DocumentHandle) {
	ref, ok := handle.Key.(*firestore.DocumentRef)
	if !ok {
		if b.err == nil {
			b.err = fmt.Errorf("not a firestore document: %s", handle)
		}
		return
	}
	b.refs = append(b.refs, ref)
}

func (b *batch) Len() int {
	return len(b.refs)
}

func (b *batch) Commit(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if len(b.refs) == 0 {
		return nil
	}
	if len(b.refs) > purge.MaxBatchSize {
		return fmt.Errorf("batch of %d deletions exceeds the %d limit", len(b.refs), purge.MaxBatchSize)
	}

	wb := b.store.client.Batch()
	for _, ref := range b.refs {
		wb.Delete(ref)
	}
	_, err := wb.Commit(ctx)
	return classify(err)
}

// classify marks transport and credential failures as purge.ErrUnavailable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.Unauthenticated, codes.PermissionDenied, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %w", purge.ErrUnavailable, err)
	}
	return err
}
