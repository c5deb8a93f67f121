// Package memstore keeps collections of document ids in memory. It backs
// the "memory" store driver (dry runs, demos) and the tests, and can be
// told to fail listings, commits and pings.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/sebastienferry/site-purge/internal/pkg/purge"
)

// Commit records one batch commit attempt.
type Commit struct {
	Collection purge.CollectionName
	Size       int
	Err        error
}

type Store struct {
	mu        sync.Mutex
	docs      map[purge.CollectionName][]string
	listErr   map[purge.CollectionName]error
	commitErr map[purge.CollectionName]map[int]error
	commitNum map[purge.CollectionName]int
	pingErr   error
	listed    []purge.CollectionName
	commits   []Commit
}

func New() *Store {
	return &Store{
		docs:      make(map[purge.CollectionName][]string),
		listErr:   make(map[purge.CollectionName]error),
		commitErr: make(map[purge.CollectionName]map[int]error),
		commitNum: make(map[purge.CollectionName]int),
	}
}

// Add inserts documents with the given ids.
func (s *Store) Add(collection purge.CollectionName, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[collection] = append(s.docs[collection], ids...)
}

// Seed inserts n documents with generated ids.
func (s *Store) Seed(collection purge.CollectionName, n int) {
	ids := make([]string, 0, n)
	offset := s.Len(collection)
	for i := 0; i < n; i++ {
		ids = append(ids, fmt.Sprintf("%s-%05d", collection, offset+i))
	}
	s.Add(collection, ids...)
}

// FailList makes every listing of the collection fail.
func (s *Store) FailList(collection purge.CollectionName, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr[collection] = err
}

// FailCommit makes the nth commit (1-based) on the collection fail. A failed
// commit deletes nothing.
func (s *Store) FailCommit(collection purge.CollectionName, nth int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commitErr[collection] == nil {
		s.commitErr[collection] = make(map[int]error)
	}
	s.commitErr[collection][nth] = err
}

func (s *Store) FailPing(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pingErr = err
}

// Len returns the number of documents left in the collection.
func (s *Store) Len(collection purge.CollectionName) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs[collection])
}

// Listed returns the collections listed so far, in call order.
func (s *Store) Listed() []purge.CollectionName {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.listed)
}

// Commits returns every commit attempt, in call order.
func (s *Store) Commits() []Commit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.commits)
}

func (s *Store) ListDocuments(ctx context.Context, collection purge.CollectionName) ([]purge.DocumentHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listed = append(s.listed, collection)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.listErr[collection]; err != nil {
		return nil, err
	}

	handles := make([]purge.DocumentHandle, 0, len(s.docs[collection]))
	for _, id := range s.docs[collection] {
		handles = append(handles, purge.DocumentHandle{Collection: collection, Key: id})
	}
	return handles, nil
}

func (s *Store) Count(ctx context.Context, collection purge.CollectionName) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.listErr[collection]; err != nil {
		return 0, err
	}
	return int64(len(s.docs[collection])), nil
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pingErr
}

func (s *Store) NewBatch() purge.Batch {
	return &batch{store: s}
}

type batch struct {
	store   *Store
	handles []purge.DocumentHandle
}

func (b *batch) Delete(handle purge.DocumentHandle) {
	b.handles = append(b.handles, handle)
}

func (b *batch) Len() int {
	return len(b.handles)
}

func (b *batch) Commit(ctx context.Context) error {
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var collection purge.CollectionName
	if len(b.handles) > 0 {
		collection = b.handles[0].Collection
	}
	if len(b.handles) > purge.MaxBatchSize {
		err := fmt.Errorf("batch of %d writes exceeds the %d limit", len(b.handles), purge.MaxBatchSize)
		s.commits = append(s.commits, Commit{Collection: collection, Size: len(b.handles), Err: err})
		return err
	}

	s.commitNum[collection]++
	err := ctx.Err()
	if err == nil {
		err = s.commitErr[collection][s.commitNum[collection]]
	}
	s.commits = append(s.commits, Commit{Collection: collection, Size: len(b.handles), Err: err})
	if err != nil {
		return err
	}

	// Remove the staged documents, all at once
	staged := make(map[purge.CollectionName]map[string]bool)
	for _, h := range b.handles {
		if staged[h.Collection] == nil {
			staged[h.Collection] = make(map[string]bool)
		}
		staged[h.Collection][fmt.Sprint(h.Key)] = true
	}
	for coll, ids := range staged {
		s.docs[coll] = slices.DeleteFunc(s.docs[coll], func(id string) bool {
			return ids[id]
		})
	}
	return nil
}
