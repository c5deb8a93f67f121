package purge

import (
	"context"
	"fmt"
)

// MaxBatchSize is the largest number of deletions committed in one batch.
// Firestore rejects atomic batches holding more than 500 writes.
const MaxBatchSize = 500

// DocumentHandle addresses one document for deletion. Key is defined by
// the store (a Firestore document reference, a MongoDB _id, ...) and is
// never interpreted by the purge.
type DocumentHandle struct {
	Collection CollectionName
	Key        interface{}
}

func (h DocumentHandle) String() string {
	return fmt.Sprintf("%s/%v", h.Collection, h.Key)
}

// Store is the document store the purge runs against.
type Store interface {
	// List every document of a collection with a single read.
	ListDocuments(ctx context.Context, collection CollectionName) ([]DocumentHandle, error)
	// Open an empty batch.
	NewBatch() Batch
}

// Batch stages deletions and commits them atomically.
type Batch interface {
	Delete(handle DocumentHandle)
	Len() int
	Commit(ctx context.Context) error
}
