package purge

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCollection is returned when a collection outside the allowlist is requested.
	ErrUnknownCollection = errors.New("collection is not purgeable")
	// ErrUnavailable marks network and authentication failures of the store.
	// Store adapters wrap such failures with it.
	ErrUnavailable = errors.New("document store unavailable")
	// ErrInvalidBatchSize is returned for batch sizes outside [1, MaxBatchSize].
	ErrInvalidBatchSize = errors.New("invalid batch size")
)

// Op names the step of a collection purge that failed.
type Op string

const (
	OpList   Op = "list"
	OpWait   Op = "wait"
	OpCommit Op = "commit"
)

// CollectionError describes why the purge of one collection stopped.
// Deleted counts the documents of the collection removed by the batches
// committed before the failure.
type CollectionError struct {
	Collection CollectionName
	Op         Op
	Deleted    int
	Err        error
}

func (e *CollectionError) Error() string {
	switch e.Op {
	case OpList:
		return fmt.Sprintf("listing documents of %s: %v", e.Collection, e.Err)
	default:
		return fmt.Sprintf("%s on %s after %d deleted documents: %v", e.Op, e.Collection, e.Deleted, e.Err)
	}
}

func (e *CollectionError) Unwrap() error {
	return e.Err
}
