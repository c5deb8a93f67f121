package purge

import "fmt"

// ProgressFunc receives human readable progress messages. A nil
// ProgressFunc discards them.
type ProgressFunc func(message string)

func (f ProgressFunc) emit(format string, args ...interface{}) {
	if f == nil {
		return
	}
	f(fmt.Sprintf(format, args...))
}

const (
	msgBegin   = "Processing collection %s..."
	msgFound   = "Found %d documents in %s."
	msgBatch   = "Deleted %d of %d documents from %s."
	msgDone    = "Finished %s: %d documents deleted."
	msgFailed  = "Error processing %s: %v (%d documents deleted before the failure)."
	msgSummary = "Purge complete: %d documents deleted in total."
)

// CollectionProgress tracks the deletion progress of one collection.
type CollectionProgress struct {
	Collection CollectionName
	total      uint64
	processed  uint64
}

func NewCollectionProgress(collection CollectionName) *CollectionProgress {
	return &CollectionProgress{
		Collection: collection,
	}
}

func (f *CollectionProgress) SetTotal(total int) {
	f.total = uint64(total)
}

func (f *CollectionProgress) Increment(incr int) {
	f.processed += uint64(incr)
}

// Progress returns the processed ratio. An empty collection is complete.
func (f *CollectionProgress) Progress() float64 {
	if f.total == 0 {
		return 1
	}
	return float64(f.processed) / float64(f.total)
}
