package purge

// CollectionReport is the outcome of the purge of one collection.
type CollectionReport struct {
	Name    CollectionName `json:"name"`
	Found   int            `json:"found"`
	Deleted int            `json:"deleted"`
	Batches int            `json:"batches"`
	Err     error          `json:"-"`
	Error   string         `json:"error,omitempty"`
}

// Report aggregates a whole purge. Total only counts committed deletions.
type Report struct {
	Total       int                `json:"total"`
	Collections []CollectionReport `json:"collections"`
}

// Failed lists the collections whose purge stopped on an error.
func (r Report) Failed() []CollectionName {
	var failed []CollectionName
	for _, c := range r.Collections {
		if c.Err != nil {
			failed = append(failed, c.Name)
		}
	}
	return failed
}

func (r Report) OK() bool {
	return len(r.Failed()) == 0
}
