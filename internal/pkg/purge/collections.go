package purge

import (
	"fmt"
	"strings"
)

// CollectionName identifies a collection of the back office document store.
type CollectionName string

const (
	Sites             CollectionName = "sites"
	PaymentRequests   CollectionName = "paymentRequests"
	Inventory         CollectionName = "inventory"
	MaterialUsageLogs CollectionName = "materialUsageLogs"
	Transporters      CollectionName = "transporters"
	JobCards          CollectionName = "jobCards"
)

// The only collections a purge may ever touch, in processing order.
var allowlist = [...]CollectionName{
	Sites,
	PaymentRequests,
	Inventory,
	MaterialUsageLogs,
	Transporters,
	JobCards,
}

// Collections returns the purgeable collections in processing order.
func Collections() []CollectionName {
	out := make([]CollectionName, len(allowlist))
	copy(out, allowlist[:])
	return out
}

func position(name CollectionName) int {
	for i, c := range allowlist {
		if c == name {
			return i
		}
	}
	return -1
}

// IsPurgeable reports whether the collection belongs to the allowlist.
func IsPurgeable(name CollectionName) bool {
	return position(name) >= 0
}

// Ordered checks every name against the allowlist, drops duplicates and
// returns the selection in processing order, whatever the input order.
func Ordered(names ...CollectionName) ([]CollectionName, error) {
	selected := make([]bool, len(allowlist))
	for _, name := range names {
		pos := position(name)
		if pos < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
		}
		selected[pos] = true
	}

	out := make([]CollectionName, 0, len(names))
	for i, keep := range selected {
		if keep {
			out = append(out, allowlist[i])
		}
	}
	return out, nil
}

// ParseCollections converts configuration values into an ordered selection.
// An empty list selects every purgeable collection.
func ParseCollections(names []string) ([]CollectionName, error) {
	if len(names) == 0 {
		return Collections(), nil
	}
	converted := make([]CollectionName, 0, len(names))
	for _, n := range names {
		converted = append(converted, CollectionName(strings.TrimSpace(n)))
	}
	return Ordered(converted...)
}
