// Package inventory enumerates a local filesystem subtree or a remote
// bucket prefix into a canonicalized mapping from relative identifier to
// object.Object (spec §3, §4.2, §4.3).
package inventory

import "github.com/jeanbmar/s3sync/internal/object"

// Inventory is a snapshot mapping from id to Object for one root. Keys are
// unique; iteration order is not observable by the diff engine.
type Inventory map[string]object.Object

// Filter returns a copy of the inventory containing only entries for which
// keep returns true. A nil keep function returns the inventory unchanged.
func (inv Inventory) Filter(keep func(id string) bool) Inventory {
	if keep == nil {
		return inv
	}

	out := make(Inventory, len(inv))

	for id, obj := range inv {
		if keep(id) {
			out[id] = obj
		}
	}

	return out
}
