// Package diff computes the set-algebraic difference between two
// inventories that drives the sync engine's command lists (spec §4.4).
package diff

import (
	"github.com/jeanbmar/s3sync/internal/inventory"
	"github.com/jeanbmar/s3sync/internal/object"
)

// Options configures the diff decision matrix.
type Options struct {
	// SizeOnly ignores LastModified entirely: an id present in both
	// inventories is "updated" purely on size mismatch.
	SizeOnly bool
}

// Result partitions the union of source and target ids into three
// disjoint lists: Created (present only in source), Updated (present in
// both but target is stale), and Deleted (present only in target).
// Deleted entries are always computed; callers decide whether to act on
// them (spec §4.5's del option).
type Result struct {
	Created []object.Object
	Updated []object.Object
	Deleted []object.Object
}

// Diff computes (created, updated, deleted) between source and target
// inventories per the decision matrix in spec §4.4:
//
//	id in S, not T            -> created
//	id in T, not S            -> deleted
//	id in both, size differs  -> updated
//	id in both, size equal:
//	  sizeOnly                -> unchanged
//	  mtime(T) >= mtime(S)    -> unchanged
//	  otherwise               -> updated
//
// Each returned object is the source's copy for created/updated entries,
// and the target's copy for deleted entries — the diff partitions
// keys(S) ∪ keys(T) into created, updated, deleted, and unchanged
// (omitted), pairwise disjoint.
func Diff(source, target inventory.Inventory, opts Options) Result {
	var res Result

	for id, srcObj := range source {
		tgtObj, inTarget := target[id]

		switch {
		case !inTarget:
			res.Created = append(res.Created, srcObj)
		case !isCurrent(srcObj, tgtObj, opts):
			res.Updated = append(res.Updated, srcObj)
		}
	}

	for id, tgtObj := range target {
		if _, inSource := source[id]; !inSource {
			res.Deleted = append(res.Deleted, tgtObj)
		}
	}

	return res
}

// isCurrent reports whether the target's copy of an id is current with
// respect to the source, i.e. whether it should be left alone.
func isCurrent(src, tgt object.Object, opts Options) bool {
	if src.Equal(tgt) {
		return true
	}

	if tgt.Size != src.Size {
		return false
	}

	if opts.SizeOnly {
		return true
	}

	return tgt.LastModified >= src.LastModified
}
