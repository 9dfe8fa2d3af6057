// Package object defines the canonical inventory record used throughout
// the sync engine, and the prefix-relocation arithmetic applied to its
// identifiers.
package object

// Object is a canonical inventory record for one entry in an inventory.
// ID is a forward-slash-delimited relative key: never absolute, never
// starting with "/". Size is in bytes; LastModified is milliseconds since
// epoch. LocalPath and Bucket are storage-specific and are not part of
// inventory-entry equality (see Equal).
type Object struct {
	ID           string
	Size         int64
	LastModified int64 // milliseconds since epoch

	// LocalPath is set for objects enumerated from a local filesystem tree.
	LocalPath string
	// Bucket is set for objects enumerated from a remote bucket.
	Bucket string
}

// Equal reports whether two objects are equivalent as inventory entries.
// Storage-specific fields (LocalPath, Bucket) are deliberately excluded:
// only ID, Size, and LastModified participate in diffing.
func (o Object) Equal(other Object) bool {
	return o.ID == other.ID && o.Size == other.Size && o.LastModified == other.LastModified
}
