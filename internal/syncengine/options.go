// Package syncengine implements the three sync orchestrator operations
// (spec §4.5): bucketWithLocal, localWithBucket, bucketWithBucket, plus the
// emptyBucket utility, each translating a diff result into a transfer
// command list and handing it to the transfer manager.
package syncengine

import (
	"github.com/jeanbmar/s3sync/internal/inventory"
	"github.com/jeanbmar/s3sync/internal/object"
	"github.com/jeanbmar/s3sync/internal/transfer"
)

// Filter reports whether id should survive filtering. Returning false
// excludes id from both inventories before diffing (spec §4.5 step 2).
type Filter func(id string) bool

// Options configures one sync orchestrator invocation (spec §4.5's common
// options). The zero value is a safe, conservative default: no deletes, no
// relocation, unbounded filtering, size-and-mtime comparison, a single
// in-flight transfer.
type Options struct {
	// Del executes deleted commands from the diff; when false they are
	// dropped.
	Del bool

	// DryRun computes and returns the command list without executing any
	// transfer.
	DryRun bool

	// SizeOnly ignores mtime in the diff decision matrix (spec §4.4).
	SizeOnly bool

	// MaxConcurrentTransfers bounds in-flight transfers. Zero means the
	// transfer manager's own floor of 1 applies.
	MaxConcurrentTransfers int

	// Monitor observes progress and can request abort. A nil Monitor is
	// equivalent to transfer.NopMonitor.
	Monitor transfer.Monitor

	// Relocations rewrites ids on the write side before dispatch (first
	// matching rule wins); see object.Rules.
	Relocations object.Rules

	// Filters are evaluated against every id before diffing; an id
	// surviving all filters (or, with no filters, every id) is kept.
	Filters []Filter

	// CommandInput carries per-operation overrides merged into the
	// derived store input before dispatch (spec §4.6's "per-command input
	// transformation").
	CommandInput transfer.CommandInput

	// Flatten, for download operations only, writes a downloaded object
	// to the basename of its relocated id rather than preserving
	// intermediate directory structure. Colliding basenames are a fatal
	// PathCollision.
	Flatten bool

	// ListingRetry bounds the bucket lister's per-page retry. The zero
	// value falls back to inventory.DefaultRetryPolicy.
	ListingRetry inventory.RetryPolicy
}

// keep reports whether id passes every configured filter.
func (o Options) keep(id string) bool {
	for _, f := range o.Filters {
		if !f(id) {
			return false
		}
	}

	return true
}

func (o Options) monitor() transfer.Monitor {
	if o.Monitor == nil {
		return transfer.NopMonitor{}
	}

	return o.Monitor
}

func (o Options) policy() transfer.FailurePolicy {
	return transfer.FailFast
}
