package transfer

import "sync/atomic"

// Status is the aggregate progress counters for one sync invocation
// (spec §3's TransferStatus). TotalCount/TotalSize are fixed once the
// command list is known; CurrentCount/CurrentSize are mutated atomically
// by every worker goroutine as commands complete and bytes stream.
type Status struct {
	TotalCount int64
	TotalSize  int64

	currentCount atomic.Int64
	currentSize  atomic.Int64
}

// Snapshot is an immutable point-in-time read of a Status, the shape
// emitted on every Monitor.Progress call (spec §4.6).
type Snapshot struct {
	CurrentSize  int64
	CurrentCount int64
	TotalSize    int64
	TotalCount   int64
}

// NewStatus creates a Status for a command list with the given aggregate
// totals.
func NewStatus(totalSize int64, totalCount int64) *Status {
	return &Status{TotalSize: totalSize, TotalCount: totalCount}
}

// AddBytes advances CurrentSize by n, returning the new snapshot.
func (s *Status) AddBytes(n int64) Snapshot {
	s.currentSize.Add(n)
	return s.Snapshot()
}

// CompleteCommand advances CurrentCount by one, returning the new
// snapshot.
func (s *Status) CompleteCommand() Snapshot {
	s.currentCount.Add(1)
	return s.Snapshot()
}

// Snapshot reads the current counters without mutating them.
func (s *Status) Snapshot() Snapshot {
	return Snapshot{
		CurrentSize:  s.currentSize.Load(),
		CurrentCount: s.currentCount.Load(),
		TotalSize:    s.TotalSize,
		TotalCount:   s.TotalCount,
	}
}
