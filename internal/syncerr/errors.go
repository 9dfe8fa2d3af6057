// Package syncerr defines the sentinel error kinds shared across the sync
// engine's packages (spec §7). All are checked with errors.Is/errors.As,
// never string matching.
package syncerr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Wrap with fmt.Errorf("...: %w", ErrX) or one of the
// typed errors below to attach context.
var (
	// ErrNotADirectory is returned when a local inventory root does not
	// exist or is not a directory.
	ErrNotADirectory = errors.New("sync: not a directory")

	// ErrListFailed is returned when a bucket listing page errors after
	// exhausting retries.
	ErrListFailed = errors.New("sync: bucket listing failed")

	// ErrAborted is returned when cancellation was observed. It takes
	// precedence over other errors (spec §7).
	ErrAborted = errors.New("sync: aborted")

	// ErrFilesystemError is returned for local read/write failures. Treated
	// as a TransferFailed cause when it originates inside a transfer.
	ErrFilesystemError = errors.New("sync: filesystem error")

	// ErrPathCollision is returned when flatten mode maps two distinct ids
	// onto the same local filename.
	ErrPathCollision = errors.New("sync: path collision under flatten")
)

// TransferFailedError reports that a single command failed after the
// underlying client's own retries were exhausted.
type TransferFailedError struct {
	Command string // human-readable command description, for logging
	Cause   error
}

func (e *TransferFailedError) Error() string {
	return fmt.Sprintf("sync: transfer failed for %s: %v", e.Command, e.Cause)
}

func (e *TransferFailedError) Unwrap() error {
	return e.Cause
}

// NewTransferFailed wraps cause as a TransferFailedError for the given
// command description.
func NewTransferFailed(command string, cause error) *TransferFailedError {
	return &TransferFailedError{Command: command, Cause: cause}
}
