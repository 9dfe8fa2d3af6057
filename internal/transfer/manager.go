package transfer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/jeanbmar/s3sync/internal/store"
	"github.com/jeanbmar/s3sync/internal/syncerr"
)

// FailurePolicy controls how the Manager reacts to a command failure
// (spec §7).
type FailurePolicy int

const (
	// FailFast aborts the remaining command list at the first error.
	FailFast FailurePolicy = iota
	// CollectErrors runs every command regardless of earlier failures and
	// returns an aggregated error built with multierr.
	CollectErrors
)

// Manager is the bounded-concurrency execution engine that dispatches a
// command list against a store.Client (spec §4.6), grounded on the flat
// goroutine-pool-over-one-channel pattern.
type Manager struct {
	client      store.Client
	concurrency int
	policy      FailurePolicy
	monitor     Monitor
	logger      *slog.Logger
}

// NewManager creates a Manager. concurrency below 1 is treated as 1.
func NewManager(client store.Client, concurrency int, policy FailurePolicy, monitor Monitor, logger *slog.Logger) *Manager {
	if concurrency < 1 {
		concurrency = 1
	}

	if monitor == nil {
		monitor = NopMonitor{}
	}

	return &Manager{
		client:      client,
		concurrency: concurrency,
		policy:      policy,
		monitor:     monitor,
		logger:      logger,
	}
}

// Run executes every command in cmds, fanning out across a fixed pool of
// goroutines all reading from one channel. It returns once every dispatched
// command has finished (or the run aborted), along with the final progress
// snapshot. A nil error means every command succeeded.
func (m *Manager) Run(ctx context.Context, cmds []Command) (Snapshot, error) {
	var totalSize int64
	for _, c := range cmds {
		totalSize += c.Size
	}

	status := NewStatus(totalSize, int64(len(cmds)))
	m.monitor.Metadata(totalSize, int64(len(cmds)))

	m.logger.Info("transfer run starting",
		slog.Int("commands", len(cmds)),
		slog.String("total_size", humanize.Bytes(uint64(totalSize))),
		slog.Int("concurrency", m.concurrency),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if done := m.monitor.Done(); done != nil {
		go func() {
			select {
			case <-done:
				cancel()
			case <-runCtx.Done():
			}
		}()
	}

	queue := make(chan Command)
	group, groupCtx := errgroup.WithContext(runCtx)

	for range m.concurrency {
		group.Go(func() error {
			return m.worker(groupCtx, queue, status)
		})
	}

	var aggregate error

	feedErr := func() error {
		defer close(queue)

		for _, c := range cmds {
			if m.monitor.Aborted() {
				return syncerr.ErrAborted
			}

			select {
			case queue <- c:
			case <-groupCtx.Done():
				if m.monitor.Aborted() {
					return syncerr.ErrAborted
				}

				return groupCtx.Err()
			}
		}

		return nil
	}()

	if feedErr != nil && m.policy == FailFast {
		cancel()
	}

	workErr := group.Wait()

	aggregate = multierr.Append(aggregate, feedErr)
	aggregate = multierr.Append(aggregate, workErr)

	if aggregate != nil {
		m.logger.Error("transfer run finished with errors", slog.String("error", aggregate.Error()))
	} else {
		m.logger.Info("transfer run complete", slog.Int("commands", len(cmds)))
	}

	return status.Snapshot(), aggregate
}

// worker pulls commands off queue until it is closed or the context is
// canceled, dispatching each to the store.Client and reporting progress.
func (m *Manager) worker(ctx context.Context, queue <-chan Command, status *Status) error {
	var errs error

	for {
		select {
		case <-ctx.Done():
			if m.monitor.Aborted() {
				return multierr.Append(errs, syncerr.ErrAborted)
			}

			return multierr.Append(errs, ctx.Err())
		case cmd, ok := <-queue:
			if !ok {
				return errs
			}

			if m.monitor.Aborted() {
				return multierr.Append(errs, syncerr.ErrAborted)
			}

			if err := m.execute(ctx, cmd, status); err != nil {
				wrapped := syncerr.NewTransferFailed(cmd.Describe(), err)

				if m.policy == FailFast {
					return multierr.Append(errs, wrapped)
				}

				errs = multierr.Append(errs, wrapped)
			}

			m.monitor.Progress(status.CompleteCommand())
		}
	}
}

// execute dispatches a single command to the store.Client per its variant.
func (m *Manager) execute(ctx context.Context, cmd Command, status *Status) error {
	m.logger.Debug("dispatching command", slog.String("command", cmd.Describe()))

	switch cmd.Variant {
	case Upload:
		return m.executeUpload(ctx, cmd, status)
	case Download:
		return m.executeDownload(ctx, cmd, status)
	case Copy:
		return m.client.Copy(ctx, cmd.SourceBucket, cmd.SourceKey, cmd.TargetBucket, cmd.TargetKey, store.CopyInput{
			ACL:         cmd.Input.ACL,
			ContentType: cmd.Input.ContentType,
			Metadata:    cmd.Input.Metadata,
		})
	case Delete:
		return m.client.Delete(ctx, cmd.TargetBucket, cmd.TargetKey)
	case LocalDelete:
		return m.executeLocalDelete(cmd)
	default:
		return syncerr.NewTransferFailed(cmd.Describe(), syncerr.ErrNotADirectory)
	}
}

// executeUpload streams a local file to the store, updating status as
// bytes are read.
func (m *Manager) executeUpload(ctx context.Context, cmd Command, status *Status) error {
	f, err := os.Open(filepath.Clean(cmd.LocalPath))
	if err != nil {
		return err
	}
	defer f.Close()

	r := &countingReader{r: f, status: status, monitor: m.monitor}

	return m.client.Put(ctx, cmd.TargetBucket, cmd.TargetKey, r, cmd.Size, store.PutInput{
		ACL:         cmd.Input.ACL,
		ContentType: cmd.Input.ContentType,
		Metadata:    cmd.Input.Metadata,
	})
}

// executeDownload streams a remote object to a local file, updating status
// as bytes are written.
func (m *Manager) executeDownload(ctx context.Context, cmd Command, status *Status) error {
	if err := os.MkdirAll(filepath.Dir(cmd.LocalPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(filepath.Clean(cmd.LocalPath))
	if err != nil {
		return err
	}
	defer f.Close()

	w := &countingWriter{w: f, status: status, monitor: m.monitor}

	_, err = m.client.Get(ctx, cmd.SourceBucket, cmd.SourceKey, w)

	return err
}

// executeLocalDelete removes a local file. A missing file is not an error:
// the target is already absent, which is the desired end state.
func (m *Manager) executeLocalDelete(cmd Command) error {
	if err := os.Remove(filepath.Clean(cmd.LocalPath)); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

// countingReader wraps an io.Reader, advancing status and emitting a
// Progress event for every chunk read.
type countingReader struct {
	r       io.Reader
	status  *Status
	monitor Monitor
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.monitor.Progress(c.status.AddBytes(int64(n)))
	}

	return n, err
}

// countingWriter wraps an io.Writer, advancing status and emitting a
// Progress event for every chunk written.
type countingWriter struct {
	w       io.Writer
	status  *Status
	monitor Monitor
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	if n > 0 {
		c.monitor.Progress(c.status.AddBytes(int64(n)))
	}

	return n, err
}
