package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jeanbmar/s3sync/internal/inventory"
	"github.com/jeanbmar/s3sync/internal/object"
	"github.com/jeanbmar/s3sync/internal/store"
	"github.com/jeanbmar/s3sync/internal/store/s3store"
	"github.com/jeanbmar/s3sync/internal/syncengine"
	"github.com/jeanbmar/s3sync/internal/transfer"
)

// endpoint is one side of a sync: either a bucket (optionally with a
// prefix) or a local directory. CLI endpoints spell a bucket side as
// "s3://bucket[/prefix]"; anything else is a local path.
type endpoint struct {
	isBucket bool
	bucket   string
	prefix   string
	path     string
}

const s3Scheme = "s3://"

func parseEndpoint(raw string) (endpoint, error) {
	if !strings.HasPrefix(raw, s3Scheme) {
		return endpoint{path: raw}, nil
	}

	rest := strings.TrimPrefix(raw, s3Scheme)

	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return endpoint{}, fmt.Errorf("empty bucket name in %q", raw)
	}

	return endpoint{isBucket: true, bucket: bucket, prefix: prefix}, nil
}

func newSyncCmd() *cobra.Command {
	var (
		flagDel      bool
		flagDryRun   bool
		flagSizeOnly bool
		flagFlatten  bool
		flagRelocate []string
	)

	cmd := &cobra.Command{
		Use:   "sync <source> <dest>",
		Short: "Synchronize a local tree with a bucket prefix, or one bucket prefix with another",
		Long: `Sync mirrors <source> onto <dest>. At least one side must be a bucket
endpoint written as s3://bucket[/prefix]; when only one is, the other is a
local directory path. If both sides are s3:// endpoints, objects are copied
server-side between buckets.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, args[0], args[1], flagDel, flagDryRun, flagSizeOnly, flagFlatten, flagRelocate)
		},
	}

	cmd.Flags().BoolVar(&flagDel, "delete", false, "propagate deletions to the destination")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "compute and print the plan without executing it")
	cmd.Flags().BoolVar(&flagSizeOnly, "size-only", false, "ignore modification time in the diff decision")
	cmd.Flags().BoolVar(&flagFlatten, "flatten", false, "write downloaded objects to the basename of their id")
	cmd.Flags().StringArrayVar(&flagRelocate, "relocate", nil, "source-prefix=target-prefix relocation rule (repeatable, first match wins)")

	return cmd
}

func parseRelocations(raw []string) (object.Rules, error) {
	rules := make(object.Rules, 0, len(raw))

	for _, r := range raw {
		src, dst, ok := strings.Cut(r, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --relocate %q: expected source-prefix=target-prefix", r)
		}

		rules = append(rules, object.Rule{SourcePrefix: src, TargetPrefix: dst})
	}

	return rules, nil
}

func runSync(cmd *cobra.Command, srcRaw, dstRaw string, del, dryRun, sizeOnly, flatten bool, relocateRaw []string) error {
	ctx := cmd.Context()
	cc := mustCLIContext(ctx)

	src, err := parseEndpoint(srcRaw)
	if err != nil {
		return err
	}

	dst, err := parseEndpoint(dstRaw)
	if err != nil {
		return err
	}

	if !src.isBucket && !dst.isBucket {
		return fmt.Errorf("at least one of <source>/<dest> must be an s3:// endpoint")
	}

	relocations, err := parseRelocations(relocateRaw)
	if err != nil {
		return err
	}

	client, err := s3store.New(ctx, s3store.WithLogger(cc.Logger))
	if err != nil {
		return fmt.Errorf("connecting to object store: %w", err)
	}

	monitor := newProgressMonitor(cc.Logger)

	opts := syncengine.Options{
		Del:                    del,
		DryRun:                 dryRun,
		SizeOnly:               sizeOnly,
		Flatten:                flatten,
		MaxConcurrentTransfers: cc.Cfg.Transfers.MaxConcurrentTransfers,
		Monitor:                monitor,
		Relocations:            relocations,
		ListingRetry: inventory.RetryPolicy{
			BaseBackoff: time.Duration(cc.Cfg.Listing.RetryBaseBackoffMS) * time.Millisecond,
			MaxRetries:  cc.Cfg.Listing.RetryMaxAttempts,
		},
	}

	result, err := dispatchSync(ctx, client, src, dst, opts, cc.Logger)
	if err != nil {
		return err
	}

	printPlanSummary(cc.Logger, result)

	return nil
}

func dispatchSync(ctx context.Context, client store.Client, src, dst endpoint, opts syncengine.Options, logger *slog.Logger) (syncengine.Result, error) {
	switch {
	case src.isBucket && dst.isBucket:
		return syncengine.BucketWithBucket(ctx, client, src.bucket, src.prefix, dst.bucket, dst.prefix, opts, logger)
	case dst.isBucket:
		return syncengine.BucketWithLocal(ctx, client, src.path, dst.bucket, dst.prefix, opts, logger)
	default:
		return syncengine.LocalWithBucket(ctx, client, src.bucket, src.prefix, dst.path, opts, logger)
	}
}

func printPlanSummary(logger *slog.Logger, result syncengine.Result) {
	logger.Info("sync complete",
		slog.Int("commands", len(result.Plan.Commands)),
		slog.Int("created", len(result.Plan.Diff.Created)),
		slog.Int("updated", len(result.Plan.Diff.Updated)),
		slog.Int("deleted", len(result.Plan.Diff.Deleted)),
		slog.String("bytes_transferred", humanize.Bytes(uint64(result.Final.CurrentSize))),
	)
}

// newProgressMonitor renders progress to stderr: an updating line when
// stderr is a terminal, one log line per event otherwise (e.g. CI logs).
func newProgressMonitor(logger *slog.Logger) *transfer.EventMonitor {
	tty := isatty.IsTerminal(os.Stderr.Fd())

	return transfer.NewEventMonitor(
		func(totalSize, totalCount int64) {
			logger.Info("transfer starting", slog.Int64("total_size", totalSize), slog.Int64("total_count", totalCount))
		},
		func(s transfer.Snapshot) {
			if tty {
				fmt.Fprintf(os.Stderr, "\r%s / %s  (%d/%d commands)",
					humanize.Bytes(uint64(s.CurrentSize)), humanize.Bytes(uint64(s.TotalSize)),
					s.CurrentCount, s.TotalCount)

				return
			}

			logger.Info("progress",
				slog.Int64("current_size", s.CurrentSize), slog.Int64("total_size", s.TotalSize),
				slog.Int64("current_count", s.CurrentCount), slog.Int64("total_count", s.TotalCount))
		},
	)
}
