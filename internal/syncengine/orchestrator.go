package syncengine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jeanbmar/s3sync/internal/diff"
	"github.com/jeanbmar/s3sync/internal/inventory"
	"github.com/jeanbmar/s3sync/internal/store"
	"github.com/jeanbmar/s3sync/internal/transfer"
)

// Result is returned by every orchestrator operation: the plan that was
// computed, and — unless DryRun was set — the final transfer snapshot.
type Result struct {
	Plan  Plan
	Final transfer.Snapshot
}

// jobLogger tags every log line for one invocation with a correlation id,
// the same idiom this codebase uses elsewhere for concurrent job tracking.
func jobLogger(logger *slog.Logger) (*slog.Logger, string) {
	if logger == nil {
		logger = slog.Default()
	}

	jobID := uuid.New().String()

	return logger.With(slog.String("job_id", jobID)), jobID
}

func dispatch(ctx context.Context, client store.Client, opts Options, plan Plan, logger *slog.Logger) (Result, error) {
	if opts.DryRun || len(plan.Commands) == 0 {
		return Result{Plan: plan}, nil
	}

	mgr := transfer.NewManager(client, opts.MaxConcurrentTransfers, opts.policy(), opts.monitor(), logger)

	final, err := mgr.Run(ctx, plan.Commands)
	if err != nil {
		return Result{Plan: plan, Final: final}, err
	}

	return Result{Plan: plan, Final: final}, nil
}

// BucketWithLocal mirrors a local tree into a bucket prefix (spec §4.5's
// bucketWithLocal). localDir is the source; bucket/bucketPrefix is the
// target.
func BucketWithLocal(ctx context.Context, client store.Client, localDir, bucket, bucketPrefix string, opts Options, logger *slog.Logger) (Result, error) {
	logger, _ = jobLogger(logger)
	logger.Info("bucketWithLocal starting", slog.String("local_dir", localDir), slog.String("bucket", bucket), slog.String("prefix", bucketPrefix))

	localInv, err := inventory.Local(localDir, logger)
	if err != nil {
		return Result{}, fmt.Errorf("syncengine: bucketWithLocal: %w", err)
	}

	bucketInv, err := inventory.Bucket(ctx, client, bucket, bucketPrefix, opts.ListingRetry, logger)
	if err != nil {
		return Result{}, fmt.Errorf("syncengine: bucketWithLocal: %w", err)
	}

	localInv = applyFilters(localInv, opts)
	bucketInv = applyFilters(bucketInv, opts)

	res := diff.Diff(localInv, bucketInv, diff.Options{SizeOnly: opts.SizeOnly})
	rules := effectiveRelocations(opts, "", bucketPrefix)

	plan := Plan{Commands: buildUploadCommands(res, opts, rules, bucket), Diff: res}

	return dispatch(ctx, client, opts, plan, logger)
}

// LocalWithBucket mirrors a bucket prefix into a local tree (spec §4.5's
// localWithBucket). bucket/bucketPrefix is the source; localDir is the
// target.
func LocalWithBucket(ctx context.Context, client store.Client, bucket, bucketPrefix, localDir string, opts Options, logger *slog.Logger) (Result, error) {
	logger, _ = jobLogger(logger)
	logger.Info("localWithBucket starting", slog.String("bucket", bucket), slog.String("prefix", bucketPrefix), slog.String("local_dir", localDir))

	bucketInv, err := inventory.Bucket(ctx, client, bucket, bucketPrefix, opts.ListingRetry, logger)
	if err != nil {
		return Result{}, fmt.Errorf("syncengine: localWithBucket: %w", err)
	}

	localInv, err := inventory.Local(localDir, logger)
	if err != nil {
		return Result{}, fmt.Errorf("syncengine: localWithBucket: %w", err)
	}

	bucketInv = applyFilters(bucketInv, opts)
	localInv = applyFilters(localInv, opts)

	res := diff.Diff(bucketInv, localInv, diff.Options{SizeOnly: opts.SizeOnly})
	rules := effectiveRelocations(opts, bucketPrefix, "")

	cmds, err := buildDownloadCommands(res, opts, rules, bucket, localDir, map[string]string{})
	if err != nil {
		return Result{}, fmt.Errorf("syncengine: localWithBucket: %w", err)
	}

	plan := Plan{Commands: cmds, Diff: res}

	return dispatch(ctx, client, opts, plan, logger)
}

// BucketWithBucket server-side copies one bucket prefix into another (spec
// §4.5's bucketWithBucket).
func BucketWithBucket(ctx context.Context, client store.Client, srcBucket, srcPrefix, dstBucket, dstPrefix string, opts Options, logger *slog.Logger) (Result, error) {
	logger, _ = jobLogger(logger)
	logger.Info("bucketWithBucket starting",
		slog.String("src_bucket", srcBucket), slog.String("src_prefix", srcPrefix),
		slog.String("dst_bucket", dstBucket), slog.String("dst_prefix", dstPrefix))

	srcInv, err := inventory.Bucket(ctx, client, srcBucket, srcPrefix, opts.ListingRetry, logger)
	if err != nil {
		return Result{}, fmt.Errorf("syncengine: bucketWithBucket: %w", err)
	}

	dstInv, err := inventory.Bucket(ctx, client, dstBucket, dstPrefix, opts.ListingRetry, logger)
	if err != nil {
		return Result{}, fmt.Errorf("syncengine: bucketWithBucket: %w", err)
	}

	srcInv = applyFilters(srcInv, opts)
	dstInv = applyFilters(dstInv, opts)

	res := diff.Diff(srcInv, dstInv, diff.Options{SizeOnly: opts.SizeOnly})
	rules := effectiveRelocations(opts, srcPrefix, dstPrefix)

	plan := Plan{Commands: buildCopyCommands(res, opts, rules, srcBucket, dstBucket), Diff: res}

	return dispatch(ctx, client, opts, plan, logger)
}

// EmptyBucket deletes every object under bucket/prefix.
func EmptyBucket(ctx context.Context, client store.Client, bucket, prefix string, monitor transfer.Monitor, maxConcurrentTransfers int, listingRetry inventory.RetryPolicy, logger *slog.Logger) (Result, error) {
	logger, _ = jobLogger(logger)
	logger.Info("emptyBucket starting", slog.String("bucket", bucket), slog.String("prefix", prefix))

	inv, err := inventory.Bucket(ctx, client, bucket, prefix, listingRetry, logger)
	if err != nil {
		return Result{}, fmt.Errorf("syncengine: emptyBucket: %w", err)
	}

	cmds := make([]transfer.Command, 0, len(inv))
	for id := range inv {
		cmds = append(cmds, transfer.Command{Variant: transfer.Delete, TargetBucket: bucket, TargetKey: id})
	}

	opts := Options{Monitor: monitor, MaxConcurrentTransfers: maxConcurrentTransfers}
	plan := Plan{Commands: cmds}

	return dispatch(ctx, client, opts, plan, logger)
}
