package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeanbmar/s3sync/internal/inventory"
	"github.com/jeanbmar/s3sync/internal/store/s3store"
	"github.com/jeanbmar/s3sync/internal/syncengine"
)

func newEmptyBucketCmd() *cobra.Command {
	var flagPrefix string

	cmd := &cobra.Command{
		Use:   "empty-bucket <bucket>",
		Short: "Delete every object under a bucket (optionally scoped to a prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cc := mustCLIContext(ctx)

			client, err := s3store.New(ctx, s3store.WithLogger(cc.Logger))
			if err != nil {
				return fmt.Errorf("connecting to object store: %w", err)
			}

			monitor := newProgressMonitor(cc.Logger)

			listingRetry := inventory.RetryPolicy{
				BaseBackoff: time.Duration(cc.Cfg.Listing.RetryBaseBackoffMS) * time.Millisecond,
				MaxRetries:  cc.Cfg.Listing.RetryMaxAttempts,
			}

			result, err := syncengine.EmptyBucket(ctx, client, args[0], flagPrefix, monitor, cc.Cfg.Transfers.MaxConcurrentTransfers, listingRetry, cc.Logger)
			if err != nil {
				return err
			}

			printPlanSummary(cc.Logger, result)

			return nil
		},
	}

	cmd.Flags().StringVar(&flagPrefix, "prefix", "", "restrict deletion to keys under this prefix")

	return cmd
}
