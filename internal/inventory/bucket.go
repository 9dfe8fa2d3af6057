package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/jeanbmar/s3sync/internal/object"
	"github.com/jeanbmar/s3sync/internal/store"
	"github.com/jeanbmar/s3sync/internal/syncerr"
)

// RetryPolicy bounds the per-page retry the bucket lister applies before
// surfacing ErrListFailed (spec §4.3: "Fails with ListFailed wrapping the
// underlying error if any page errors after retries"). This is the one
// retry layer the core owns itself — everything else is the underlying
// client's responsibility (spec §7). It is configurable via
// internal/config's ListingConfig; callers that pass the zero value get
// DefaultRetryPolicy.
type RetryPolicy struct {
	BaseBackoff time.Duration
	MaxRetries  int
}

// DefaultRetryPolicy matches config.DefaultConfig's listing defaults
// (internal/config.DefaultRetryBaseBackoffMS/DefaultRetryMaxAttempts).
// Callers resolving a config.Config should pass its ListingConfig through
// instead of relying on this fallback.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{BaseBackoff: 200 * time.Millisecond, MaxRetries: 5}
}

func (p RetryPolicy) orDefault() RetryPolicy {
	if p.BaseBackoff <= 0 {
		return DefaultRetryPolicy()
	}

	return p
}

// Bucket recursively enumerates bucket/prefix via lister into an Inventory
// keyed by id — the object's key as stored, with no prefix stripping
// (spec §4.3). Listing is resilient to pagination boundaries: the returned
// mapping is the union of all pages, deduplicated by key (last page wins
// on any duplicate, per spec §9's open question).
func Bucket(ctx context.Context, lister store.Lister, bucket, prefix string, policy RetryPolicy, logger *slog.Logger) (Inventory, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	policy = policy.orDefault()

	inv := make(Inventory)
	token := ""
	pageNum := 0

	for {
		page, err := fetchPageWithRetry(ctx, lister, bucket, prefix, token, policy)
		if err != nil {
			logger.Error("inventory: bucket listing failed",
				slog.String("bucket", bucket), slog.String("prefix", prefix), slog.Int("page", pageNum),
				slog.String("error", err.Error()))

			return nil, fmt.Errorf("inventory: listing %s/%s: %w: %w", bucket, prefix, syncerr.ErrListFailed, err)
		}

		for _, o := range page.Objects {
			inv[o.Key] = object.Object{
				ID:           o.Key,
				Size:         o.Size,
				LastModified: o.LastModified,
				Bucket:       bucket,
			}
		}

		pageNum++

		if page.NextToken == "" {
			break
		}

		token = page.NextToken
	}

	logger.Debug("inventory: bucket enumeration complete",
		slog.String("bucket", bucket), slog.String("prefix", prefix),
		slog.Int("pages", pageNum), slog.Int("count", len(inv)))

	return inv, nil
}

// fetchPageWithRetry fetches one listing page, retrying transient errors
// with bounded exponential backoff.
func fetchPageWithRetry(ctx context.Context, lister store.Lister, bucket, prefix, token string, policy RetryPolicy) (store.ListPage, error) {
	backoff, err := retry.NewExponential(policy.BaseBackoff)
	if err != nil {
		return store.ListPage{}, err
	}

	backoff = retry.WithMaxRetries(uint64(policy.MaxRetries), backoff)

	var page store.ListPage

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, listErr := lister.ListPage(ctx, bucket, prefix, token)
		if listErr != nil {
			return retry.RetryableError(listErr)
		}

		page = p

		return nil
	})

	return page, err
}
