package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanbmar/s3sync/internal/store"
	"github.com/jeanbmar/s3sync/internal/syncerr"
)

// fakeLister serves a fixed sequence of pages, optionally failing the
// first N calls for a given token to exercise the retry path.
type fakeLister struct {
	pages     map[string]store.ListPage // token -> page
	failFirst map[string]int            // token -> failures remaining
	calls     map[string]int
}

func (f *fakeLister) ListPage(_ context.Context, _, _, token string) (store.ListPage, error) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}

	f.calls[token]++

	if f.failFirst[token] > 0 {
		f.failFirst[token]--
		return store.ListPage{}, errors.New("transient listing error")
	}

	page, ok := f.pages[token]
	if !ok {
		return store.ListPage{}, errors.New("unexpected token")
	}

	return page, nil
}

func TestBucket_UnionsAllPagesWithoutDuplicates(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{
		pages: map[string]store.ListPage{
			"": {
				Objects:   []store.ListedObject{{Key: "a", Size: 1, LastModified: 10}},
				NextToken: "p2",
			},
			"p2": {
				Objects: []store.ListedObject{
					{Key: "b", Size: 2, LastModified: 20},
					{Key: "a", Size: 99, LastModified: 99}, // duplicate key, last write wins
				},
				NextToken: "",
			},
		},
	}

	inv, err := Bucket(context.Background(), lister, "bkt", "", RetryPolicy{}, nil)
	require.NoError(t, err)
	require.Len(t, inv, 2)
	assert.Equal(t, int64(99), inv["a"].Size)
	assert.Equal(t, "bkt", inv["a"].Bucket)
	assert.Equal(t, int64(2), inv["b"].Size)
}

func TestBucket_RetriesTransientPageErrors(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{
		pages: map[string]store.ListPage{
			"": {Objects: []store.ListedObject{{Key: "only", Size: 1, LastModified: 1}}},
		},
		failFirst: map[string]int{"": 2},
	}

	inv, err := Bucket(context.Background(), lister, "bkt", "pre", RetryPolicy{}, nil)
	require.NoError(t, err)
	assert.Contains(t, inv, "only")
	assert.Equal(t, 3, lister.calls[""])
}

func TestBucket_ExhaustedRetriesWrapsListFailed(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{
		pages:     map[string]store.ListPage{},
		failFirst: map[string]int{"": 1000},
	}

	_, err := Bucket(context.Background(), lister, "bkt", "", RetryPolicy{}, nil)
	require.ErrorIs(t, err, syncerr.ErrListFailed)
}

func TestBucket_UsesConfiguredRetryPolicy(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{
		pages: map[string]store.ListPage{
			"": {Objects: []store.ListedObject{{Key: "only", Size: 1, LastModified: 1}}},
		},
		failFirst: map[string]int{"": 2},
	}

	inv, err := Bucket(context.Background(), lister, "bkt", "", RetryPolicy{BaseBackoff: time.Millisecond, MaxRetries: 1}, nil)
	require.ErrorIs(t, err, syncerr.ErrListFailed)
	assert.Empty(t, inv)
	assert.Equal(t, 2, lister.calls[""])
}

func TestBucket_EmptyListing(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{pages: map[string]store.ListPage{"": {}}}

	inv, err := Bucket(context.Background(), lister, "bkt", "", RetryPolicy{}, nil)
	require.NoError(t, err)
	assert.Empty(t, inv)
}
