package syncengine

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanbmar/s3sync/internal/inventory"
	"github.com/jeanbmar/s3sync/internal/object"
	"github.com/jeanbmar/s3sync/internal/syncerr"
	"github.com/jeanbmar/s3sync/internal/transfer"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeLocalFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// TestBucketWithLocal_SingleDirectoryMirror is spec §8 scenario 3: a local
// tree with one file uploads under the bucket root with no prefix.
func TestBucketWithLocal_SingleDirectoryMirror(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLocalFile(t, filepath.Join(dir, "xmoj"), []byte("abc"))

	s := newFakeStore()

	res, err := BucketWithLocal(context.Background(), s, dir, "B", "", Options{}, discardLogger())
	require.NoError(t, err)
	assert.Len(t, res.Plan.Commands, 1)

	s.mu.Lock()
	_, ok := s.buckets["B"]["xmoj"]
	s.mu.Unlock()
	assert.True(t, ok)
}

// TestBucketWithBucket_RelocationDuringSync is spec §8 scenario 4.
func TestBucketWithBucket_RelocationDuringSync(t *testing.T) {
	t.Parallel()

	s := newFakeStore()
	for i := range 11 {
		s.put("B2", "def/jkl/"+string(rune('a'+i)), []byte("x"), 0)
	}

	opts := Options{
		Relocations: object.Rules{{SourcePrefix: "def/jkl", TargetPrefix: "relocated-bis/folder"}},
	}

	_, err := BucketWithBucket(context.Background(), s, "B2", "def/jkl", "B", "", opts, discardLogger())
	require.NoError(t, err)

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key := range s.buckets["B"] {
		if hasPrefix(key, "relocated-bis/folder") {
			count++
		}
	}

	assert.Equal(t, 11, count)
	_, ok := s.buckets["B"]["relocated-bis/folder/a"]
	assert.True(t, ok)
}

// TestBucketWithLocal_FullMirrorWithDeletion is spec §8 scenario 5 (scaled
// down from 10000 objects).
func TestBucketWithLocal_FullMirrorWithDeletion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	const n = 25
	for i := range n {
		writeLocalFile(t, filepath.Join(dir, "file"+string(rune('a'+i))), []byte("x"))
	}

	s := newFakeStore()
	s.put("B", "xmoj", []byte("foreign"), 0) // prior foreign key, must be removed under del

	res, err := BucketWithLocal(context.Background(), s, dir, "B", "", Options{Del: true}, discardLogger())
	require.NoError(t, err)
	assert.Len(t, res.Plan.Diff.Created, n)
	assert.Len(t, res.Plan.Diff.Deleted, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Len(t, s.buckets["B"], n)
	_, foreignStillThere := s.buckets["B"]["xmoj"]
	assert.False(t, foreignStillThere)
}

// TestBucketWithLocal_SecondRunIsEmpty is spec §8's idempotence property:
// running the same sync twice produces an empty command list the second
// time, since the bucket already matches the local tree after the first
// run.
func TestBucketWithLocal_SecondRunIsEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLocalFile(t, filepath.Join(dir, "a"), []byte("abc"))
	writeLocalFile(t, filepath.Join(dir, "nested", "b"), []byte("defg"))

	s := newFakeStore()

	// SizeOnly sidesteps the fake store's zeroed LastModified on Put,
	// which would otherwise always compare stale against the local
	// source's real mtime; size-based comparison is what's under test
	// here, not the mtime clock.
	opts := Options{Del: true, SizeOnly: true}

	first, err := BucketWithLocal(context.Background(), s, dir, "B", "", opts, discardLogger())
	require.NoError(t, err)
	assert.Len(t, first.Plan.Commands, 2)

	second, err := BucketWithLocal(context.Background(), s, dir, "B", "", opts, discardLogger())
	require.NoError(t, err)
	assert.Empty(t, second.Plan.Commands)
}

// TestLocalWithBucket_AbortSemantics is spec §8 scenario 6: a monitor that
// aborts on the first progress event must fail the sync with Aborted.
func TestLocalWithBucket_AbortSemantics(t *testing.T) {
	t.Parallel()

	s := newFakeStore()
	for i := range 5 {
		s.put("B2", "f"+string(rune('a'+i)), []byte("data"), 0)
	}

	dir := t.TempDir()

	var monitor *transfer.EventMonitor
	monitor = transfer.NewEventMonitor(nil, func(transfer.Snapshot) {
		monitor.Abort()
	})

	opts := Options{Monitor: monitor, MaxConcurrentTransfers: 1}

	_, err := LocalWithBucket(context.Background(), s, "B2", "", dir, opts, discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, syncerr.ErrAborted)
}

// TestBucketWithLocal_DryRunComputesWithoutExecuting verifies dryRun
// returns commands without mutating the store.
func TestBucketWithLocal_DryRunComputesWithoutExecuting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLocalFile(t, filepath.Join(dir, "a"), []byte("x"))

	s := newFakeStore()

	res, err := BucketWithLocal(context.Background(), s, dir, "B", "", Options{DryRun: true}, discardLogger())
	require.NoError(t, err)
	assert.Len(t, res.Plan.Commands, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Empty(t, s.buckets["B"])
}

// TestRoundTrip_BucketWithLocalThenLocalWithBucket is spec §8's round-trip
// algebraic property: the two directories end up with the same id set and
// sizes.
func TestRoundTrip_BucketWithLocalThenLocalWithBucket(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	writeLocalFile(t, filepath.Join(srcDir, "a/b/c"), []byte("hello"))
	writeLocalFile(t, filepath.Join(srcDir, "top"), []byte("world!"))

	s := newFakeStore()

	_, err := BucketWithLocal(context.Background(), s, srcDir, "B", "", Options{}, discardLogger())
	require.NoError(t, err)

	dstDir := t.TempDir()

	_, err = LocalWithBucket(context.Background(), s, "B", "", dstDir, Options{}, discardLogger())
	require.NoError(t, err)

	for _, rel := range []string{"a/b/c", "top"} {
		srcInfo, err := os.Stat(filepath.Join(srcDir, rel))
		require.NoError(t, err)

		dstInfo, err := os.Stat(filepath.Join(dstDir, rel))
		require.NoError(t, err)

		assert.Equal(t, srcInfo.Size(), dstInfo.Size())
	}
}

func TestEmptyBucket_DeletesEverything(t *testing.T) {
	t.Parallel()

	s := newFakeStore()
	s.put("B", "a", []byte("1"), 0)
	s.put("B", "b", []byte("2"), 0)

	_, err := EmptyBucket(context.Background(), s, "B", "", nil, 2, inventory.RetryPolicy{}, discardLogger())
	require.NoError(t, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Empty(t, s.buckets["B"])
}
