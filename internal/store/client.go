// Package store defines the narrow interfaces the sync engine requires of
// an object-store client. The concrete SDK is treated as an opaque
// capability per spec §1; package s3store provides one real backing
// implementation. Every method takes a context so the transfer manager's
// single abort token can be threaded through to in-flight calls (spec §4.6).
package store

import (
	"context"
	"io"
)

// ListedObject is one entry returned by a bucket listing page.
type ListedObject struct {
	Key          string
	Size         int64
	LastModified int64 // milliseconds since epoch
}

// ListPage is one page of a bucket listing. NextToken is empty when the
// listing is exhausted.
type ListPage struct {
	Objects   []ListedObject
	NextToken string
}

// Lister paginates a bucket prefix listing.
type Lister interface {
	// ListPage returns one page of objects under bucket/prefix. Pass an
	// empty token for the first page, and the previous page's NextToken
	// thereafter.
	ListPage(ctx context.Context, bucket, prefix, token string) (ListPage, error)
}

// Getter downloads object content.
type Getter interface {
	// Get streams bucket/key's content into w, returning the number of
	// bytes written.
	Get(ctx context.Context, bucket, key string, w io.Writer) (int64, error)
}

// PutInput carries per-object metadata for an upload.
type PutInput struct {
	ACL         string
	ContentType string
	Metadata    map[string]string
}

// Putter uploads object content.
type Putter interface {
	// Put streams r (exactly size bytes) to bucket/key.
	Put(ctx context.Context, bucket, key string, r io.Reader, size int64, input PutInput) error
}

// CopyInput carries per-object metadata for a server-side copy.
type CopyInput struct {
	ACL         string
	ContentType string
	Metadata    map[string]string
}

// Copier performs a server-side copy between two bucket/key coordinates,
// which may be the same bucket (prefix-to-prefix sync) or different ones.
type Copier interface {
	Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string, input CopyInput) error
}

// Deleter removes objects. DeleteBatch may be implemented as a true batched
// delete call where the underlying store supports it; callers must not
// assume atomicity across the batch.
type Deleter interface {
	Delete(ctx context.Context, bucket, key string) error
	DeleteBatch(ctx context.Context, bucket string, keys []string) error
}

// Client is the full capability surface the sync engine requires of an
// object store. Implementations must be safe for concurrent use by
// multiple goroutines (spec §5): the transfer manager shares one Client
// across its whole worker pool.
type Client interface {
	Lister
	Getter
	Putter
	Copier
	Deleter
}
