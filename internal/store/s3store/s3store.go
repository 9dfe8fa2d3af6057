// Package s3store is a store.Client backed by Amazon S3 (or an
// S3-compatible endpoint), the one concrete object-store backing named in
// SPEC_FULL.md's domain stack. Every other package in this module treats
// store.Client as an opaque capability; nothing outside this package
// imports aws-sdk-go-v2 directly.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/jeanbmar/s3sync/internal/store"
)

// Client is a store.Client backed by the AWS SDK for Go v2. The zero value
// is not usable; construct one with New or NewFromConfig. Safe for
// concurrent use by multiple goroutines, matching the underlying
// *s3.Client (spec §5).
type Client struct {
	api        *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	logger     *slog.Logger
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithLogger overrides the default discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithPartSize overrides the multipart upload/download chunk size used by
// the manager.Uploader/Downloader (bytes).
func WithPartSize(size int64) Option {
	return func(c *Client) {
		c.uploader.PartSize = size
		c.downloader.PartSize = size
	}
}

// New resolves credentials and region via the default AWS config chain
// (environment, shared config file, IAM role) and returns a ready Client.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3store: loading aws config: %w", err)
	}

	return NewFromConfig(cfg, opts...), nil
}

// NewFromConfig builds a Client from an already-resolved aws.Config,
// letting callers override region, endpoint, or credentials explicitly
// (e.g. for S3-compatible stores).
func NewFromConfig(cfg aws.Config, opts ...Option) *Client {
	api := s3.NewFromConfig(cfg)

	c := &Client{
		api:      api,
		uploader: manager.NewUploader(api),
		// Concurrency is pinned to 1: Get adapts an io.Writer (sequential)
		// rather than an io.WriterAt, so concurrent ranged GETs would
		// write out of order.
		downloader: manager.NewDownloader(api, func(d *manager.Downloader) { d.Concurrency = 1 }),
		logger:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListPage implements store.Lister.
func (c *Client) ListPage(ctx context.Context, bucket, prefix, token string) (store.ListPage, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}

	if token != "" {
		input.ContinuationToken = aws.String(token)
	}

	out, err := c.api.ListObjectsV2(ctx, input)
	if err != nil {
		return store.ListPage{}, fmt.Errorf("s3store: list %s/%s: %w", bucket, prefix, err)
	}

	page := store.ListPage{Objects: make([]store.ListedObject, 0, len(out.Contents))}

	for _, obj := range out.Contents {
		var size int64
		if obj.Size != nil {
			size = *obj.Size
		}

		var mtime int64
		if obj.LastModified != nil {
			mtime = obj.LastModified.UnixMilli()
		}

		page.Objects = append(page.Objects, store.ListedObject{
			Key:          aws.ToString(obj.Key),
			Size:         size,
			LastModified: mtime,
		})
	}

	if aws.ToBool(out.IsTruncated) {
		page.NextToken = aws.ToString(out.NextContinuationToken)
	}

	return page, nil
}

// Get implements store.Getter, streaming via manager.Downloader's ranged
// GETs, issued one at a time (Concurrency is pinned to 1 in NewFromConfig).
func (c *Client) Get(ctx context.Context, bucket, key string, w io.Writer) (int64, error) {
	n, err := c.downloader.Download(ctx, fakeWriterAt{w}, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("s3store: get %s/%s: %w", bucket, key, err)
	}

	return n, nil
}

// Put implements store.Putter, using manager.Uploader so large objects are
// transparently split into multipart uploads.
func (c *Client) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, input store.PutInput) error {
	upInput := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
	}

	if input.ACL != "" {
		upInput.ACL = types.ObjectCannedACL(input.ACL)
	}

	if input.ContentType != "" {
		upInput.ContentType = aws.String(input.ContentType)
	}

	if len(input.Metadata) > 0 {
		upInput.Metadata = input.Metadata
	}

	if _, err := c.uploader.Upload(ctx, upInput); err != nil {
		return fmt.Errorf("s3store: put %s/%s: %w", bucket, key, err)
	}

	c.logger.Debug("put object", slog.String("bucket", bucket), slog.String("key", key), slog.Int64("size", size))

	return nil
}

// Copy implements store.Copier via S3's server-side CopyObject, avoiding a
// round trip through the caller for same-store relocations.
func (c *Client) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string, input store.CopyInput) error {
	copyInput := &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(srcBucket + "/" + srcKey),
	}

	if input.ACL != "" {
		copyInput.ACL = types.ObjectCannedACL(input.ACL)
	}

	if input.ContentType != "" {
		copyInput.ContentType = aws.String(input.ContentType)
		copyInput.MetadataDirective = types.MetadataDirectiveReplace
	}

	if len(input.Metadata) > 0 {
		copyInput.Metadata = input.Metadata
		copyInput.MetadataDirective = types.MetadataDirectiveReplace
	}

	if _, err := c.api.CopyObject(ctx, copyInput); err != nil {
		return fmt.Errorf("s3store: copy %s/%s -> %s/%s: %w", srcBucket, srcKey, dstBucket, dstKey, err)
	}

	return nil
}

// Delete implements store.Deleter for a single key.
func (c *Client) Delete(ctx context.Context, bucket, key string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3store: delete %s/%s: %w", bucket, key, err)
	}

	return nil
}

// deleteBatchSize is S3's DeleteObjects limit per request.
const deleteBatchSize = 1000

// DeleteBatch implements store.Deleter, chunking into deleteBatchSize-sized
// DeleteObjects calls.
func (c *Client) DeleteBatch(ctx context.Context, bucket string, keys []string) error {
	for start := 0; start < len(keys); start += deleteBatchSize {
		end := start + deleteBatchSize
		if end > len(keys) {
			end = len(keys)
		}

		if err := c.deleteChunk(ctx, bucket, keys[start:end]); err != nil {
			return err
		}
	}

	return nil
}

func (c *Client) deleteChunk(ctx context.Context, bucket string, keys []string) error {
	objects := make([]types.ObjectIdentifier, len(keys))
	for i, k := range keys {
		objects[i] = types.ObjectIdentifier{Key: aws.String(k)}
	}

	out, err := c.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &types.Delete{Objects: objects},
	})
	if err != nil {
		return fmt.Errorf("s3store: delete batch of %d keys: %w", len(keys), err)
	}

	if len(out.Errors) > 0 {
		return fmt.Errorf("s3store: %d of %d deletes failed, first error: %s", len(out.Errors), len(keys), aws.ToString(out.Errors[0].Message))
	}

	return nil
}

// IsNotFound reports whether err represents a missing-object response from
// S3, unwrapping smithy API errors.
func IsNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	var apiErr smithy.APIError

	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound"
}

// fakeWriterAt adapts an io.Writer to the io.WriterAt manager.Downloader
// requires. Correct only because the downloader is pinned to Concurrency 1
// above, so writes always arrive in offset order.
type fakeWriterAt struct {
	w io.Writer
}

func (fw fakeWriterAt) WriteAt(p []byte, _ int64) (int, error) {
	return fw.w.Write(p)
}
