// Package provider defines the remote storage surface consumed by the batch
// transfer engine.
//
// Implementations authenticate through their SDK default credential chains
// and must be safe for concurrent use: one client is shared by every
// in-flight transfer job.
package provider

import (
	"context"
	"time"
)

// Lister returns pages of objects under a prefix. Pagination uses opaque
// continuation tokens; an empty token in the result means no more pages.
type Lister interface {
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
}

// Copier copies a single object between buckets.
//
// The returned ETag may be empty when the service omits it from an otherwise
// successful response; callers decide how strict to be about that.
type Copier interface {
	CopyObject(ctx context.Context, in CopyInput) (etag string, err error)
}

// Uploader stores a local file as a remote object.
type Uploader interface {
	UploadFile(ctx context.Context, in UploadInput) error
}

// Header fetches full metadata for a single object without its body.
type Header interface {
	Head(ctx context.Context, key string) (*ObjectMeta, error)
}

// BucketLister enumerates the buckets visible to the resolved credentials.
type BucketLister interface {
	ListBuckets(ctx context.Context) ([]BucketInfo, error)
}

// Closer releases client resources after a run.
type Closer interface {
	Close() error
}

// ListOptions configures a List call.
type ListOptions struct {
	// Prefix restricts results to keys starting with this value.
	Prefix string

	// ContinuationToken resumes from a previous page. Empty starts over.
	ContinuationToken string

	// MaxKeys caps the page size. Zero uses the provider default.
	MaxKeys int
}

// ListResult is one page of a listing.
type ListResult struct {
	Objects []ObjectSummary

	// ContinuationToken retrieves the next page; empty means exhausted.
	ContinuationToken string

	// IsTruncated reports whether more results remain.
	IsTruncated bool
}

// ObjectSummary is the per-object metadata returned by List.
type ObjectSummary struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// ObjectMeta is the full metadata for a single object, returned by Head.
type ObjectMeta struct {
	ObjectSummary

	// ContentType is the MIME type of the object.
	ContentType string

	// Metadata contains user-defined metadata key-value pairs.
	Metadata map[string]string
}

// BucketInfo describes one bucket from ListBuckets.
type BucketInfo struct {
	Name      string
	CreatedAt time.Time
}

// CopyInput identifies a single server-side copy.
type CopyInput struct {
	// SourceBucket and SourceKey locate the object to copy.
	SourceBucket string
	SourceKey    string

	// Key is the destination key in the client's bucket.
	Key string

	// Metadata replaces the object metadata on the copy when non-empty.
	Metadata map[string]string
}

// UploadInput identifies a single local-file upload.
type UploadInput struct {
	// LocalPath is the file to read.
	LocalPath string

	// Key is the destination key in the client's bucket.
	Key string

	// Metadata is attached to the stored object.
	Metadata map[string]string
}

// Type identifies a storage backend.
type Type string

// TypeS3 is AWS S3 or S3-compatible storage.
const TypeS3 Type = "s3"

func (t Type) String() string { return string(t) }
