package s3

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/oxfell/drover/pkg/provider"
)

// Client implements the provider interfaces against AWS S3.
type Client struct {
	api      *s3.Client
	uploader *manager.Uploader
	bucket   string
	maxKeys  int
}

// Ensure Client implements the interfaces.
var (
	_ provider.Lister       = (*Client)(nil)
	_ provider.Copier       = (*Client)(nil)
	_ provider.Uploader     = (*Client)(nil)
	_ provider.Header       = (*Client)(nil)
	_ provider.BucketLister = (*Client)(nil)
	_ provider.Closer       = (*Client)(nil)
)

// New creates an S3 client from the given configuration.
//
// Credential and region resolution happen here, before any job runs; a
// resolution failure is returned as a fatal error.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, &provider.Error{
			Op:       "New",
			Provider: provider.TypeS3,
			Bucket:   cfg.Bucket,
			Err:      err,
		}
	}

	s3Opts := []func(*s3.Options){
		func(o *s3.Options) {
			if cfg.ForcePathStyle {
				o.UsePathStyle = true
			}
		},
	}

	// Custom endpoint for S3-compatible stores
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	api := s3.NewFromConfig(awsCfg, s3Opts...)

	maxKeys := cfg.MaxKeys
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}

	return &Client{
		api:      api,
		uploader: manager.NewUploader(api),
		bucket:   cfg.Bucket,
		maxKeys:  maxKeys,
	}, nil
}

// loadAWSConfig builds the AWS configuration with appropriate credentials.
func loadAWSConfig(ctx context.Context, cfg Config) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error

	// Only apply an explicit region if the user set one.
	// Let the SDK resolve from env/profile first.
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		staticCreds := credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // session token (empty for long-term credentials)
		)
		opts = append(opts, config.WithCredentialsProvider(staticCreds))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}

	awsCfg.Region = resolveRegion(cfg.Endpoint, awsCfg.Region)

	return awsCfg, nil
}

// List returns a page of objects with the given prefix.
func (c *Client) List(ctx context.Context, opts provider.ListOptions) (*provider.ListResult, error) {
	maxKeys := clampMaxKeys(opts.MaxKeys, c.maxKeys)

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.bucket),
		MaxKeys: aws.Int32(int32(maxKeys)),
	}

	if opts.Prefix != "" {
		input.Prefix = aws.String(opts.Prefix)
	}

	if opts.ContinuationToken != "" {
		input.ContinuationToken = aws.String(opts.ContinuationToken)
	}

	out, err := c.api.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, c.wrapError("List", "", err)
	}

	objects := make([]provider.ObjectSummary, 0, len(out.Contents))
	for _, obj := range out.Contents {
		objects = append(objects, provider.ObjectSummary{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			ETag:         cleanETag(aws.ToString(obj.ETag)),
			LastModified: aws.ToTime(obj.LastModified),
		})
	}

	result := &provider.ListResult{
		Objects:     objects,
		IsTruncated: aws.ToBool(out.IsTruncated),
	}

	if out.NextContinuationToken != nil {
		result.ContinuationToken = *out.NextContinuationToken
	}

	return result, nil
}

// CopyObject performs a server-side copy into the client's bucket.
//
// When metadata is present the copy replaces the object metadata
// (MetadataDirective=REPLACE); otherwise the source metadata is carried over.
// The returned ETag is empty when the service omits the copy result, which
// callers treat as a warning rather than a failure.
func (c *Client) CopyObject(ctx context.Context, in provider.CopyInput) (string, error) {
	input := &s3.CopyObjectInput{
		Bucket:     aws.String(c.bucket),
		Key:        aws.String(in.Key),
		CopySource: aws.String(in.SourceBucket + "/" + in.SourceKey),
	}

	if len(in.Metadata) > 0 {
		input.Metadata = in.Metadata
		input.MetadataDirective = types.MetadataDirectiveReplace
	}

	out, err := c.api.CopyObject(ctx, input)
	if err != nil {
		return "", c.wrapError("CopyObject", in.Key, err)
	}

	if out.CopyObjectResult == nil {
		return "", nil
	}
	return cleanETag(aws.ToString(out.CopyObjectResult.ETag)), nil
}

// UploadFile uploads a local file to the client's bucket.
//
// The transfer manager handles multipart splitting for large files, so a
// single code path serves both small and large uploads.
func (c *Client) UploadFile(ctx context.Context, in provider.UploadInput) error {
	f, err := os.Open(in.LocalPath)
	if err != nil {
		return &provider.Error{
			Op:       "UploadFile",
			Provider: provider.TypeS3,
			Bucket:   c.bucket,
			Key:      in.Key,
			Err:      fmt.Errorf("open %s: %w", in.LocalPath, err),
		}
	}
	defer func() { _ = f.Close() }()

	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(in.Key),
		Body:   f,
	}
	if len(in.Metadata) > 0 {
		input.Metadata = in.Metadata
	}

	if _, err := c.uploader.Upload(ctx, input); err != nil {
		return c.wrapError("UploadFile", in.Key, err)
	}
	return nil
}

// Head fetches the metadata of a single object without its body.
func (c *Client) Head(ctx context.Context, key string) (*provider.ObjectMeta, error) {
	out, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, c.wrapError("Head", key, err)
	}

	return &provider.ObjectMeta{
		ObjectSummary: provider.ObjectSummary{
			Key:          key,
			Size:         aws.ToInt64(out.ContentLength),
			ETag:         cleanETag(aws.ToString(out.ETag)),
			LastModified: aws.ToTime(out.LastModified),
		},
		ContentType: aws.ToString(out.ContentType),
		Metadata:    out.Metadata,
	}, nil
}

// ListBuckets returns the buckets visible to the resolved credentials.
func (c *Client) ListBuckets(ctx context.Context) ([]provider.BucketInfo, error) {
	out, err := c.api.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, c.wrapError("ListBuckets", "", err)
	}

	buckets := make([]provider.BucketInfo, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		buckets = append(buckets, provider.BucketInfo{
			Name:      aws.ToString(b.Name),
			CreatedAt: aws.ToTime(b.CreationDate),
		})
	}
	return buckets, nil
}

// Close releases any resources held by the client.
// The S3 client doesn't require explicit cleanup, but this satisfies the interface.
func (c *Client) Close() error {
	return nil
}

// wrapError converts S3 errors to provider errors with appropriate sentinels.
func (c *Client) wrapError(op, key string, err error) error {
	wrapped := &provider.Error{
		Op:       op,
		Provider: provider.TypeS3,
		Bucket:   c.bucket,
		Key:      key,
		Err:      err,
	}

	// Check for specific S3 error types first
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket

	switch {
	case errors.As(err, &notFound), errors.As(err, &noSuchKey):
		wrapped.Err = provider.ErrNotFound
		return wrapped
	case errors.As(err, &noSuchBucket):
		wrapped.Err = provider.ErrBucketNotFound
		return wrapped
	}

	// Check smithy API errors for error codes
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			wrapped.Err = provider.ErrNotFound
		case "NoSuchBucket":
			wrapped.Err = provider.ErrBucketNotFound
		case "AccessDenied", "Forbidden":
			wrapped.Err = provider.ErrAccessDenied
		case "InvalidAccessKeyId", "SignatureDoesNotMatch":
			wrapped.Err = provider.ErrInvalidCredentials
		case "SlowDown", "Throttling", "RequestLimitExceeded":
			wrapped.Err = provider.ErrThrottled
		case "ServiceUnavailable", "InternalError":
			wrapped.Err = provider.ErrUnavailable
		}
		return wrapped
	}

	// Fallback: check the error message for common cases
	msg := err.Error()
	switch {
	case strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "NotFound") || strings.Contains(msg, "404"):
		wrapped.Err = provider.ErrNotFound
	case strings.Contains(msg, "NoSuchBucket"):
		wrapped.Err = provider.ErrBucketNotFound
	case strings.Contains(msg, "AccessDenied") || strings.Contains(msg, "Forbidden") || strings.Contains(msg, "403"):
		wrapped.Err = provider.ErrAccessDenied
	case strings.Contains(msg, "InvalidAccessKeyId") || strings.Contains(msg, "SignatureDoesNotMatch"):
		wrapped.Err = provider.ErrInvalidCredentials
	case strings.Contains(msg, "SlowDown") || strings.Contains(msg, "Throttling") || strings.Contains(msg, "429"):
		wrapped.Err = provider.ErrThrottled
	case strings.Contains(msg, "ServiceUnavailable") || strings.Contains(msg, "503"):
		wrapped.Err = provider.ErrUnavailable
	}

	return wrapped
}

// cleanETag removes surrounding quotes from an ETag value.
// S3 returns ETags with quotes, e.g., "d41d8cd98f00b204e9800998ecf8427e".
func cleanETag(etag string) string {
	return strings.Trim(etag, "\"")
}

// clampMaxKeys applies defaults and limits to maxKeys values.
func clampMaxKeys(requested, clientDefault int) int {
	if requested <= 0 {
		requested = clientDefault
	}
	if requested > MaxAllowedKeys {
		return MaxAllowedKeys
	}
	return requested
}

// resolveRegion applies the fallback region after SDK config loading.
// The SDK has already folded in explicit config, env, and profile resolution;
// only true AWS endpoints get the us-east-1 default. S3-compatible stores may
// not need a region at all.
func resolveRegion(endpoint, sdkRegion string) string {
	if sdkRegion != "" {
		return sdkRegion
	}
	if endpoint == "" {
		return DefaultAWSRegion
	}
	return ""
}
