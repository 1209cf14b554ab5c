// Package s3 implements the provider interfaces for AWS S3 and S3-compatible
// storage.
package s3

// Config configures an S3 client.
//
// Authentication follows the AWS SDK v2 default chain:
//  1. Explicit AccessKeyID/SecretAccessKey (if provided)
//  2. Environment variables (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY)
//  3. Shared credentials file (~/.aws/credentials)
//  4. Shared config file (~/.aws/config) with profile
//  5. EC2 instance metadata / ECS task role / EKS IRSA
//
// Region handling:
//   - For AWS S3: if Region is empty and not set via environment/profile,
//     defaults to us-east-1.
//   - For S3-compatible stores (Endpoint set): no default region is applied.
type Config struct {
	// Bucket is the bucket that object-scoped operations (copy target,
	// upload, list) act on. Account-scoped operations (ListBuckets) do not
	// need it.
	Bucket string

	// Region is the AWS region. Empty defers to environment/profile.
	Region string

	// Endpoint is a custom endpoint URL for S3-compatible stores
	// (MinIO, Wasabi, DigitalOcean Spaces). Leave empty for AWS S3.
	Endpoint string

	// Profile is the shared-config profile name. Empty uses the default
	// profile or environment credentials.
	Profile string

	// AccessKeyID / SecretAccessKey are explicit credentials. If one is set,
	// both must be. They take precedence over the default chain.
	AccessKeyID     string
	SecretAccessKey string

	// ForcePathStyle forces path-style URLs. Required for most
	// S3-compatible stores.
	ForcePathStyle bool

	// MaxKeys is the default page size for List operations.
	// Zero uses DefaultMaxKeys. Values over 1000 are clamped.
	MaxKeys int
}

// DefaultMaxKeys is the default page size for List operations.
const DefaultMaxKeys = 1000

// MaxAllowedKeys is the maximum page size allowed by S3.
const MaxAllowedKeys = 1000

// DefaultAWSRegion is the fallback region for AWS S3 when none is resolved.
const DefaultAWSRegion = "us-east-1"

// Validate checks configuration consistency before any remote call is made.
func (c *Config) Validate() error {
	if (c.AccessKeyID != "") != (c.SecretAccessKey != "") {
		return &ConfigError{
			Field:   "AccessKeyID/SecretAccessKey",
			Message: "both access key ID and secret access key must be provided together",
		}
	}
	return nil
}

// ConfigError represents a configuration validation error. It is fatal: no
// transfer job runs when the client cannot be configured.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "s3 config: " + e.Field + ": " + e.Message
}
