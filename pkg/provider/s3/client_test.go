package s3

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxfell/drover/pkg/provider"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "empty config is valid",
			cfg:  Config{},
		},
		{
			name: "bucket alone is valid",
			cfg:  Config{Bucket: "data"},
		},
		{
			name: "both credentials provided",
			cfg:  Config{AccessKeyID: "AKIA", SecretAccessKey: "secret"},
		},
		{
			name:    "access key without secret",
			cfg:     Config{AccessKeyID: "AKIA"},
			wantErr: true,
		},
		{
			name:    "secret without access key",
			cfg:     Config{SecretAccessKey: "secret"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				var cfgErr *ConfigError
				assert.True(t, errors.As(err, &cfgErr))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "Bucket", Message: "required"}
	assert.Equal(t, "s3 config: Bucket: required", err.Error())
}

func TestCleanETag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `"d41d8cd98f00b204e9800998ecf8427e"`, want: "d41d8cd98f00b204e9800998ecf8427e"},
		{in: "d41d8cd98f00b204e9800998ecf8427e", want: "d41d8cd98f00b204e9800998ecf8427e"},
		{in: `""`, want: ""},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanETag(tt.in))
	}
}

func TestClampMaxKeys(t *testing.T) {
	tests := []struct {
		name          string
		requested     int
		clientDefault int
		want          int
	}{
		{name: "zero uses client default", requested: 0, clientDefault: 500, want: 500},
		{name: "negative uses client default", requested: -1, clientDefault: 500, want: 500},
		{name: "explicit value kept", requested: 100, clientDefault: 500, want: 100},
		{name: "over limit clamped", requested: 5000, clientDefault: 500, want: MaxAllowedKeys},
		{name: "default over limit clamped", requested: 0, clientDefault: 5000, want: MaxAllowedKeys},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampMaxKeys(tt.requested, tt.clientDefault))
		})
	}
}

func TestResolveRegion(t *testing.T) {
	tests := []struct {
		name      string
		endpoint  string
		sdkRegion string
		want      string
	}{
		{name: "sdk region wins", endpoint: "", sdkRegion: "eu-west-1", want: "eu-west-1"},
		{name: "sdk region wins with endpoint", endpoint: "http://minio:9000", sdkRegion: "eu-west-1", want: "eu-west-1"},
		{name: "aws without region falls back", endpoint: "", sdkRegion: "", want: DefaultAWSRegion},
		{name: "compatible store gets no default", endpoint: "http://minio:9000", sdkRegion: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveRegion(tt.endpoint, tt.sdkRegion))
		})
	}
}

// fakeAPIError satisfies smithy.APIError for wrapError mapping tests.
type fakeAPIError struct {
	code string
}

func (e *fakeAPIError) Error() string                 { return fmt.Sprintf("api error %s", e.code) }
func (e *fakeAPIError) ErrorCode() string             { return e.code }
func (e *fakeAPIError) ErrorMessage() string          { return e.code }
func (e *fakeAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func TestWrapError_SentinelMapping(t *testing.T) {
	c := &Client{bucket: "data"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "typed no such key", err: &types.NoSuchKey{}, want: provider.ErrNotFound},
		{name: "typed not found", err: &types.NotFound{}, want: provider.ErrNotFound},
		{name: "typed no such bucket", err: &types.NoSuchBucket{}, want: provider.ErrBucketNotFound},
		{name: "code no such key", err: &fakeAPIError{code: "NoSuchKey"}, want: provider.ErrNotFound},
		{name: "code no such bucket", err: &fakeAPIError{code: "NoSuchBucket"}, want: provider.ErrBucketNotFound},
		{name: "code access denied", err: &fakeAPIError{code: "AccessDenied"}, want: provider.ErrAccessDenied},
		{name: "code forbidden", err: &fakeAPIError{code: "Forbidden"}, want: provider.ErrAccessDenied},
		{name: "code invalid access key", err: &fakeAPIError{code: "InvalidAccessKeyId"}, want: provider.ErrInvalidCredentials},
		{name: "code signature mismatch", err: &fakeAPIError{code: "SignatureDoesNotMatch"}, want: provider.ErrInvalidCredentials},
		{name: "code slow down", err: &fakeAPIError{code: "SlowDown"}, want: provider.ErrThrottled},
		{name: "code request limit", err: &fakeAPIError{code: "RequestLimitExceeded"}, want: provider.ErrThrottled},
		{name: "code service unavailable", err: &fakeAPIError{code: "ServiceUnavailable"}, want: provider.ErrUnavailable},
		{name: "code internal error", err: &fakeAPIError{code: "InternalError"}, want: provider.ErrUnavailable},
		{name: "message 404", err: errors.New("operation failed: 404"), want: provider.ErrNotFound},
		{name: "message 403", err: errors.New("operation failed: 403"), want: provider.ErrAccessDenied},
		{name: "message throttling", err: errors.New("Throttling: rate exceeded"), want: provider.ErrThrottled},
		{name: "message 503", err: errors.New("operation failed: 503"), want: provider.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.wrapError("List", "reports/a.csv", tt.err)
			assert.True(t, errors.Is(err, tt.want), "want %v in chain, got %v", tt.want, err)

			var provErr *provider.Error
			require.True(t, errors.As(err, &provErr))
			assert.Equal(t, "List", provErr.Op)
			assert.Equal(t, "data", provErr.Bucket)
			assert.Equal(t, "reports/a.csv", provErr.Key)
		})
	}
}

func TestWrapError_UnknownErrorKeptVerbatim(t *testing.T) {
	c := &Client{bucket: "data"}
	boom := errors.New("connection reset")

	err := c.wrapError("CopyObject", "k", boom)
	assert.True(t, errors.Is(err, boom))
	assert.False(t, provider.IsNotFound(err))
	assert.False(t, provider.IsAccessDenied(err))
}
