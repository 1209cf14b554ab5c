package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by provider operations. Implementations map their
// SDK error codes onto these so callers can classify failures without
// importing SDK types.
var (
	ErrNotFound           = errors.New("object not found")
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrThrottled          = errors.New("request throttled")
	ErrUnavailable        = errors.New("provider unavailable")
)

// Error wraps a provider failure with the operation and object it concerns.
// Each failed transfer job logs one of these, so the message must carry
// enough context to retry that job by hand.
type Error struct {
	Op       string // operation that failed, e.g. "CopyObject"
	Provider Type
	Bucket   string
	Key      string
	Err      error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %s/%s: %v", e.Provider, e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("%s %s: %s: %v", e.Provider, e.Op, e.Bucket, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

// Unwrap supports errors.Is/As against the sentinel errors.
func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err indicates a missing object.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsBucketNotFound reports whether err indicates a missing bucket.
func IsBucketNotFound(err error) bool { return errors.Is(err, ErrBucketNotFound) }

// IsAccessDenied reports whether err indicates insufficient permissions.
func IsAccessDenied(err error) bool { return errors.Is(err, ErrAccessDenied) }

// IsInvalidCredentials reports whether err indicates failed authentication.
func IsInvalidCredentials(err error) bool { return errors.Is(err, ErrInvalidCredentials) }

// IsThrottled reports whether err indicates provider-side rate limiting.
func IsThrottled(err error) bool { return errors.Is(err, ErrThrottled) }

// IsUnavailable reports whether err indicates a provider outage.
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
