package dns

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the provider reports no matching
// zone or record. For deletes, callers treat it as already satisfied.
var ErrNotFound = errors.New("DNS record not found")

// ProviderError is a structured error reported by the provider API
// (success:false payload or non-2xx status). Not retried: the failure
// semantics are not resolved by retrying.
type ProviderError struct {
	Code       int
	Message    string
	HTTPStatus int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error [%d] %s (http %d)", e.Code, e.Message, e.HTTPStatus)
}

// UnreachableError is a transport-level failure; the request never
// produced a provider response. Safe to retry only for idempotent
// operations.
type UnreachableError struct {
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("provider unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// RateLimitedError signals the provider throttled the call. RetryAfter
// is in seconds (0 when the provider gave no hint).
type RateLimitedError struct {
	RetryAfter int
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by provider, retry after %ds", e.RetryAfter)
	}
	return "rate limited by provider"
}

// IsRetryableRead reports whether err is safe to retry for an
// idempotent operation.
func IsRetryableRead(err error) bool {
	var unreachable *UnreachableError
	return errors.As(err, &unreachable)
}
