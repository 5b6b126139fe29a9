package httpx

import (
	"fmt"
	"net/http"
)

// Error codes returned in the response envelope
const (
	CodeUnauthorized        = "unauthorized"
	CodeInvalidToken        = "invalid_token"
	CodeTokenExpired        = "token_expired"
	CodeForbidden           = "forbidden"
	CodeValidation          = "validation_error"
	CodeParamInvalid        = "param_invalid"
	CodeNotFound            = "not_found"
	CodeAlreadyExists       = "already_exists"
	CodeRateLimited         = "rate_limited"
	CodeProviderError       = "provider_error"
	CodeProviderUnreachable = "provider_unreachable"
	CodeOutcomeUnknown      = "outcome_unknown"
	CodeInternalError       = "internal_error"
	CodeDatabaseError       = "database_error"
)

// AppError represents an application error with HTTP status and error code
type AppError struct {
	HTTPStatus int         // HTTP status code
	Code       string      // Machine-readable error code
	Message    string      // User-facing error message
	Err        error       // Internal error (for logging only, not returned to client)
	Details    interface{} // Additional data (per-field validation errors etc.)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("code=%s, message=%s, err=%v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("code=%s, message=%s", e.Code, e.Message)
}

// WithDetails adds additional data to the error
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new AppError
func NewAppError(httpStatus int, code, message string, err error) *AppError {
	return &AppError{
		HTTPStatus: httpStatus,
		Code:       code,
		Message:    message,
		Err:        err,
	}
}

// ErrUnauthorized creates a 401 unauthorized error
func ErrUnauthorized(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

// ErrInvalidToken creates a 401 invalid token error
func ErrInvalidToken(message string) *AppError {
	if message == "" {
		message = "invalid token"
	}
	return NewAppError(http.StatusUnauthorized, CodeInvalidToken, message, nil)
}

// ErrTokenExpired creates a 401 token expired error
func ErrTokenExpired(message string) *AppError {
	if message == "" {
		message = "token expired"
	}
	return NewAppError(http.StatusUnauthorized, CodeTokenExpired, message, nil)
}

// ErrForbidden creates a 403 forbidden error
func ErrForbidden(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return NewAppError(http.StatusForbidden, CodeForbidden, message, nil)
}

// ErrValidation creates a 400 validation error
func ErrValidation(message string) *AppError {
	if message == "" {
		message = "validation failed"
	}
	return NewAppError(http.StatusBadRequest, CodeValidation, message, nil)
}

// ErrParamInvalid creates a 400 parameter error
func ErrParamInvalid(message string) *AppError {
	if message == "" {
		message = "invalid parameter"
	}
	return NewAppError(http.StatusBadRequest, CodeParamInvalid, message, nil)
}

// ErrNotFound creates a 404 not found error
func ErrNotFound(message string) *AppError {
	if message == "" {
		message = "resource not found"
	}
	return NewAppError(http.StatusNotFound, CodeNotFound, message, nil)
}

// ErrAlreadyExists creates a 409 already exists error
func ErrAlreadyExists(message string) *AppError {
	if message == "" {
		message = "resource already exists"
	}
	return NewAppError(http.StatusConflict, CodeAlreadyExists, message, nil)
}

// ErrRateLimited creates a 429 rate limited error. retryAfterSec is
// surfaced in the details so clients can honor the backoff hint.
func ErrRateLimited(message string, retryAfterSec int) *AppError {
	if message == "" {
		message = "rate limited, retry later"
	}
	e := NewAppError(http.StatusTooManyRequests, CodeRateLimited, message, nil)
	if retryAfterSec > 0 {
		e.Details = map[string]int{"retry_after": retryAfterSec}
	}
	return e
}

// ErrProvider creates a 502 error for a structured provider failure
func ErrProvider(message string, err error) *AppError {
	if message == "" {
		message = "provider error"
	}
	return NewAppError(http.StatusBadGateway, CodeProviderError, message, err)
}

// ErrProviderUnreachable creates a 502 error for a transport-level provider failure
func ErrProviderUnreachable(message string, err error) *AppError {
	if message == "" {
		message = "provider unreachable"
	}
	return NewAppError(http.StatusBadGateway, CodeProviderUnreachable, message, err)
}

// ErrOutcomeUnknown creates a 504 error for an aborted mutation whose
// remote outcome cannot be determined. Clients must re-fetch rather
// than assume rollback.
func ErrOutcomeUnknown(message string, err error) *AppError {
	if message == "" {
		message = "request aborted, remote state unknown"
	}
	return NewAppError(http.StatusGatewayTimeout, CodeOutcomeUnknown, message, err)
}

// ErrInternalError creates a 500 internal error
func ErrInternalError(message string, err error) *AppError {
	if message == "" {
		message = "internal error"
	}
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, err)
}

// ErrDatabaseError creates a 500 database error
func ErrDatabaseError(message string, err error) *AppError {
	if message == "" {
		message = "database error"
	}
	return NewAppError(http.StatusInternalServerError, CodeDatabaseError, message, err)
}
