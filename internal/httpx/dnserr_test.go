package httpx

import (
	"errors"
	"net/http"
	"testing"

	"dnspanel/internal/dns"
	"dnspanel/internal/record"
)

func TestMapDNSError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation error",
			err:        &record.ValidationError{Field: "ttl", Message: "ttl out of range"},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidation,
		},
		{
			name:       "not found",
			err:        dns.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   CodeNotFound,
		},
		{
			name:       "rate limited",
			err:        &dns.RateLimitedError{RetryAfter: 30},
			wantStatus: http.StatusTooManyRequests,
			wantCode:   CodeRateLimited,
		},
		{
			name:       "unreachable",
			err:        &dns.UnreachableError{Err: errors.New("timeout")},
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeProviderUnreachable,
		},
		{
			name:       "duplicate record",
			err:        &dns.ProviderError{Code: 81057, Message: "record already exists", HTTPStatus: 400},
			wantStatus: http.StatusConflict,
			wantCode:   CodeAlreadyExists,
		},
		{
			name:       "generic provider error",
			err:        &dns.ProviderError{Code: 10000, Message: "authentication error", HTTPStatus: 403},
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeProviderError,
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := MapDNSError(tt.err)
			if appErr.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %d, want %d", appErr.HTTPStatus, tt.wantStatus)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", appErr.Code, tt.wantCode)
			}
		})
	}
}

func TestMapDNSError_WrappedProviderError(t *testing.T) {
	wrapped := errors.New("sync failed")
	err := &dns.UnreachableError{Err: wrapped}

	appErr := MapDNSError(err)
	if appErr.Code != CodeProviderUnreachable {
		t.Fatalf("Code = %q, want %q", appErr.Code, CodeProviderUnreachable)
	}
	if appErr.Err == nil {
		t.Error("Internal error should be preserved for logging")
	}
}
