package httpx

import (
	"errors"
	"fmt"

	"dnspanel/internal/dns"
	"dnspanel/internal/record"
)

// MapDNSError converts errors from the provider client and record
// validation into the HTTP error model.
func MapDNSError(err error) *AppError {
	var ve *record.ValidationError
	if errors.As(err, &ve) {
		return ErrValidation(ve.Message).WithDetails(map[string]string{"field": ve.Field})
	}

	if errors.Is(err, dns.ErrNotFound) {
		return ErrNotFound("record or zone not found at provider")
	}

	var rle *dns.RateLimitedError
	if errors.As(err, &rle) {
		return ErrRateLimited("provider rate limit reached", rle.RetryAfter)
	}

	var ue *dns.UnreachableError
	if errors.As(err, &ue) {
		return ErrProviderUnreachable("dns provider unreachable", err)
	}

	var pe *dns.ProviderError
	if errors.As(err, &pe) {
		// 81057: an identical record already exists in the zone.
		if pe.Code == 81057 {
			return ErrAlreadyExists(pe.Message)
		}
		return ErrProvider(pe.Message, err).WithDetails(map[string]interface{}{
			"provider_code": pe.Code,
		})
	}

	return ErrInternalError(fmt.Sprintf("provider call failed: %v", err), err)
}
