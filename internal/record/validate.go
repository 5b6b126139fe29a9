package record

import (
	"fmt"
	"strings"

	"dnspanel/internal/dns"
)

// TTLAuto is the provider sentinel for "automatic" TTL
const TTLAuto = 1

// TTLMax is the largest TTL in seconds the provider accepts
const TTLMax = 86400

// ValidationError reports a locally rejected payload; no network call
// was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

var supportedTypes = map[string]bool{
	"A":     true,
	"AAAA":  true,
	"CNAME": true,
	"MX":    true,
	"TXT":   true,
	"NS":    true,
	"SRV":   true,
	"PTR":   true,
	"CAA":   true,
}

var proxiableTypes = map[string]bool{
	"A":     true,
	"AAAA":  true,
	"CNAME": true,
}

// IsSupportedType reports whether t is a record type this system manages
func IsSupportedType(t string) bool {
	return supportedTypes[strings.ToUpper(t)]
}

// IsProxiable reports whether records of type t may be proxied
func IsProxiable(t string) bool {
	return proxiableTypes[strings.ToUpper(t)]
}

// Normalize enforces the record invariants that are corrections rather
// than rejections: proxied is forced false for non-proxiable types
// regardless of client input, and the type is upper-cased.
func Normalize(rec *dns.Record) {
	rec.Type = strings.ToUpper(strings.TrimSpace(rec.Type))
	if !IsProxiable(rec.Type) {
		rec.Proxied = false
	}
}

// Validate checks a full record payload before any provider call.
// Callers must run Normalize first.
func Validate(rec dns.Record) error {
	if rec.Type == "" {
		return &ValidationError{Field: "type", Message: "type is required"}
	}
	if !IsSupportedType(rec.Type) {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unsupported record type %q", rec.Type)}
	}
	if strings.TrimSpace(rec.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if strings.TrimSpace(rec.Content) == "" {
		return &ValidationError{Field: "content", Message: "content is required"}
	}
	if rec.TTL != TTLAuto && (rec.TTL < 1 || rec.TTL > TTLMax) {
		return &ValidationError{Field: "ttl", Message: fmt.Sprintf("ttl must be %d (auto) or between 1 and %d", TTLAuto, TTLMax)}
	}
	if rec.Type == "MX" {
		if rec.Priority == nil {
			return &ValidationError{Field: "priority", Message: "priority is required for MX records"}
		}
		if *rec.Priority < 0 {
			return &ValidationError{Field: "priority", Message: "priority must be non-negative"}
		}
	}
	return nil
}

// NormalizePatch applies the proxied invariant to a partial update.
// recordType is the effective type after the patch (patched type wins
// over the existing one).
func NormalizePatch(patch *dns.RecordPatch, existingType string) {
	effectiveType := existingType
	if patch.Type != nil {
		t := strings.ToUpper(strings.TrimSpace(*patch.Type))
		patch.Type = &t
		effectiveType = t
	}
	if !IsProxiable(effectiveType) && patch.Proxied != nil && *patch.Proxied {
		forced := false
		patch.Proxied = &forced
	}
}

// ValidatePatch checks a partial update before any provider call
func ValidatePatch(patch dns.RecordPatch, existingType string) error {
	effectiveType := strings.ToUpper(existingType)
	if patch.Type != nil {
		effectiveType = *patch.Type
		if !IsSupportedType(effectiveType) {
			return &ValidationError{Field: "type", Message: fmt.Sprintf("unsupported record type %q", effectiveType)}
		}
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return &ValidationError{Field: "name", Message: "name cannot be empty"}
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return &ValidationError{Field: "content", Message: "content cannot be empty"}
	}
	if patch.TTL != nil && *patch.TTL != TTLAuto && (*patch.TTL < 1 || *patch.TTL > TTLMax) {
		return &ValidationError{Field: "ttl", Message: fmt.Sprintf("ttl must be %d (auto) or between 1 and %d", TTLAuto, TTLMax)}
	}
	if patch.Priority != nil && *patch.Priority < 0 {
		return &ValidationError{Field: "priority", Message: "priority must be non-negative"}
	}
	if effectiveType == "MX" && patch.Type != nil && patch.Priority == nil {
		return &ValidationError{Field: "priority", Message: "priority is required when changing type to MX"}
	}
	return nil
}
