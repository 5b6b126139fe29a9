package dns

import "context"

// Provider defines the interface for remote DNS providers. All calls
// are authenticated HTTP round trips; no caching happens behind this
// interface, and failures are surfaced as typed errors without retry.
type Provider interface {
	// ListZones lists zones visible to the credential, optionally filtered
	ListZones(ctx context.Context, filters ZoneFilters) ([]Zone, *PageInfo, error)

	// GetZone fetches a single zone by its provider-assigned id
	GetZone(ctx context.Context, zoneID string) (*Zone, error)

	// ListRecords lists DNS records within a zone
	ListRecords(ctx context.Context, zoneID string, filters RecordFilters) ([]Record, *PageInfo, error)

	// GetRecord fetches a single record; ErrNotFound when missing
	GetRecord(ctx context.Context, zoneID, recordID string) (*Record, error)

	// CreateRecord creates a record. The payload must already satisfy
	// the record invariants; validation happens before this call.
	CreateRecord(ctx context.Context, zoneID string, record Record) (*Record, error)

	// UpdateRecord applies a partial update; nil patch fields are untouched
	UpdateRecord(ctx context.Context, zoneID, recordID string, patch RecordPatch) (*Record, error)

	// DeleteRecord deletes a record; ErrNotFound for an already-deleted id
	DeleteRecord(ctx context.Context, zoneID, recordID string) error

	// VerifyToken validates the credential independent of any zone
	VerifyToken(ctx context.Context) (*TokenStatus, error)
}
