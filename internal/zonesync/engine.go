package zonesync

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"dnspanel/internal/dns"
	"dnspanel/internal/model"
)

// Mirror is the slice of the local store the engine writes through
type Mirror interface {
	UpsertZone(ctx context.Context, userID int, zone dns.Zone) (*model.Zone, error)
	UpsertRecord(ctx context.Context, userID int, rec dns.Record) (*model.DNSRecord, error)
}

// Result reports one zone synchronization. ZoneSynced and RecordsSynced
// are distinct so a partial failure (zone updated, record fetch failed)
// is visible to the caller.
type Result struct {
	ZoneSynced    bool `json:"zone_synced"`
	RecordsSynced bool `json:"records_synced"`
	Fetched       int  `json:"fetched"`
	Upserted      int  `json:"upserted"`
	Failed        int  `json:"failed"`
}

// ZoneListResult reports a full zone-list synchronization
type ZoneListResult struct {
	Total    int `json:"total"`
	Upserted int `json:"upserted"`
	Failed   int `json:"failed"`
}

// Engine pulls current state from the remote provider and reconciles it
// into the local mirror. It only ever upserts: local rows for records
// the remote stopped reporting are kept, with their staleness visible
// through last_synced_at.
type Engine struct {
	mirror Mirror
	logger *logrus.Entry
}

// NewEngine creates a synchronization engine
func NewEngine(mirror Mirror, logger *logrus.Entry) *Engine {
	return &Engine{
		mirror: mirror,
		logger: logger.WithField("component", "zone-sync"),
	}
}

// SyncZone fetches one zone and its records from the provider and
// reconciles them into the mirror. The zone row is written before any
// record row so record upserts always find their owner.
func (e *Engine) SyncZone(ctx context.Context, provider dns.Provider, userID int, zoneID string) (*Result, error) {
	result := &Result{}

	zone, err := provider.GetZone(ctx, zoneID)
	if err != nil {
		return result, fmt.Errorf("failed to fetch zone %s: %w", zoneID, err)
	}

	if _, err := e.mirror.UpsertZone(ctx, userID, *zone); err != nil {
		return result, fmt.Errorf("failed to upsert zone %s: %w", zoneID, err)
	}
	result.ZoneSynced = true

	records, _, err := provider.ListRecords(ctx, zoneID, dns.RecordFilters{})
	if err != nil && dns.IsRetryableRead(err) {
		// Listing is idempotent; one retry covers a transient
		// transport failure without masking a persistent one.
		e.logger.WithError(err).WithField("zone_id", zoneID).Warn("record listing failed, retrying once")
		records, _, err = provider.ListRecords(ctx, zoneID, dns.RecordFilters{})
	}
	if err != nil {
		// Zone row is updated; records are not marked synced.
		return result, fmt.Errorf("failed to list records for zone %s: %w", zoneID, err)
	}
	result.Fetched = len(records)

	for _, rec := range records {
		if rec.ZoneID == "" {
			rec.ZoneID = zoneID
		}
		if _, err := e.mirror.UpsertRecord(ctx, userID, rec); err != nil {
			result.Failed++
			e.logger.WithError(err).WithFields(logrus.Fields{
				"zone_id":   zoneID,
				"record_id": rec.ID,
			}).Warn("failed to upsert record")
			continue
		}
		result.Upserted++
	}

	result.RecordsSynced = result.Failed == 0
	return result, nil
}

// SyncAllZones lists every zone visible to the credential and upserts
// the zone rows. Record sync stays per-zone and on demand.
func (e *Engine) SyncAllZones(ctx context.Context, provider dns.Provider, userID int) (*ZoneListResult, error) {
	result := &ZoneListResult{}

	page := 1
	for {
		zones, pageInfo, err := provider.ListZones(ctx, dns.ZoneFilters{Page: page, PerPage: 50})
		if err != nil {
			return result, fmt.Errorf("failed to list zones: %w", err)
		}

		result.Total += len(zones)
		for _, zone := range zones {
			if _, err := e.mirror.UpsertZone(ctx, userID, zone); err != nil {
				result.Failed++
				e.logger.WithError(err).WithField("zone", zone.Name).Warn("failed to upsert zone")
				continue
			}
			result.Upserted++
		}

		if pageInfo == nil || page >= pageInfo.TotalPages {
			break
		}
		page++
	}

	return result, nil
}
