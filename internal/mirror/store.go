package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"dnspanel/internal/dns"
	"dnspanel/internal/model"
)

// ErrUnknownZone is returned when a record upsert references a zone
// that has no local row for the user. Ownership is enforced here, not
// only by the storage engine's foreign key.
var ErrUnknownZone = errors.New("record references unknown zone")

// Store is the durable per-user mirror of provider state. It has no
// expiry; staleness is bounded by when sync last ran and surfaced via
// last_synced_at.
type Store struct {
	db *gorm.DB
}

// NewStore creates a mirror store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ZoneFilters narrows a local zone listing
type ZoneFilters struct {
	Name      string
	Status    string
	AccountID string
}

// RecordFilters narrows a local record listing
type RecordFilters struct {
	Name    string
	Content string
	Type    string
	Proxied *bool
}

// UpsertZone replaces the local copy of a provider zone by
// (user, zone id) and advances last_synced_at.
func (s *Store) UpsertZone(ctx context.Context, userID int, zone dns.Zone) (*model.Zone, error) {
	nameServers, err := json.Marshal(zone.NameServers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal name servers: %w", err)
	}

	now := time.Now()
	row := model.Zone{
		UserID:          userID,
		ZoneID:          zone.ID,
		Name:            zone.Name,
		Status:          model.ZoneStatus(zone.Status),
		Paused:          zone.Paused,
		NameServersJSON: nameServers,
		AccountID:       zone.AccountID,
		PlanName:        zone.PlanName,
		LastSyncedAt:    now,
	}

	var existing model.Zone
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND zone_id = ?", userID, zone.ID).
		First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, err
		}
		return &row, nil
	}

	updates := map[string]interface{}{
		"name":              row.Name,
		"status":            row.Status,
		"paused":            row.Paused,
		"name_servers_json": row.NameServersJSON,
		"account_id":        row.AccountID,
		"plan_name":         row.PlanName,
		"last_synced_at":    now,
	}
	if err := s.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		return nil, err
	}
	existing.LastSyncedAt = now
	return &existing, nil
}

// UpsertRecord replaces the local copy of a provider record by
// (user, record id). The owning zone must already be mirrored.
func (s *Store) UpsertRecord(ctx context.Context, userID int, rec dns.Record) (*model.DNSRecord, error) {
	var zone model.Zone
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND zone_id = ?", userID, rec.ZoneID).
		First(&zone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownZone
		}
		return nil, err
	}

	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}

	now := time.Now()
	row := model.DNSRecord{
		UserID:           userID,
		ZoneRowID:        zone.ID,
		ZoneID:           rec.ZoneID,
		RecordID:         rec.ID,
		Type:             rec.Type,
		Name:             rec.Name,
		Content:          rec.Content,
		TTL:              rec.TTL,
		Proxied:          rec.Proxied,
		Priority:         rec.Priority,
		Comment:          rec.Comment,
		TagsJSON:         tags,
		ProviderCreated:  rec.CreatedOn,
		ProviderModified: rec.ModifiedOn,
		LastSyncedAt:     now,
	}

	var existing model.DNSRecord
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND record_id = ?", userID, rec.ID).
		First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, err
		}
		return &row, nil
	}

	updates := map[string]interface{}{
		"zone_row_id":       row.ZoneRowID,
		"zone_id":           row.ZoneID,
		"type":              row.Type,
		"name":              row.Name,
		"content":           row.Content,
		"ttl":               row.TTL,
		"proxied":           row.Proxied,
		"priority":          row.Priority,
		"comment":           row.Comment,
		"tags_json":         row.TagsJSON,
		"provider_created":  row.ProviderCreated,
		"provider_modified": row.ProviderModified,
		"last_synced_at":    now,
	}
	if err := s.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		return nil, err
	}
	existing.LastSyncedAt = now
	return &existing, nil
}

// QueryZones lists mirrored zones for a user with filters and pagination
func (s *Store) QueryZones(ctx context.Context, userID int, filters ZoneFilters, page, pageSize int) ([]model.Zone, int64, error) {
	page, pageSize = clampPage(page, pageSize)

	query := s.db.WithContext(ctx).Model(&model.Zone{}).Where("user_id = ?", userID)
	if filters.Name != "" {
		query = query.Where("name LIKE ?", "%"+filters.Name+"%")
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.AccountID != "" {
		query = query.Where("account_id = ?", filters.AccountID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count zones: %w", err)
	}

	var zones []model.Zone
	err := query.Order("name ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&zones).Error
	if err != nil {
		return nil, 0, err
	}
	return zones, total, nil
}

// GetZone fetches one mirrored zone by provider zone id
func (s *Store) GetZone(ctx context.Context, userID int, zoneID string) (*model.Zone, error) {
	var zone model.Zone
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND zone_id = ?", userID, zoneID).
		First(&zone).Error
	if err != nil {
		return nil, err
	}
	return &zone, nil
}

// QueryRecords lists mirrored records for a zone with filters and pagination
func (s *Store) QueryRecords(ctx context.Context, userID int, zoneID string, filters RecordFilters, page, pageSize int) ([]model.DNSRecord, int64, error) {
	page, pageSize = clampPage(page, pageSize)

	query := s.db.WithContext(ctx).Model(&model.DNSRecord{}).
		Where("user_id = ? AND zone_id = ?", userID, zoneID)
	if filters.Name != "" {
		query = query.Where("name LIKE ?", "%"+filters.Name+"%")
	}
	if filters.Content != "" {
		query = query.Where("content LIKE ?", "%"+filters.Content+"%")
	}
	if filters.Type != "" {
		query = query.Where("type = ?", filters.Type)
	}
	if filters.Proxied != nil {
		query = query.Where("proxied = ?", *filters.Proxied)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count records: %w", err)
	}

	var records []model.DNSRecord
	err := query.Order("type ASC, name ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// RecordStats returns per-type record counts for a zone
func (s *Store) RecordStats(ctx context.Context, userID int, zoneID string) (map[string]int64, error) {
	type typeCount struct {
		Type  string
		Count int64
	}

	var counts []typeCount
	err := s.db.WithContext(ctx).Model(&model.DNSRecord{}).
		Select("type, COUNT(*) as count").
		Where("user_id = ? AND zone_id = ?", userID, zoneID).
		Group("type").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int64, len(counts))
	for _, c := range counts {
		stats[c.Type] = c.Count
	}
	return stats, nil
}

// DeleteRecord removes the local mirror row. Callers invoke this only
// after a confirmed remote delete.
func (s *Store) DeleteRecord(ctx context.Context, userID int, recordID string) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND record_id = ?", userID, recordID).
		Delete(&model.DNSRecord{}).Error
}

// DeleteZone removes a mirrored zone and cascades to its record rows
func (s *Store) DeleteZone(ctx context.Context, userID int, zoneID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND zone_id = ?", userID, zoneID).
			Delete(&model.DNSRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND zone_id = ?", userID, zoneID).
			Delete(&model.Zone{}).Error
	})
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
