package model

import (
	"time"

	"gorm.io/datatypes"
)

// DNSRecord is the local mirror of a provider DNS record. Name is stored
// fully-qualified; the zone-relative short form is derived at the API
// boundary.
type DNSRecord struct {
	BaseModel
	UserID           int            `gorm:"uniqueIndex:idx_records_user_record;not null" json:"user_id"`
	ZoneRowID        int            `gorm:"index:idx_records_zone;not null" json:"-"`
	ZoneID           string         `gorm:"type:varchar(64);index:idx_records_provider_zone;not null" json:"zone_id"`
	RecordID         string         `gorm:"type:varchar(64);uniqueIndex:idx_records_user_record;not null" json:"record_id"`
	Type             string         `gorm:"type:varchar(16);index:idx_records_type;not null" json:"type"`
	Name             string         `gorm:"type:varchar(255);index:idx_records_name;not null" json:"name"`
	Content          string         `gorm:"type:varchar(2048);not null" json:"content"`
	TTL              int            `gorm:"default:1" json:"ttl"`
	Proxied          bool           `gorm:"type:tinyint;default:0" json:"proxied"`
	Priority         *int           `json:"priority,omitempty"`
	Comment          string         `gorm:"type:varchar(255)" json:"comment"`
	TagsJSON         datatypes.JSON `gorm:"type:json" json:"tags"`
	ProviderCreated  time.Time      `json:"provider_created_on"`
	ProviderModified time.Time      `json:"provider_modified_on"`
	LastSyncedAt     time.Time      `json:"last_synced_at"`
}

// TableName specifies the table name for DNSRecord model
func (DNSRecord) TableName() string {
	return "dns_records"
}
