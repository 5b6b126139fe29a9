package model

import (
	"time"

	"gorm.io/datatypes"
)

// ZoneStatus represents the provider-reported zone status
type ZoneStatus string

const (
	ZoneStatusActive       ZoneStatus = "active"
	ZoneStatusPending      ZoneStatus = "pending"
	ZoneStatusInitializing ZoneStatus = "initializing"
	ZoneStatusMoved        ZoneStatus = "moved"
	ZoneStatusDeleted      ZoneStatus = "deleted"
	ZoneStatusDeactivated  ZoneStatus = "deactivated"
)

// Zone is the local mirror of a provider zone. The remote provider is
// the source of truth; staleness is bounded by LastSyncedAt.
type Zone struct {
	BaseModel
	UserID          int            `gorm:"uniqueIndex:idx_zones_user_zone;not null" json:"user_id"`
	ZoneID          string         `gorm:"type:varchar(64);uniqueIndex:idx_zones_user_zone;not null" json:"zone_id"`
	Name            string         `gorm:"type:varchar(255);index:idx_zones_name;not null" json:"name"`
	Status          ZoneStatus     `gorm:"type:enum('active','pending','initializing','moved','deleted','deactivated');default:'active'" json:"status"`
	Paused          bool           `gorm:"type:tinyint;default:0" json:"paused"`
	NameServersJSON datatypes.JSON `gorm:"type:json" json:"name_servers"`
	AccountID       string         `gorm:"type:varchar(64)" json:"account_id"`
	PlanName        string         `gorm:"type:varchar(128)" json:"plan_name"`
	LastSyncedAt    time.Time      `json:"last_synced_at"`
}

// TableName specifies the table name for Zone model
func (Zone) TableName() string {
	return "zones"
}
