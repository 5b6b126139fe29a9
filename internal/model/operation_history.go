package model

import (
	"gorm.io/datatypes"
)

// OperationType represents a mutation kind recorded in history
type OperationType string

const (
	OperationCreate OperationType = "create"
	OperationUpdate OperationType = "update"
	OperationDelete OperationType = "delete"
)

// ResourceType represents the resource a history entry refers to
type ResourceType string

const (
	ResourceZone      ResourceType = "zone"
	ResourceDNSRecord ResourceType = "dns_record"
)

// OperationStatus represents the outcome recorded for an operation
type OperationStatus string

const (
	OperationStatusSuccess OperationStatus = "success"
	OperationStatusFailed  OperationStatus = "failed"
)

// OperationHistory is an append-only log of mutations executed against
// the remote provider. Rows are never updated after creation.
type OperationHistory struct {
	BaseModel
	UserID       int             `gorm:"index:idx_history_user;not null" json:"user_id"`
	RequestID    string          `gorm:"type:varchar(36)" json:"request_id"`
	Operation    OperationType   `gorm:"type:enum('create','update','delete');not null" json:"operation"`
	ResourceType ResourceType    `gorm:"type:enum('zone','dns_record');not null" json:"resource_type"`
	ResourceID   string          `gorm:"type:varchar(64);index:idx_history_resource" json:"resource_id"`
	ResourceName string          `gorm:"type:varchar(255)" json:"resource_name"`
	ZoneID       string          `gorm:"type:varchar(64);index:idx_history_zone" json:"zone_id"`
	OldData      datatypes.JSON  `gorm:"type:json" json:"old_data,omitempty"`
	NewData      datatypes.JSON  `gorm:"type:json" json:"new_data,omitempty"`
	Status       OperationStatus `gorm:"type:enum('success','failed');default:'success'" json:"status"`
}

// TableName specifies the table name for OperationHistory model
func (OperationHistory) TableName() string {
	return "operation_history"
}
