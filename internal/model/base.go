package model

import (
	"time"
)

// BaseModel is embedded by every table in the panel schema. The row id
// is local and auto-incremented; it is distinct from the string ids
// the DNS provider assigns to zones and records, which live in their
// own indexed columns.
type BaseModel struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
