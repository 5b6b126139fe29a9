package history

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"dnspanel/internal/model"
)

// Service appends and queries the operation history log. Entries are
// append-only; nothing here ever updates a row.
type Service struct {
	db *gorm.DB
}

// NewService creates a history service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Entry describes one mutation to record
type Entry struct {
	UserID       int
	RequestID    string
	Operation    model.OperationType
	ResourceType model.ResourceType
	ResourceID   string
	ResourceName string
	ZoneID       string
	OldData      interface{}
	NewData      interface{}
	Status       model.OperationStatus
}

// Append writes one history row. Snapshot marshalling failures fall
// back to a null column rather than losing the entry.
func (s *Service) Append(ctx context.Context, e Entry) error {
	row := model.OperationHistory{
		UserID:       e.UserID,
		RequestID:    e.RequestID,
		Operation:    e.Operation,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		ResourceName: e.ResourceName,
		ZoneID:       e.ZoneID,
		Status:       e.Status,
	}
	if row.Status == "" {
		row.Status = model.OperationStatusSuccess
	}

	if e.OldData != nil {
		if data, err := json.Marshal(e.OldData); err == nil {
			row.OldData = data
		}
	}
	if e.NewData != nil {
		if data, err := json.Marshal(e.NewData); err == nil {
			row.NewData = data
		}
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// ListParams narrows a history listing
type ListParams struct {
	Operation    string
	ResourceType string
	ZoneID       string
	Page         int
	PageSize     int
}

// List returns history entries for a user, newest first
func (s *Service) List(ctx context.Context, userID int, params ListParams) ([]model.OperationHistory, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 20
	}
	if params.PageSize > 100 {
		params.PageSize = 100
	}

	query := s.db.WithContext(ctx).Model(&model.OperationHistory{}).Where("user_id = ?", userID)
	if params.Operation != "" {
		query = query.Where("operation = ?", params.Operation)
	}
	if params.ResourceType != "" {
		query = query.Where("resource_type = ?", params.ResourceType)
	}
	if params.ZoneID != "" {
		query = query.Where("zone_id = ?", params.ZoneID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count history entries: %w", err)
	}

	var entries []model.OperationHistory
	err := query.Order("id DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
