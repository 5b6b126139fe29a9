package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"dnspanel/internal/dns"
	"dnspanel/internal/model"
)

// ErrNotFound is returned when a credential id does not exist for the
// requesting user.
var ErrNotFound = errors.New("credential not found")

// ErrNoActiveCredential is returned when a user has no active
// credential to execute provider calls with.
var ErrNoActiveCredential = errors.New("no active provider credential configured")

// VerifyFunc checks a candidate token against the remote provider
// before it is persisted.
type VerifyFunc func(ctx context.Context, email, apiToken string) error

// Service manages stored provider credentials
type Service struct {
	db     *gorm.DB
	verify VerifyFunc
}

// NewService creates a credentials service. verify is called on every
// create; pass nil to skip remote verification.
func NewService(db *gorm.DB, verify VerifyFunc) *Service {
	return &Service{db: db, verify: verify}
}

// ListItem is a credential in a list response. The token never leaves
// the database unmasked.
type ListItem struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	APIEmail  string `json:"api_email,omitempty"`
	Token     string `json:"token"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// List returns all credentials belonging to userID
func (s *Service) List(ctx context.Context, userID int) ([]ListItem, error) {
	var rows []model.Credential
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch credentials: %w", err)
	}

	items := make([]ListItem, len(rows))
	for i, row := range rows {
		items[i] = ListItem{
			ID:        row.ID,
			Name:      row.Name,
			APIEmail:  row.APIEmail,
			Token:     row.MaskedToken(),
			Status:    string(row.Status),
			CreatedAt: row.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			UpdatedAt: row.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	return items, nil
}

// CreateParams are the fields accepted when storing a credential
type CreateParams struct {
	Name     string
	APIToken string
	APIEmail string
}

// Create verifies the token against the provider and stores it. A new
// credential deactivates the user's previous active one so there is at
// most one active credential per user.
func (s *Service) Create(ctx context.Context, userID int, params CreateParams) (*model.Credential, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if strings.TrimSpace(params.APIToken) == "" {
		return nil, fmt.Errorf("api_token is required")
	}

	if s.verify != nil {
		if err := s.verify(ctx, params.APIEmail, params.APIToken); err != nil {
			return nil, fmt.Errorf("token verification failed: %w", err)
		}
	}

	cred := model.Credential{
		UserID:   userID,
		Name:     params.Name,
		APIToken: params.APIToken,
		APIEmail: params.APIEmail,
		Status:   model.CredentialStatusActive,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Credential{}).
			Where("user_id = ? AND status = ?", userID, model.CredentialStatusActive).
			Update("status", model.CredentialStatusInactive).Error; err != nil {
			return err
		}
		return tx.Create(&cred).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store credential: %w", err)
	}
	return &cred, nil
}

// Delete removes a credential owned by userID
func (s *Service) Delete(ctx context.Context, userID, id int) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Credential{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete credential: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Active resolves the user's active credential for provider calls
func (s *Service) Active(ctx context.Context, userID int) (*model.Credential, error) {
	var cred model.Credential
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.CredentialStatusActive).
		Order("id DESC").
		First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveCredential
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve credential: %w", err)
	}
	return &cred, nil
}

// Verifier adapts a provider constructor into a VerifyFunc
func Verifier(newProvider func(email, apiToken string) dns.Provider) VerifyFunc {
	return func(ctx context.Context, email, apiToken string) error {
		_, err := newProvider(email, apiToken).VerifyToken(ctx)
		return err
	}
}
