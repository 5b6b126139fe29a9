package model

// CredentialStatus represents credential status
type CredentialStatus string

const (
	CredentialStatusActive   CredentialStatus = "active"
	CredentialStatusInactive CredentialStatus = "inactive"
)

// Credential represents a stored DNS provider API credential for a user.
// The token is verified against the provider before it is persisted.
type Credential struct {
	BaseModel
	UserID   int              `gorm:"index:idx_credentials_user;not null" json:"user_id"`
	Name     string           `gorm:"type:varchar(128);not null" json:"name"`
	APIToken string           `gorm:"type:varchar(255);not null" json:"-"`
	APIEmail string           `gorm:"type:varchar(255)" json:"api_email"`
	Status   CredentialStatus `gorm:"type:enum('active','inactive');default:'active'" json:"status"`
}

// TableName specifies the table name for Credential model
func (Credential) TableName() string {
	return "credentials"
}

// MaskedToken returns the token with everything but the first and last
// four characters replaced, for list responses.
func (c Credential) MaskedToken() string {
	if len(c.APIToken) <= 8 {
		return "****"
	}
	return c.APIToken[:4] + "****" + c.APIToken[len(c.APIToken)-4:]
}
