package orm

import (
	"time"

	"gorm.io/gorm"
)

// APIToken persists one upstream bearer token so a process restart does not
// cost an extra token round-trip while the previous token is still valid.
type APIToken struct {
	Provider    string `gorm:"primaryKey"`
	AccessToken string
	ExpiresAt   time.Time
	UpdatedAt   time.Time
}

// TokenStore is the durable side-channel a token cache may use
type TokenStore struct {
	DB *gorm.DB
}

// Load returns the stored token for a provider. Expired tokens are reported
// as not found.
func (s *TokenStore) Load(provider string) (string, time.Time, error) {
	var entry APIToken
	err := s.DB.Where("provider = ? AND expires_at > ?", provider, time.Now()).First(&entry).Error
	if err != nil {
		return "", time.Time{}, err
	}
	return entry.AccessToken, entry.ExpiresAt, nil
}

// Save upserts the token for a provider
func (s *TokenStore) Save(provider, token string, expiresAt time.Time) error {
	entry := APIToken{
		Provider:    provider,
		AccessToken: token,
		ExpiresAt:   expiresAt,
		UpdatedAt:   time.Now(),
	}
	return s.DB.Save(&entry).Error
}
