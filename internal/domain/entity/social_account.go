package entity

import "time"

// SocialAccount links a local user to external auth providers
// (google, facebook, firebase_phone).
//
// Two uniqueness guarantees back the linker semantics:
//   - (provider, provider_user_id) resolves to exactly one user;
//   - a user holds at most one link per provider.
type SocialAccount struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_user_provider,priority:1" json:"user_id"`
	Provider       string    `gorm:"size:50;not null;uniqueIndex:idx_provider_subject,priority:1;uniqueIndex:idx_user_provider,priority:2" json:"provider"`
	ProviderUserID string    `gorm:"size:255;not null;uniqueIndex:idx_provider_subject,priority:2" json:"provider_user_id"`
	ProviderEmail  string    `gorm:"size:255" json:"provider_email,omitempty"`
	ProviderPhone  string    `gorm:"size:32" json:"provider_phone,omitempty"`
	LinkedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"linked_at"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (SocialAccount) TableName() string {
	return "social_accounts"
}
