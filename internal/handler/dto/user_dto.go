package dto

import (
	"time"

	"github.com/yourusername/account-api/internal/domain/entity"
)

// UserProfile представляет профиль пользователя в ответах API
type UserProfile struct {
	ID                uint       `json:"id"`
	Email             string     `json:"email"`
	PhoneNumber       string     `json:"phone_number,omitempty"`
	FullName          string     `json:"full_name"`
	CompanyName       string     `json:"company_name,omitempty"`
	WebsiteURL        string     `json:"website_url,omitempty"`
	AvatarURL         string     `json:"avatar_url,omitempty"`
	LastLoginProvider string     `json:"last_login_provider,omitempty"`
	EmailVerified     bool       `json:"email_verified"`
	PhoneVerified     bool       `json:"phone_verified"`
	PasswordSet       bool       `json:"password_set"`
	TrialExpiredAt    *time.Time `json:"trial_expired_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// NewUserProfile собирает DTO из сущности
func NewUserProfile(user *entity.User) *UserProfile {
	return &UserProfile{
		ID:                user.ID,
		Email:             user.Email,
		PhoneNumber:       user.Phone(),
		FullName:          user.FullName,
		CompanyName:       user.CompanyName,
		WebsiteURL:        user.WebsiteURL,
		AvatarURL:         user.AvatarURL,
		LastLoginProvider: user.LastLoginProvider,
		EmailVerified:     user.EmailVerifiedAt != nil,
		PhoneVerified:     user.PhoneVerifiedAt != nil,
		PasswordSet:       user.PasswordAuthEnabled,
		TrialExpiredAt:    user.TrialExpiredAt,
		CreatedAt:         user.CreatedAt,
	}
}

// PaginatedUsersResponse представляет пагинированный список пользователей
type PaginatedUsersResponse struct {
	Users   []*UserProfile `json:"users"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}
