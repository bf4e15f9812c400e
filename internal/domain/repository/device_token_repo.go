package repository

import "github.com/yourusername/account-api/internal/domain/entity"

// DeviceTokenRepository stores push-notification tokens per user device.
type DeviceTokenRepository interface {
	// Upsert inserts a token or refreshes an existing row with the same
	// (user_id, provider, device_id) key.
	Upsert(token *entity.DeviceToken) error
	GetByID(id uint) (*entity.DeviceToken, error)
	ListByUserID(userID uint) ([]entity.DeviceToken, error)
	ListActiveByUserID(userID uint) ([]entity.DeviceToken, error)
	Deactivate(userID uint, provider, deviceID string) error
	DeleteByUserID(userID uint) error
}
