package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/account-api/internal/domain/entity"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
)

type DeviceTokenRepo struct {
	db *gorm.DB
}

func NewDeviceTokenRepo(db *gorm.DB) *DeviceTokenRepo {
	return &DeviceTokenRepo{db: db}
}

// Upsert inserts a token row or refreshes the existing one for the same
// (user_id, provider, device_id). Re-registering a device reactivates it.
func (r *DeviceTokenRepo) Upsert(token *entity.DeviceToken) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "provider"}, {Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"device_token", "device_type", "device_name", "app_version", "os_version", "is_active", "updated_at",
		}),
	}).Create(token).Error
	if err != nil {
		return fmt.Errorf("failed to upsert device token: %w", err)
	}
	return nil
}

func (r *DeviceTokenRepo) GetByID(id uint) (*entity.DeviceToken, error) {
	var token entity.DeviceToken
	err := r.db.First(&token, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *DeviceTokenRepo) ListByUserID(userID uint) ([]entity.DeviceToken, error) {
	var tokens []entity.DeviceToken
	err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&tokens).Error
	return tokens, err
}

func (r *DeviceTokenRepo) ListActiveByUserID(userID uint) ([]entity.DeviceToken, error) {
	var tokens []entity.DeviceToken
	err := r.db.
		Where("user_id = ? AND is_active = true", userID).
		Order("updated_at DESC").
		Find(&tokens).Error
	return tokens, err
}

func (r *DeviceTokenRepo) Deactivate(userID uint, provider, deviceID string) error {
	result := r.db.Model(&entity.DeviceToken{}).
		Where("user_id = ? AND provider = ? AND device_id = ?", userID, provider, deviceID).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *DeviceTokenRepo) DeleteByUserID(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&entity.DeviceToken{}).Error
}
