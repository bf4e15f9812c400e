package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/account-api/internal/domain/entity"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
)

type SocialAccountRepo struct {
	db *gorm.DB
}

func NewSocialAccountRepo(db *gorm.DB) *SocialAccountRepo {
	return &SocialAccountRepo{db: db}
}

// Create inserts a provider link. A unique violation on
// (provider, provider_user_id) or (user_id, provider) is returned as
// apperrors.ErrConflict so the caller can re-read the winning row.
func (r *SocialAccountRepo) Create(account *entity.SocialAccount) error {
	err := r.db.Create(account).Error
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create social account link: %w", err)
	}
	return nil
}

func (r *SocialAccountRepo) GetByProviderSubject(provider, providerUserID string) (*entity.SocialAccount, error) {
	var account entity.SocialAccount
	err := r.db.
		Where("provider = ? AND provider_user_id = ?", provider, providerUserID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get link by provider subject: %w", err)
	}
	return &account, nil
}

func (r *SocialAccountRepo) GetByUserAndProvider(userID uint, provider string) (*entity.SocialAccount, error) {
	var account entity.SocialAccount
	err := r.db.
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get link by user/provider: %w", err)
	}
	return &account, nil
}

func (r *SocialAccountRepo) ListByUserID(userID uint) ([]entity.SocialAccount, error) {
	var accounts []entity.SocialAccount
	err := r.db.
		Where("user_id = ?", userID).
		Order("provider").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list links for user: %w", err)
	}
	return accounts, nil
}

func (r *SocialAccountRepo) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.SocialAccount{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *SocialAccountRepo) Delete(userID uint, provider string) error {
	result := r.db.
		Where("user_id = ? AND provider = ?", userID, provider).
		Delete(&entity.SocialAccount{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *SocialAccountRepo) DeleteByUserID(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&entity.SocialAccount{}).Error
}
