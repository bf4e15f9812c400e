package repository

import "github.com/yourusername/account-api/internal/domain/entity"

// SocialAccountRepository stores external provider links for users.
//
// Create must surface the database unique violation as apperrors.ErrConflict:
// the linker relies on it to detect a concurrent insert of the same
// (provider, provider_user_id) pair and re-read instead of failing.
type SocialAccountRepository interface {
	Create(account *entity.SocialAccount) error
	GetByProviderSubject(provider, providerUserID string) (*entity.SocialAccount, error)
	GetByUserAndProvider(userID uint, provider string) (*entity.SocialAccount, error)
	ListByUserID(userID uint) ([]entity.SocialAccount, error)
	CountByUserID(userID uint) (int64, error)
	Delete(userID uint, provider string) error
	DeleteByUserID(userID uint) error
}
