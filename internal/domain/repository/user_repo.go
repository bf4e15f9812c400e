package repository

import (
	"github.com/yourusername/account-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByPhone(phoneNumber string) (*entity.User, error)
	Update(user *entity.User) error
	UpdateProfile(userID uint, updates map[string]interface{}) error
	UpdatePassword(userID uint, newPassword string) error
	MarkEmailVerified(userID uint) error
	MarkPhoneVerified(userID uint) error
	List(limit, offset int) ([]entity.User, int64, error)
}
