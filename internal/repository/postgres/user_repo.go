package postgres

import (
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yourusername/account-api/internal/domain/entity"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий пользователей
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create создает нового пользователя
func (r *UserRepo) Create(user *entity.User) error {
	err := r.db.Create(user).Error
	if err != nil && isUniqueViolation(err) {
		return apperrors.ErrConflict
	}
	return err
}

// GetByID возвращает пользователя по ID
func (r *UserRepo) GetByID(id uint) (*entity.User, error) {
	var user entity.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail возвращает пользователя по email
func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	var user entity.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByPhone возвращает пользователя по номеру телефона
func (r *UserRepo) GetByPhone(phoneNumber string) (*entity.User, error) {
	var user entity.User
	err := r.db.Where("phone_number = ?", phoneNumber).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Update обновляет информацию о пользователе
func (r *UserRepo) Update(user *entity.User) error {
	return r.db.Save(user).Error
}

// UpdateProfile обновляет профиль пользователя без изменения пароля
// Этот метод обновляет только указанные поля, не затрагивая пароль
func (r *UserRepo) UpdateProfile(userID uint, updates map[string]interface{}) error {
	// Проверяем, что не пытаемся обновить пароль через этот метод
	delete(updates, "password")

	// Устанавливаем время обновления
	updates["updated_at"] = time.Now()

	return r.db.Model(&entity.User{}).Where("id = ?", userID).Updates(updates).Error
}

// UpdatePassword безопасно обновляет пароль пользователя
// Хеширует пароль перед сохранением в базу данных
func (r *UserRepo) UpdatePassword(userID uint, newPassword string) error {
	var user entity.User
	if err := r.db.First(&user, userID).Error; err != nil {
		log.Printf("[UserRepo.UpdatePassword] Ошибка при получении пользователя ID=%d: %v", userID, err)
		return err
	}

	// Хешируем пароль непосредственно здесь, вместо того чтобы полагаться на BeforeSave
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[UserRepo.UpdatePassword] Ошибка при хешировании пароля: %v", err)
		return err
	}

	// Используем SQL запрос напрямую, чтобы обойти хук BeforeSave и предотвратить двойное хеширование
	result := r.db.Exec(
		"UPDATE users SET password = ?, password_auth_enabled = true, updated_at = ? WHERE id = ?",
		string(hashedPassword),
		time.Now(),
		userID,
	)

	if result.Error != nil {
		log.Printf("[UserRepo.UpdatePassword] Ошибка при обновлении пароля: %v", result.Error)
		return result.Error
	}

	log.Printf("[UserRepo.UpdatePassword] Пароль успешно обновлён для пользователя ID=%d, Email=%s",
		userID, user.Email)

	return nil
}

// MarkEmailVerified помечает email пользователя как подтвержденный
func (r *UserRepo) MarkEmailVerified(userID uint) error {
	return r.db.Model(&entity.User{}).
		Where("id = ? AND email_verified_at IS NULL", userID).
		Update("email_verified_at", time.Now()).
		Error
}

// MarkPhoneVerified помечает номер телефона пользователя как подтвержденный
func (r *UserRepo) MarkPhoneVerified(userID uint) error {
	return r.db.Model(&entity.User{}).
		Where("id = ? AND phone_verified_at IS NULL", userID).
		Update("phone_verified_at", time.Now()).
		Error
}

// List возвращает список пользователей с пагинацией и общим количеством
func (r *UserRepo) List(limit, offset int) ([]entity.User, int64, error) {
	var users []entity.User
	var total int64

	err := r.db.Model(&entity.User{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = r.db.Limit(limit).Offset(offset).Order("id").Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}
