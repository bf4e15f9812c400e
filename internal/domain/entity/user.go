package entity

import (
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Роли пользователей
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

// User представляет пользователя в системе
type User struct {
	ID                  uint    `gorm:"primaryKey" json:"id"`
	Email               string  `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PhoneNumber         *string `gorm:"size:32;uniqueIndex" json:"phone_number,omitempty"`
	Password            string  `gorm:"size:100;not null" json:"-"`
	PasswordAuthEnabled bool    `gorm:"not null;default:true" json:"-"`
	FullName            string  `gorm:"size:255;not null;default:''" json:"full_name"`
	CompanyName         string  `gorm:"size:255;not null;default:''" json:"company_name"`
	WebsiteURL          string  `gorm:"size:500;not null;default:''" json:"website_url"`
	AvatarURL           string  `gorm:"size:500;not null;default:''" json:"avatar_url"`
	Role                string  `gorm:"size:32;not null;default:'owner'" json:"-"` // "owner" или "admin"
	LastLoginProvider   string  `gorm:"size:50;not null;default:''" json:"last_login_provider,omitempty"`

	EmailVerifiedAt *time.Time `gorm:"type:timestamp" json:"email_verified_at,omitempty"`
	PhoneVerifiedAt *time.Time `gorm:"type:timestamp" json:"phone_verified_at,omitempty"`
	TrialExpiredAt  *time.Time `gorm:"type:timestamp" json:"trial_expired_at,omitempty"`
	InactiveAt      *time.Time `gorm:"type:timestamp" json:"inactive_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive возвращает true, если аккаунт не деактивирован
func (u *User) IsActive() bool {
	return u.InactiveAt == nil
}

// IsAdmin возвращает true для администраторов
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Phone возвращает номер телефона или пустую строку
func (u *User) Phone() string {
	if u.PhoneNumber == nil {
		return ""
	}
	return *u.PhoneNumber
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// BeforeSave хеширует пароль перед сохранением, только если он не является bcrypt-хешем
func (u *User) BeforeSave(tx *gorm.DB) error {
	// Хешируем пароль только если он:
	// 1. Не пустой
	// 2. Не является уже bcrypt-хешем (начинается с "$2a$", "$2b$" или "$2y$")
	if len(u.Password) > 0 && !strings.HasPrefix(u.Password, "$2a$") &&
		!strings.HasPrefix(u.Password, "$2b$") && !strings.HasPrefix(u.Password, "$2y$") {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[User.BeforeSave] Ошибка при хешировании пароля для email=%s: %v", u.Email, err)
			return err
		}
		u.Password = string(hashedPassword)
	}
	return nil
}

// CheckPassword проверяет, соответствует ли переданный пароль хешу
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
