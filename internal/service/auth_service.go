package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yourusername/account-api/internal/domain/entity"
	"github.com/yourusername/account-api/internal/domain/repository"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
	"github.com/yourusername/account-api/pkg/auth"
	"github.com/yourusername/account-api/pkg/auth/manager"
)

// AuthService предоставляет методы для работы с парольной аутентификацией
// и пользовательскими сессиями.
type AuthService struct {
	userRepo     repository.UserRepository
	jwtService   *auth.JWTService
	tokenManager *manager.TokenManager
	otpService   *OTPService
}

// RegisterInput содержит все данные для регистрации
type RegisterInput struct {
	Email       string
	Password    string
	FullName    string
	CompanyName string
	WebsiteURL  string
	PhoneNumber string
}

// NewAuthService создает новый сервис аутентификации и возвращает ошибку при проблемах
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	tokenManager *manager.TokenManager,
	otpService *OTPService,
) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("jwt service is required")
	}
	if tokenManager == nil {
		return nil, fmt.Errorf("token manager is required")
	}
	if otpService == nil {
		return nil, fmt.Errorf("otp service is required")
	}

	return &AuthService{
		userRepo:     userRepo,
		jwtService:   jwtService,
		tokenManager: tokenManager,
		otpService:   otpService,
	}, nil
}

// RegisterUser регистрирует нового пользователя с паролем.
// Пробный период стартует сразу и заканчивается в полночь через 7 дней.
func (s *AuthService) RegisterUser(ctx context.Context, input RegisterInput) (*entity.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", apperrors.ErrValidation)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email availability: %w", err)
	}

	user := &entity.User{
		Email:               email,
		Password:            input.Password, // хешируется в BeforeSave
		PasswordAuthEnabled: true,
		FullName:            strings.TrimSpace(input.FullName),
		CompanyName:         strings.TrimSpace(input.CompanyName),
		WebsiteURL:          strings.TrimSpace(input.WebsiteURL),
		Role:                entity.RoleOwner,
		TrialExpiredAt:      trialDeadline(time.Now()),
	}
	if phone := strings.TrimSpace(input.PhoneNumber); phone != "" {
		user.PhoneNumber = &phone
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Код подтверждения email отправляем в фоне относительно регистрации:
	// неудача не должна откатывать созданный аккаунт
	if err := s.otpService.SendCode(ctx, OTPPurposeEmailVerification, user.Email, user.Email); err != nil {
		log.Printf("[AuthService] Не удалось отправить код подтверждения для %s: %v", user.Email, err)
	}

	log.Printf("[AuthService] Зарегистрирован пользователь ID=%d", user.ID)
	return user, nil
}

// LoginUser аутентифицирует пользователя по email и паролю и возвращает пару токенов
func (s *AuthService) LoginUser(email, password, deviceID, ipAddress, userAgent string) (*manager.TokenResponse, error) {
	user, err := s.AuthenticateUser(email, password)
	if err != nil {
		return nil, err
	}

	tokenResponse, err := s.tokenManager.GenerateTokenPair(user.ID, deviceID, ipAddress, userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return tokenResponse, nil
}

// AuthenticateUser проверяет учетные данные пользователя без создания токенов
func (s *AuthService) AuthenticateUser(email, password string) (*entity.User, error) {
	user, err := s.userRepo.GetByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// Социальным аккаунтам без пароля вход по паролю недоступен
	if !user.PasswordAuthEnabled {
		return nil, ErrInvalidCredentials
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrInactiveUser
	}

	return user, nil
}

// RefreshTokens обновляет пару токенов, используя refresh токен
func (s *AuthService) RefreshTokens(refreshToken, deviceID, ipAddress, userAgent string) (*manager.TokenResponse, error) {
	return s.tokenManager.RefreshTokens(refreshToken, deviceID, ipAddress, userAgent)
}

// LogoutUser отзывает указанный refresh токен
func (s *AuthService) LogoutUser(refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return fmt.Errorf("%w: refresh token is required", apperrors.ErrValidation)
	}
	return s.tokenManager.RevokeRefreshToken(refreshToken)
}

// LogoutAllDevices отзывает все токены пользователя
func (s *AuthService) LogoutAllDevices(userID uint) error {
	return s.tokenManager.RevokeAllUserTokens(userID)
}

// GetUserActiveSessions возвращает активные сессии пользователя
func (s *AuthService) GetUserActiveSessions(userID uint) ([]entity.RefreshToken, error) {
	return s.tokenManager.GetUserActiveSessions(userID)
}

// RevokeSession отзывает отдельную сессию по ID, проверяя владельца
func (s *AuthService) RevokeSession(userID, sessionID uint) error {
	return s.tokenManager.RevokeSessionByID(userID, sessionID)
}

// GetUserByID возвращает пользователя по ID
func (s *AuthService) GetUserByID(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}

// GetUserByEmail возвращает пользователя по Email
func (s *AuthService) GetUserByEmail(email string) (*entity.User, error) {
	return s.userRepo.GetByEmail(normalizeEmail(email))
}

// ListUsers возвращает пользователей постранично вместе с общим количеством
func (s *AuthService) ListUsers(limit, offset int) ([]entity.User, int64, error) {
	return s.userRepo.List(limit, offset)
}

// ProfileUpdateInput содержит изменяемые поля профиля. Nil-поля не трогаются.
type ProfileUpdateInput struct {
	FullName    *string
	CompanyName *string
	WebsiteURL  *string
	AvatarURL   *string
}

// UpdateUserProfile обновляет профиль пользователя
func (s *AuthService) UpdateUserProfile(userID uint, input ProfileUpdateInput) (*entity.User, error) {
	updates := make(map[string]interface{})
	if input.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*input.FullName)
	}
	if input.CompanyName != nil {
		updates["company_name"] = strings.TrimSpace(*input.CompanyName)
	}
	if input.WebsiteURL != nil {
		updates["website_url"] = strings.TrimSpace(*input.WebsiteURL)
	}
	if input.AvatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*input.AvatarURL)
	}
	if len(updates) == 0 {
		return s.userRepo.GetByID(userID)
	}

	if err := s.userRepo.UpdateProfile(userID, updates); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.userRepo.GetByID(userID)
}

// ChangePassword изменяет пароль пользователя и инвалидирует все токены
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	// Если парольный вход уже включен, требуем старый пароль.
	// Социальный аккаунт устанавливает пароль впервые без проверки.
	if user.PasswordAuthEnabled {
		if !user.CheckPassword(oldPassword) {
			return ErrInvalidCredentials
		}
	}
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}

	if err := s.userRepo.UpdatePassword(userID, newPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.tokenManager.RevokeAllUserTokens(userID); err != nil {
		log.Printf("[AuthService] Не удалось отозвать токены после смены пароля: %v", err)
	}
	return nil
}

// RequestPasswordReset отправляет код сброса пароля на email.
// Для неизвестного email возвращает nil, чтобы не раскрывать существование аккаунта.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[AuthService] Запрос сброса пароля для неизвестного email")
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	return s.otpService.SendCode(ctx, OTPPurposePasswordReset, user.Email, user.Email)
}

// ResetPassword подтверждает код сброса и устанавливает новый пароль
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}

	if err := s.otpService.VerifyCode(ctx, OTPPurposePasswordReset, email, code); err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(user.ID, newPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.tokenManager.RevokeAllUserTokens(user.ID); err != nil {
		log.Printf("[AuthService] Не удалось отозвать токены после сброса пароля: %v", err)
	}

	log.Printf("[AuthService] Пароль сброшен для пользователя ID=%d", user.ID)
	return nil
}

// SendEmailVerification повторно отправляет код подтверждения email
func (s *AuthService) SendEmailVerification(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user.EmailVerifiedAt != nil {
		return fmt.Errorf("%w: email already verified", apperrors.ErrValidation)
	}
	return s.otpService.SendCode(ctx, OTPPurposeEmailVerification, user.Email, user.Email)
}

// ConfirmEmail подтверждает email пользователя по коду
func (s *AuthService) ConfirmEmail(ctx context.Context, userID uint, code string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user.EmailVerifiedAt != nil {
		return nil
	}

	if err := s.otpService.VerifyCode(ctx, OTPPurposeEmailVerification, user.Email, code); err != nil {
		return err
	}
	return s.userRepo.MarkEmailVerified(user.ID)
}
