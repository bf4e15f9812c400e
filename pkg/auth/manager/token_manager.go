package manager

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/account-api/internal/domain/entity"
	"github.com/yourusername/account-api/internal/domain/repository"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
	"github.com/yourusername/account-api/pkg/auth"
)

// Константы для настройки токенов
const (
	// Время жизни refresh-токена по умолчанию (30 дней)
	DefaultRefreshTokenLifetime = 30 * 24 * time.Hour
	// Максимальное количество активных refresh-токенов на пользователя (по умолчанию)
	DefaultMaxRefreshTokensPerUser = 10
)

// TokenErrorType определяет тип ошибки токена
type TokenErrorType string

const (
	// Ошибки генерации токенов
	TokenGenerationFailed TokenErrorType = "TOKEN_GENERATION_FAILED"

	// Ошибки валидации
	InvalidRefreshToken TokenErrorType = "INVALID_REFRESH_TOKEN"
	ExpiredRefreshToken TokenErrorType = "EXPIRED_REFRESH_TOKEN"
	InvalidAccessToken  TokenErrorType = "INVALID_ACCESS_TOKEN"
	ExpiredAccessToken  TokenErrorType = "EXPIRED_ACCESS_TOKEN"
	UserNotFound        TokenErrorType = "USER_NOT_FOUND"
	InactiveUser        TokenErrorType = "INACTIVE_USER"

	// Ошибки базы данных или репозитория
	DatabaseError TokenErrorType = "DATABASE_ERROR"

	// Прочие ошибки
	TokenRevoked    TokenErrorType = "TOKEN_REVOKED"
	TooManySessions TokenErrorType = "TOO_MANY_SESSIONS"
)

// TokenError представляет ошибку при работе с токенами
type TokenError struct {
	Type    TokenErrorType
	Message string
	Err     error
}

// Error возвращает строковое представление ошибки
func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewTokenError создает новую ошибку токена
func NewTokenError(tokenType TokenErrorType, message string, err error) *TokenError {
	return &TokenError{
		Type:    tokenType,
		Message: message,
		Err:     err,
	}
}

// TokenResponse представляет ответ с парой токенов
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       uint   `json:"user_id"`
}

// TokenManager управляет выдачей и валидацией токенов.
// Refresh-токены хранятся в БД только в виде SHA-256 хеша: сырое значение
// существует единственный раз в ответе клиенту.
type TokenManager struct {
	jwtService              *auth.JWTService
	refreshTokenRepo        repository.RefreshTokenRepository
	userRepo                repository.UserRepository
	refreshTokenExpiry      time.Duration
	maxRefreshTokensPerUser int
}

// NewTokenManager создает новый менеджер токенов и возвращает ошибку при проблемах
func NewTokenManager(
	jwtService *auth.JWTService,
	refreshTokenRepo repository.RefreshTokenRepository,
	userRepo repository.UserRepository,
) (*TokenManager, error) {
	if jwtService == nil {
		return nil, fmt.Errorf("JWTService is required for TokenManager")
	}
	if refreshTokenRepo == nil {
		return nil, fmt.Errorf("RefreshTokenRepository is required for TokenManager")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for TokenManager")
	}

	return &TokenManager{
		jwtService:              jwtService,
		refreshTokenRepo:        refreshTokenRepo,
		userRepo:                userRepo,
		refreshTokenExpiry:      DefaultRefreshTokenLifetime,
		maxRefreshTokensPerUser: DefaultMaxRefreshTokensPerUser,
	}, nil
}

// SetRefreshTokenExpiry устанавливает время жизни refresh токена
func (m *TokenManager) SetRefreshTokenExpiry(duration time.Duration) {
	if duration > 0 {
		m.refreshTokenExpiry = duration
		log.Printf("[TokenManager] Refresh token expiry set to: %v", duration)
	} else {
		log.Printf("[TokenManager] Warning: Invalid refresh token expiry duration provided: %v. Using default: %v", duration, m.refreshTokenExpiry)
	}
}

// SetMaxRefreshTokensPerUser устанавливает максимальное количество активных refresh-токенов на пользователя.
// Это значение обычно берется из конфигурации при старте приложения.
func (m *TokenManager) SetMaxRefreshTokensPerUser(limit int) {
	if limit > 0 {
		m.maxRefreshTokensPerUser = limit
		log.Printf("[TokenManager] Max refresh tokens per user set to: %d", limit)
	} else {
		log.Printf("[TokenManager] Warning: Invalid max refresh tokens per user provided: %d. Using default: %d", limit, m.maxRefreshTokensPerUser)
	}
}

// GetMaxRefreshTokensPerUser возвращает текущий лимит активных refresh-токенов на пользователя.
func (m *TokenManager) GetMaxRefreshTokensPerUser() int {
	return m.maxRefreshTokensPerUser
}

// GenerateTokenPair создает новую пару токенов (access и refresh)
func (m *TokenManager) GenerateTokenPair(userID uint, deviceID, ipAddress, userAgent string) (*TokenResponse, error) {
	user, err := m.userRepo.GetByID(userID)
	if err != nil {
		log.Printf("[TokenManager] Ошибка при получении пользователя ID=%d: %v", userID, err)
		return nil, NewTokenError(UserNotFound, "пользователь не найден", err)
	}

	if !user.IsActive() {
		return nil, NewTokenError(InactiveUser, "аккаунт деактивирован", nil)
	}

	accessToken, err := m.jwtService.GenerateToken(user)
	if err != nil {
		log.Printf("[TokenManager] Ошибка генерации access-токена для пользователя ID=%d: %v", userID, err)
		return nil, NewTokenError(TokenGenerationFailed, "ошибка генерации access токена", err)
	}

	refreshTokenString, err := m.generateRefreshToken(userID, deviceID, ipAddress, userAgent)
	if err != nil {
		log.Printf("[TokenManager] Ошибка генерации refresh-токена для пользователя ID=%d: %v", userID, err)
		return nil, NewTokenError(TokenGenerationFailed, "ошибка генерации refresh токена", err)
	}

	// Лимитируем количество активных refresh-токенов
	if err := m.limitUserSessions(userID); err != nil {
		log.Printf("[TokenManager] Ошибка при лимитировании сессий пользователя ID=%d: %v", userID, err)
	}

	log.Printf("[TokenManager] Сгенерирована пара токенов для пользователя ID=%d, device=%s", userID, deviceID)

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		TokenType:    "Bearer",
		ExpiresIn:    int(m.jwtService.AccessTokenExpiry().Seconds()),
		UserID:       userID,
	}, nil
}

// RefreshTokens обновляет пару токенов, используя refresh токен.
// Старый токен всегда ротируется: помечается истекшим и заменяется новым.
func (m *TokenManager) RefreshTokens(refreshToken, deviceID, ipAddress, userAgent string) (*TokenResponse, error) {
	tokenHash := HashToken(refreshToken)

	tokenEntity, err := m.refreshTokenRepo.GetTokenByHash(tokenHash)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrExpiredToken) {
			return nil, NewTokenError(InvalidRefreshToken, "недействительный или истекший refresh токен", err)
		}
		log.Printf("[TokenManager] Ошибка при получении refresh-токена: %v", err)
		return nil, NewTokenError(DatabaseError, "ошибка при проверке refresh токена", err)
	}

	if !tokenEntity.IsValid() {
		return nil, NewTokenError(TokenRevoked, "refresh токен отозван", nil)
	}

	user, err := m.userRepo.GetByID(tokenEntity.UserID)
	if err != nil {
		log.Printf("[TokenManager] Ошибка при получении пользователя ID=%d для обновления токенов: %v", tokenEntity.UserID, err)
		return nil, NewTokenError(UserNotFound, "пользователь не найден", err)
	}

	if !user.IsActive() {
		return nil, NewTokenError(InactiveUser, "аккаунт деактивирован", nil)
	}

	// Помечаем старый refresh токен как истекший
	if err := m.refreshTokenRepo.MarkTokenAsExpired(tokenHash); err != nil {
		log.Printf("[TokenManager] Ошибка при маркировке старого refresh-токена как истекшего (ID: %d): %v", tokenEntity.ID, err)
		// Не критично, продолжаем
	}

	newAccessToken, err := m.jwtService.GenerateToken(user)
	if err != nil {
		log.Printf("[TokenManager] Ошибка генерации нового access-токена для пользователя ID=%d: %v", user.ID, err)
		return nil, NewTokenError(TokenGenerationFailed, "ошибка генерации нового access токена", err)
	}

	newRefreshTokenString, err := m.generateRefreshToken(user.ID, deviceID, ipAddress, userAgent)
	if err != nil {
		log.Printf("[TokenManager] Ошибка генерации нового refresh-токена для пользователя ID=%d: %v", user.ID, err)
		return nil, NewTokenError(TokenGenerationFailed, "ошибка генерации нового refresh токена", err)
	}

	if err := m.limitUserSessions(user.ID); err != nil {
		log.Printf("[TokenManager] Ошибка при лимитировании сессий пользователя ID=%d после обновления: %v", user.ID, err)
	}

	log.Printf("[TokenManager] Обновлена пара токенов для пользователя ID=%d", user.ID)

	return &TokenResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshTokenString,
		TokenType:    "Bearer",
		ExpiresIn:    int(m.jwtService.AccessTokenExpiry().Seconds()),
		UserID:       user.ID,
	}, nil
}

// RevokeRefreshToken отзывает (помечает как истекший) указанный refresh токен
func (m *TokenManager) RevokeRefreshToken(refreshToken string) error {
	tokenHash := HashToken(refreshToken)
	if err := m.refreshTokenRepo.MarkTokenAsExpired(tokenHash); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[TokenManager] Попытка отозвать несуществующий refresh токен.")
			return NewTokenError(InvalidRefreshToken, "токен не найден", err)
		}
		log.Printf("[TokenManager] Ошибка при отзыве refresh-токена: %v", err)
		return NewTokenError(DatabaseError, "ошибка при отзыве токена", err)
	}

	log.Printf("[TokenManager] Отозван refresh-токен")
	return nil
}

// RevokeSessionByID отзывает конкретную сессию пользователя по ID записи.
// Отзыв чужой сессии запрещен.
func (m *TokenManager) RevokeSessionByID(userID, sessionID uint) error {
	token, err := m.refreshTokenRepo.GetTokenByID(sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return NewTokenError(InvalidRefreshToken, "сессия не найдена", err)
		}
		return NewTokenError(DatabaseError, "ошибка при поиске сессии", err)
	}

	if token.UserID != userID {
		return NewTokenError(InvalidRefreshToken, "сессия принадлежит другому пользователю", nil)
	}

	if err := m.refreshTokenRepo.MarkTokenAsExpiredByID(sessionID); err != nil {
		return NewTokenError(DatabaseError, "ошибка при отзыве сессии", err)
	}

	log.Printf("[TokenManager] Отозвана сессия ID=%d пользователя ID=%d", sessionID, userID)
	return nil
}

// RevokeAllUserTokens отзывает все refresh-токены пользователя
func (m *TokenManager) RevokeAllUserTokens(userID uint) error {
	if err := m.refreshTokenRepo.MarkAllAsExpiredForUser(userID); err != nil {
		log.Printf("[TokenManager] Ошибка при отзыве всех refresh-токенов пользователя ID=%d: %v", userID, err)
		return NewTokenError(DatabaseError, "ошибка отзыва refresh токенов", err)
	}

	log.Printf("[TokenManager] Отозваны все токены пользователя ID=%d", userID)
	return nil
}

// GetUserActiveSessions возвращает список активных сессий (refresh токенов) для пользователя
func (m *TokenManager) GetUserActiveSessions(userID uint) ([]entity.RefreshToken, error) {
	tokensPtr, err := m.refreshTokenRepo.GetActiveTokensForUser(userID)
	if err != nil {
		log.Printf("[TokenManager] Ошибка при получении активных сессий пользователя ID=%d: %v", userID, err)
		return nil, NewTokenError(DatabaseError, "ошибка получения сессий", err)
	}

	tokens := make([]entity.RefreshToken, len(tokensPtr))
	for i, t := range tokensPtr {
		tokens[i] = *t
	}

	return tokens, nil
}

// CleanupExpiredTokens удаляет все истекшие refresh-токены
func (m *TokenManager) CleanupExpiredTokens() error {
	count, err := m.refreshTokenRepo.CleanupExpiredTokens()
	if err != nil {
		log.Printf("[TokenManager] Ошибка при очистке истекших refresh-токенов: %v", err)
		return NewTokenError(DatabaseError, "ошибка очистки истекших токенов", err)
	}

	log.Printf("[TokenManager] Выполнена очистка %d истекших токенов", count)
	return nil
}

// Служебные функции

// generateRefreshToken генерирует новый refresh-токен, сохраняет его хеш в БД
// и возвращает сырое значение токена
func (m *TokenManager) generateRefreshToken(userID uint, deviceID, ipAddress, userAgent string) (string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	tokenString := hex.EncodeToString(randomBytes)

	// Время истечения - "скользящее окно" от текущего момента
	expiresAt := time.Now().Add(m.refreshTokenExpiry)

	token := entity.NewRefreshToken(userID, HashToken(tokenString), deviceID, ipAddress, userAgent, expiresAt)

	if _, err := m.refreshTokenRepo.CreateToken(token); err != nil {
		return "", err
	}

	return tokenString, nil
}

// HashToken хеширует refresh-токен с использованием SHA-256
func HashToken(token string) string {
	hasher := sha256.New()
	hasher.Write([]byte(token))
	return hex.EncodeToString(hasher.Sum(nil))
}

// limitUserSessions помечает старые сессии истекшими при превышении лимита
func (m *TokenManager) limitUserSessions(userID uint) error {
	count, err := m.refreshTokenRepo.CountTokensForUser(userID)
	if err != nil {
		return fmt.Errorf("ошибка подсчета токенов: %w", err)
	}

	if count > m.maxRefreshTokensPerUser {
		log.Printf("[TokenManager] Превышен лимит сессий для пользователя ID=%d (%d > %d). Удаление старых.", userID, count, m.maxRefreshTokensPerUser)
		if err := m.refreshTokenRepo.MarkOldestAsExpiredForUser(userID, m.maxRefreshTokensPerUser); err != nil {
			return fmt.Errorf("ошибка маркировки старых токенов: %w", err)
		}
	}
	return nil
}
