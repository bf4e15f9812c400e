package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
	"github.com/yourusername/account-api/internal/service"
	"github.com/yourusername/account-api/internal/websocket"
	"github.com/yourusername/account-api/pkg/auth/manager"
)

// SessionNotifier отправляет событие на активные устройства пользователя.
// Реализуется websocket.Hub; nil означает "уведомления выключены".
type SessionNotifier interface {
	NotifyUser(userID uint, event websocket.Event)
}

// AuthHandler обрабатывает запросы, связанные с аутентификацией
type AuthHandler struct {
	authService *service.AuthService
	wsHub       SessionNotifier
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(authService *service.AuthService, wsHub SessionNotifier) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		wsHub:       wsHub,
	}
}

// Структуры запросов и ответов

// RegisterRequest представляет запрос на регистрацию
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	FullName    string `json:"full_name" binding:"omitempty,max=255"`
	CompanyName string `json:"company_name" binding:"omitempty,max=255"`
	WebsiteURL  string `json:"website_url" binding:"omitempty,max=500"`
	PhoneNumber string `json:"phone_number" binding:"omitempty,max=32"`
	DeviceID    string `json:"device_id" binding:"omitempty,max=255"`
}

// LoginRequest представляет запрос на вход
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	DeviceID string `json:"device_id" binding:"omitempty,max=255"`
}

// RefreshTokenRequest представляет запрос на обновление токенов
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
	DeviceID     string `json:"device_id" binding:"omitempty,max=255"`
}

// LogoutRequest представляет запрос на выход
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest представляет запрос на изменение пароля
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"omitempty"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// ForgotPasswordRequest представляет запрос на код сброса пароля
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest применяет код сброса и новый пароль
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// ConfirmEmailRequest представляет запрос на подтверждение email
type ConfirmEmailRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

// authResponse собирает ответ login/register из пользователя и пары токенов
func authResponse(user interface{}, tokens *manager.TokenResponse) gin.H {
	return gin.H{
		"user":         user,
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
		"tokenType":    tokens.TokenType,
		"expiresIn":    tokens.ExpiresIn,
		"userId":       tokens.UserID,
	}
}

// Register обрабатывает запрос на регистрацию
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request", "details": err.Error()})
		return
	}

	user, err := h.authService.RegisterUser(c.Request.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		CompanyName: req.CompanyName,
		WebsiteURL:  req.WebsiteURL,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	// Выдаем токены сразу после регистрации
	tokens, err := h.authService.LoginUser(req.Email, req.Password, req.DeviceID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	log.Printf("[AuthHandler] Пользователь ID=%d успешно зарегистрирован", user.ID)
	c.JSON(http.StatusCreated, authResponse(user, tokens))
}

// Login обрабатывает запрос на вход по паролю
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request", "details": err.Error()})
		return
	}

	tokens, err := h.authService.LoginUser(req.Email, req.Password, req.DeviceID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	user, err := h.authService.GetUserByID(tokens.UserID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, authResponse(user, tokens))
}

// Refresh обрабатывает запрос на обновление пары токенов
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request"})
		return
	}

	tokens, err := h.authService.RefreshTokens(req.RefreshToken, req.DeviceID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
		"tokenType":    tokens.TokenType,
		"expiresIn":    tokens.ExpiresIn,
		"userId":       tokens.UserID,
	})
}

// Logout отзывает refresh токен текущей сессии
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request"})
		return
	}

	if err := h.authService.LogoutUser(req.RefreshToken); err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// LogoutAllDevices отзывает все сессии пользователя
func (h *AuthHandler) LogoutAllDevices(c *gin.Context) {
	userID := c.GetUint("user_id")

	if err := h.authService.LogoutAllDevices(userID); err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.notify(userID, websocket.Event{
		Type: websocket.LOGOUT_ALL_DEVICES,
		Data: gin.H{"timestamp": time.Now().Format(time.RFC3339)},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out from all devices"})
}

// GetActiveSessions возвращает активные сессии пользователя
func (h *AuthHandler) GetActiveSessions(c *gin.Context) {
	userID := c.GetUint("user_id")

	sessions, err := h.authService.GetUserActiveSessions(userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	type sessionInfo struct {
		ID        uint      `json:"id"`
		DeviceID  string    `json:"device_id"`
		IPAddress string    `json:"ip_address"`
		UserAgent string    `json:"user_agent"`
		CreatedAt time.Time `json:"created_at"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	out := make([]sessionInfo, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionInfo{
			ID:        s.ID,
			DeviceID:  s.DeviceID,
			IPAddress: s.IPAddress,
			UserAgent: s.UserAgent,
			CreatedAt: s.CreatedAt,
			ExpiresAt: s.ExpiresAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"sessions": out, "count": len(out)})
}

// RevokeSession отзывает отдельную сессию по ID
func (h *AuthHandler) RevokeSession(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req struct {
		SessionID uint `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request"})
		return
	}

	if err := h.authService.RevokeSession(userID, req.SessionID); err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.notify(userID, websocket.Event{
		Type: websocket.SESSION_REVOKED,
		Data: gin.H{"session_id": req.SessionID, "timestamp": time.Now().Format(time.RFC3339)},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Session revoked successfully", "session_id": req.SessionID})
}

// ChangePassword изменяет пароль текущего пользователя
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request"})
		return
	}

	if err := h.authService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.notify(userID, websocket.Event{
		Type: websocket.PASSWORD_CHANGED,
		Data: gin.H{"timestamp": time.Now().Format(time.RFC3339)},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// ForgotPassword отправляет код сброса пароля на email
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request"})
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.handleAuthError(c, err)
		return
	}

	// Ответ одинаков для известных и неизвестных адресов
	c.JSON(http.StatusOK, gin.H{"message": "If the email exists, a reset code has been sent"})
}

// ResetPassword применяет код сброса и устанавливает новый пароль
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request"})
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}

// SendEmailVerification повторно отправляет код подтверждения email
func (h *AuthHandler) SendEmailVerification(c *gin.Context) {
	userID := c.GetUint("user_id")

	if err := h.authService.SendEmailVerification(c.Request.Context(), userID); err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

// ConfirmEmail подтверждает email по коду
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req ConfirmEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request"})
		return
	}

	if err := h.authService.ConfirmEmail(c.Request.Context(), userID, req.Code); err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email confirmed"})
}

func (h *AuthHandler) notify(userID uint, event websocket.Event) {
	if h.wsHub == nil {
		return
	}
	h.wsHub.NotifyUser(userID, event)
}

// handleAuthError транслирует ошибки сервисного слоя в HTTP-статусы
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	var tokenErr *manager.TokenError
	log.Printf("[AuthHandler] Auth Error: %v", err)

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password", "error_type": "invalid_credentials"})
	case errors.Is(err, service.ErrInactiveUser):
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is deactivated", "error_type": "inactive_user"})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Email is already registered", "error_type": "email_taken"})
	case errors.Is(err, service.ErrInvalidVerificationCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification code", "error_type": "invalid_verification_code"})
	case errors.Is(err, service.ErrVerificationExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Verification code expired", "error_type": "verification_expired"})
	case errors.Is(err, service.ErrVerificationAttemptsExceeded):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Verification attempts exceeded", "error_type": "verification_attempts_exceeded"})
	case errors.Is(err, service.ErrVerificationResendCooldown):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Please wait before requesting a new code", "error_type": "rate_limited"})
	case errors.As(err, &tokenErr):
		h.handleTokenError(c, tokenErr)
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials", "error_type": "unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "error_type": "forbidden"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found", "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Data conflict", "error_type": "conflict"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation error", "error_type": "validation_error", "details": err.Error()})
	case errors.Is(err, apperrors.ErrExpiredToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired", "error_type": "token_expired"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "error_type": "internal_server_error"})
	}
}

func (h *AuthHandler) handleTokenError(c *gin.Context, tokenErr *manager.TokenError) {
	switch tokenErr.Type {
	case manager.ExpiredRefreshToken, manager.ExpiredAccessToken:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired", "error_type": "token_expired"})
	case manager.InvalidRefreshToken, manager.InvalidAccessToken, manager.TokenRevoked:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token", "error_type": "token_invalid"})
	case manager.UserNotFound:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials", "error_type": "invalid_credentials"})
	case manager.InactiveUser:
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is deactivated", "error_type": "inactive_user"})
	case manager.TokenGenerationFailed:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed", "error_type": "token_generation_failed"})
	case manager.TooManySessions:
		c.JSON(http.StatusConflict, gin.H{"error": "Too many active sessions", "error_type": "too_many_sessions"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication error", "error_type": string(tokenErr.Type)})
	}
}
