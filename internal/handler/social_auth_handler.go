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

// SocialAuthHandler обрабатывает вход и привязку через внешних провайдеров
type SocialAuthHandler struct {
	socialLoginService *service.SocialLoginService
	wsHub              SessionNotifier
}

func NewSocialAuthHandler(socialLoginService *service.SocialLoginService, wsHub SessionNotifier) *SocialAuthHandler {
	return &SocialAuthHandler{
		socialLoginService: socialLoginService,
		wsHub:              wsHub,
	}
}

// SocialLoginRequest представляет запрос на социальный вход
type SocialLoginRequest struct {
	Provider  string `json:"provider" binding:"required"`
	Assertion string `json:"assertion" binding:"required"`
	DeviceID  string `json:"device_id" binding:"omitempty,max=255"`
}

// LinkAccountRequest представляет запрос на привязку аккаунта
type LinkAccountRequest struct {
	Provider  string `json:"provider" binding:"required"`
	Assertion string `json:"assertion" binding:"required"`
}

// Login обрабатывает вход через внешнего провайдера.
// Одно и то же проверенное удостоверение всегда попадает в один аккаунт.
func (h *SocialAuthHandler) Login(c *gin.Context) {
	var req SocialLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request", "details": err.Error()})
		return
	}

	result, err := h.socialLoginService.Login(c.Request.Context(), service.SocialLoginInput{
		Provider:  req.Provider,
		Assertion: req.Assertion,
		DeviceID:  req.DeviceID,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		h.handleSocialError(c, err)
		return
	}

	status := http.StatusOK
	if result.IsNewUser {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"user":         result.User,
		"accessToken":  result.Token.AccessToken,
		"refreshToken": result.Token.RefreshToken,
		"tokenType":    result.Token.TokenType,
		"expiresIn":    result.Token.ExpiresIn,
		"userId":       result.Token.UserID,
		"isNewUser":    result.IsNewUser,
	})
}

// Link привязывает провайдера к текущему пользователю
func (h *SocialAuthHandler) Link(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req LinkAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request"})
		return
	}

	if err := h.socialLoginService.Link(c.Request.Context(), userID, req.Provider, req.Assertion); err != nil {
		h.handleSocialError(c, err)
		return
	}

	h.notify(userID, websocket.Event{
		Type: websocket.ACCOUNT_LINKED,
		Data: gin.H{"provider": req.Provider, "timestamp": time.Now().Format(time.RFC3339)},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Account linked successfully", "provider": req.Provider})
}

// Unlink отвязывает провайдера от текущего пользователя
func (h *SocialAuthHandler) Unlink(c *gin.Context) {
	userID := c.GetUint("user_id")
	providerName := c.Param("provider")

	if err := h.socialLoginService.Unlink(c.Request.Context(), userID, providerName); err != nil {
		h.handleSocialError(c, err)
		return
	}

	h.notify(userID, websocket.Event{
		Type: websocket.ACCOUNT_UNLINKED,
		Data: gin.H{"provider": providerName, "timestamp": time.Now().Format(time.RFC3339)},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Account unlinked successfully", "provider": providerName})
}

// ListLinked возвращает привязанные аккаунты текущего пользователя
func (h *SocialAuthHandler) ListLinked(c *gin.Context) {
	userID := c.GetUint("user_id")

	accounts, err := h.socialLoginService.ListAccounts(c.Request.Context(), userID)
	if err != nil {
		h.handleSocialError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts, "count": len(accounts)})
}

func (h *SocialAuthHandler) notify(userID uint, event websocket.Event) {
	if h.wsHub == nil {
		return
	}
	h.wsHub.NotifyUser(userID, event)
}

// handleSocialError транслирует ошибки линкера в HTTP-статусы.
// Недействительное утверждение и недоступный провайдер различаются:
// первое — ошибка клиента, второе — временная, ее можно повторить.
func (h *SocialAuthHandler) handleSocialError(c *gin.Context, err error) {
	var tokenErr *manager.TokenError
	log.Printf("[SocialAuthHandler] Social login error: %v", err)

	switch {
	case errors.Is(err, service.ErrInvalidAssertion):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Assertion was rejected by the provider", "error_type": "invalid_assertion"})
	case errors.Is(err, service.ErrProviderUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Identity provider is temporarily unavailable", "error_type": "provider_unavailable"})
	case errors.Is(err, service.ErrAccountConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "account_conflict"})
	case errors.Is(err, service.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Account store is temporarily unavailable", "error_type": "store_unavailable"})
	case errors.Is(err, service.ErrLastAuthMethod):
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot remove the only way to sign in", "error_type": "last_auth_method"})
	case errors.Is(err, service.ErrInactiveUser):
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is deactivated", "error_type": "inactive_user"})
	case errors.As(err, &tokenErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed", "error_type": string(tokenErr.Type)})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation error", "error_type": "validation_error", "details": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found", "error_type": "not_found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "error_type": "internal_server_error"})
	}
}
