package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
	"github.com/yourusername/account-api/internal/service"
)

// DeviceTokenHandler обрабатывает регистрацию push-токенов устройств
type DeviceTokenHandler struct {
	deviceTokenService *service.DeviceTokenService
}

func NewDeviceTokenHandler(deviceTokenService *service.DeviceTokenService) *DeviceTokenHandler {
	return &DeviceTokenHandler{deviceTokenService: deviceTokenService}
}

// RegisterDeviceRequest представляет запрос на регистрацию устройства
type RegisterDeviceRequest struct {
	Provider    string `json:"provider" binding:"required,oneof=fcm apns"`
	DeviceID    string `json:"device_id" binding:"required,max=255"`
	DeviceToken string `json:"device_token" binding:"required"`
	DeviceType  string `json:"device_type" binding:"required,oneof=ios android web"`
	DeviceName  string `json:"device_name" binding:"omitempty,max=255"`
	AppVersion  string `json:"app_version" binding:"omitempty,max=50"`
	OSVersion   string `json:"os_version" binding:"omitempty,max=50"`
}

// Register создает или обновляет push-токен устройства
func (h *DeviceTokenHandler) Register(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request", "details": err.Error()})
		return
	}

	token, err := h.deviceTokenService.Register(c.Request.Context(), userID, service.DeviceTokenInput{
		Provider:    req.Provider,
		DeviceID:    req.DeviceID,
		DeviceToken: req.DeviceToken,
		DeviceType:  req.DeviceType,
		DeviceName:  req.DeviceName,
		AppVersion:  req.AppVersion,
		OSVersion:   req.OSVersion,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation error", "error_type": "validation_error", "details": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register device", "error_type": "internal_server_error"})
		return
	}

	c.JSON(http.StatusOK, token)
}

// List возвращает устройства текущего пользователя
func (h *DeviceTokenHandler) List(c *gin.Context) {
	userID := c.GetUint("user_id")

	tokens, err := h.deviceTokenService.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list devices", "error_type": "internal_server_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"devices": tokens, "count": len(tokens)})
}

// Unregister деактивирует push-токен устройства
func (h *DeviceTokenHandler) Unregister(c *gin.Context) {
	userID := c.GetUint("user_id")
	providerName := c.Param("provider")
	deviceID := c.Param("device_id")

	if err := h.deviceTokenService.Unregister(c.Request.Context(), userID, providerName, deviceID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Device not found", "error_type": "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unregister device", "error_type": "internal_server_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device unregistered"})
}
