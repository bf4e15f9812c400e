package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/account-api/internal/domain/entity"
	"github.com/yourusername/account-api/internal/domain/repository"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
)

// Поддерживаемые push-провайдеры
const (
	PushProviderFCM  = "fcm"
	PushProviderAPNS = "apns"
)

// PushNotifier отправляет push-уведомление на устройство.
// Реальная доставка живет за этим интерфейсом, сервис ее не знает.
type PushNotifier interface {
	Notify(ctx context.Context, token *entity.DeviceToken, title, body string) error
}

// LogPushNotifier пишет уведомления в лог вместо отправки.
// Используется, пока не настроен реальный транспорт.
type LogPushNotifier struct{}

func (n *LogPushNotifier) Notify(ctx context.Context, token *entity.DeviceToken, title, body string) error {
	log.Printf("[PushNotifier] device_id=%s provider=%s title=%q", token.DeviceID, token.Provider, title)
	return nil
}

// DeviceTokenInput содержит данные регистрации устройства
type DeviceTokenInput struct {
	Provider    string
	DeviceID    string
	DeviceToken string
	DeviceType  string
	DeviceName  string
	AppVersion  string
	OSVersion   string
}

// DeviceTokenService регистрирует push-токены устройств пользователя.
type DeviceTokenService struct {
	deviceTokenRepo repository.DeviceTokenRepository
	notifier        PushNotifier
}

func NewDeviceTokenService(deviceTokenRepo repository.DeviceTokenRepository, notifier PushNotifier) (*DeviceTokenService, error) {
	if deviceTokenRepo == nil {
		return nil, fmt.Errorf("device token repository is required")
	}
	if notifier == nil {
		notifier = &LogPushNotifier{}
	}
	return &DeviceTokenService{
		deviceTokenRepo: deviceTokenRepo,
		notifier:        notifier,
	}, nil
}

// Register создает или обновляет токен устройства.
// Повторная регистрация того же (provider, device_id) обновляет строку.
func (s *DeviceTokenService) Register(ctx context.Context, userID uint, input DeviceTokenInput) (*entity.DeviceToken, error) {
	providerName := strings.ToLower(strings.TrimSpace(input.Provider))
	if providerName != PushProviderFCM && providerName != PushProviderAPNS {
		return nil, fmt.Errorf("%w: unknown push provider %q", apperrors.ErrValidation, input.Provider)
	}
	if strings.TrimSpace(input.DeviceID) == "" {
		return nil, fmt.Errorf("%w: device_id is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(input.DeviceToken) == "" {
		return nil, fmt.Errorf("%w: device_token is required", apperrors.ErrValidation)
	}

	token := &entity.DeviceToken{
		UserID:      userID,
		Provider:    providerName,
		DeviceID:    strings.TrimSpace(input.DeviceID),
		DeviceToken: strings.TrimSpace(input.DeviceToken),
		DeviceType:  strings.TrimSpace(input.DeviceType),
		DeviceName:  strings.TrimSpace(input.DeviceName),
		AppVersion:  strings.TrimSpace(input.AppVersion),
		OSVersion:   strings.TrimSpace(input.OSVersion),
		IsActive:    true,
	}

	if err := s.deviceTokenRepo.Upsert(token); err != nil {
		return nil, fmt.Errorf("failed to register device token: %w", err)
	}

	log.Printf("[DeviceTokenService] Зарегистрировано устройство user_id=%d provider=%s device_id=%s",
		userID, providerName, token.DeviceID)
	return token, nil
}

// List возвращает все устройства пользователя
func (s *DeviceTokenService) List(ctx context.Context, userID uint) ([]entity.DeviceToken, error) {
	return s.deviceTokenRepo.ListByUserID(userID)
}

// Unregister деактивирует токен устройства
func (s *DeviceTokenService) Unregister(ctx context.Context, userID uint, providerName, deviceID string) error {
	err := s.deviceTokenRepo.Deactivate(userID, strings.ToLower(strings.TrimSpace(providerName)), strings.TrimSpace(deviceID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to deactivate device token: %w", err)
	}
	return nil
}

// NotifyUser отправляет уведомление на все активные устройства пользователя
func (s *DeviceTokenService) NotifyUser(ctx context.Context, userID uint, title, body string) error {
	tokens, err := s.deviceTokenRepo.ListActiveByUserID(userID)
	if err != nil {
		return fmt.Errorf("failed to list active device tokens: %w", err)
	}

	var lastErr error
	for i := range tokens {
		if err := s.notifier.Notify(ctx, &tokens[i], title, body); err != nil {
			log.Printf("[DeviceTokenService] Не удалось отправить push на device_id=%s: %v", tokens[i].DeviceID, err)
			lastErr = err
		}
	}
	return lastErr
}
