package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/yourusername/account-api/internal/domain/repository"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
)

// OTP purposes. Каждое назначение хранит свой код независимо.
const (
	OTPPurposePasswordReset     = "password_reset"
	OTPPurposeEmailVerification = "email_verification"
	OTPPurposePhoneVerification = "phone_verification"
)

// otpRecord хранится в Redis под ключом otp:{purpose}:{identifier}.
// Сырой код никогда не сохраняется, только соленый SHA-256 хеш.
type otpRecord struct {
	CodeHash    string    `json:"code_hash"`
	CodeSalt    string    `json:"code_salt"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
	SentAt      time.Time `json:"sent_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// OTPService выпускает и проверяет одноразовые 6-значные коды в Redis.
// TTL кода, лимит попыток и пауза между повторными отправками настраиваемы.
type OTPService struct {
	cacheRepo      repository.CacheRepository
	emailService   EmailService
	codeTTL        time.Duration
	resendCooldown time.Duration
	maxAttempts    int
	codePepper     string
}

func NewOTPService(
	cacheRepo repository.CacheRepository,
	emailService EmailService,
	codeTTL time.Duration,
	resendCooldown time.Duration,
	maxAttempts int,
	codePepper string,
) (*OTPService, error) {
	if cacheRepo == nil {
		return nil, fmt.Errorf("cache repository is required")
	}
	if emailService == nil {
		return nil, fmt.Errorf("email service is required")
	}
	if codeTTL <= 0 {
		codeTTL = 10 * time.Minute
	}
	if resendCooldown <= 0 {
		resendCooldown = 60 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	return &OTPService{
		cacheRepo:      cacheRepo,
		emailService:   emailService,
		codeTTL:        codeTTL,
		resendCooldown: resendCooldown,
		maxAttempts:    maxAttempts,
		codePepper:     codePepper,
	}, nil
}

// SendCode генерирует новый код для (purpose, identifier) и отправляет его
// на email. Предыдущий активный код перезаписывается.
func (s *OTPService) SendCode(ctx context.Context, purpose, identifier, toEmail string) error {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" {
		return fmt.Errorf("%w: empty otp identifier", apperrors.ErrValidation)
	}

	// Пауза между отправками через SetNX: ключ живет ровно cooldown
	set, err := s.cacheRepo.SetNX(s.cooldownKey(purpose, identifier), "1", s.resendCooldown)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !set {
		return fmt.Errorf("%w: please wait before requesting a new code", ErrVerificationResendCooldown)
	}

	code, err := generateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate otp code: %w", err)
	}
	salt, err := generateRandomHex(16)
	if err != nil {
		return fmt.Errorf("failed to generate otp salt: %w", err)
	}

	now := time.Now()
	record := otpRecord{
		CodeHash:    hashOTPCode(code, salt, s.codePepper),
		CodeSalt:    salt,
		Attempts:    0,
		MaxAttempts: s.maxAttempts,
		SentAt:      now,
		ExpiresAt:   now.Add(s.codeTTL),
	}
	if err := s.cacheRepo.SetJSON(s.recordKey(purpose, identifier), record, s.codeTTL); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	idempotencyKey := fmt.Sprintf("otp:%s:%s:%d", purpose, identifier, now.Unix())
	if err := s.emailService.SendVerificationCode(ctx, toEmail, code, idempotencyKey); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}

	log.Printf("[OTPService] Отправлен код purpose=%s identifier=%s", purpose, identifier)
	return nil
}

// VerifyCode проверяет код и при успехе сразу удаляет его (одноразовость).
func (s *OTPService) VerifyCode(ctx context.Context, purpose, identifier, code string) error {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("%w: empty verification code", apperrors.ErrValidation)
	}

	key := s.recordKey(purpose, identifier)

	var record otpRecord
	if err := s.cacheRepo.GetJSON(key, &record); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrInvalidVerificationCode
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	now := time.Now()
	if now.After(record.ExpiresAt) {
		return ErrVerificationExpired
	}
	if record.Attempts >= record.MaxAttempts {
		return ErrVerificationAttemptsExceeded
	}

	expectedHash := hashOTPCode(code, record.CodeSalt, s.codePepper)
	if subtle.ConstantTimeCompare([]byte(expectedHash), []byte(record.CodeHash)) != 1 {
		record.Attempts++
		// Записываем счетчик попыток обратно с остатком TTL
		remaining := time.Until(record.ExpiresAt)
		if remaining > 0 {
			if err := s.cacheRepo.SetJSON(key, record, remaining); err != nil {
				log.Printf("[OTPService] Не удалось обновить счетчик попыток: %v", err)
			}
		}
		if record.Attempts >= record.MaxAttempts {
			return ErrVerificationAttemptsExceeded
		}
		return ErrInvalidVerificationCode
	}

	if err := s.cacheRepo.Delete(key); err != nil {
		log.Printf("[OTPService] Не удалось удалить использованный код: %v", err)
	}

	log.Printf("[OTPService] Подтвержден код purpose=%s identifier=%s", purpose, identifier)
	return nil
}

func (s *OTPService) recordKey(purpose, identifier string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, identifier)
}

func (s *OTPService) cooldownKey(purpose, identifier string) string {
	return fmt.Sprintf("otp:cooldown:%s:%s", purpose, identifier)
}

func generateOTPCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashOTPCode(code, salt, pepper string) string {
	sum := sha256.Sum256([]byte(pepper + ":" + salt + ":" + code))
	return hex.EncodeToString(sum[:])
}
