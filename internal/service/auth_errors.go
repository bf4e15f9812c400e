package service

import "errors"

// Auth flow specific errors used by handlers for stable error_type mapping.
var (
	// ErrInvalidAssertion: провайдер отклонил предъявленный credential.
	ErrInvalidAssertion = errors.New("invalid_assertion")

	// ErrProviderUnavailable: провайдер недоступен, credential может быть валидным.
	ErrProviderUnavailable = errors.New("provider_unavailable")

	// ErrAccountConflict: identity не может быть привязана без явного решения
	// пользователя (например, subject уже привязан к другому аккаунту).
	ErrAccountConflict = errors.New("account_conflict")

	// ErrStoreUnavailable: хранилище недоступно, операцию можно повторить.
	ErrStoreUnavailable = errors.New("store_unavailable")

	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInactiveUser       = errors.New("inactive_user")
	ErrEmailTaken         = errors.New("email_taken")

	// ErrLastAuthMethod: нельзя отвязать последний способ входа в аккаунт.
	ErrLastAuthMethod = errors.New("last_auth_method")

	ErrInvalidVerificationCode      = errors.New("invalid_verification_code")
	ErrVerificationExpired          = errors.New("verification_expired")
	ErrVerificationAttemptsExceeded = errors.New("verification_attempts_exceeded")
	ErrVerificationResendCooldown   = errors.New("verification_resend_cooldown")

	ErrInvalidResetToken = errors.New("invalid_reset_token")
)
