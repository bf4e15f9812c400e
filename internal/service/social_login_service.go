package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/account-api/internal/domain/entity"
	"github.com/yourusername/account-api/internal/domain/repository"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
	"github.com/yourusername/account-api/internal/service/provider"
	"github.com/yourusername/account-api/pkg/auth/manager"
)

// SocialLoginInput carries one social sign-in attempt.
type SocialLoginInput struct {
	Provider  string
	Assertion string
	DeviceID  string
	IPAddress string
	UserAgent string
}

// SocialLoginResult is the outcome of a successful sign-in: the resolved
// user and a fresh token pair. IsNewUser is true when the account was
// provisioned by this call.
type SocialLoginResult struct {
	User      *entity.User
	Token     *manager.TokenResponse
	IsNewUser bool
}

// SocialLoginService resolves verified provider identities to local accounts.
//
// The resolution order is fixed: existing link by (provider, subject) wins;
// otherwise the provider identifier (email or phone) attaches the identity to
// an existing account; otherwise a new account is provisioned. The link row
// is the source of truth: once created, the identity always resolves to that
// user regardless of later email changes.
type SocialLoginService struct {
	userRepo     repository.UserRepository
	accountRepo  repository.SocialAccountRepository
	registry     *provider.Registry
	tokenManager *manager.TokenManager
}

func NewSocialLoginService(
	userRepo repository.UserRepository,
	accountRepo repository.SocialAccountRepository,
	registry *provider.Registry,
	tokenManager *manager.TokenManager,
) (*SocialLoginService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if accountRepo == nil {
		return nil, fmt.Errorf("social account repository is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("provider registry is required")
	}
	if tokenManager == nil {
		return nil, fmt.Errorf("token manager is required")
	}
	return &SocialLoginService{
		userRepo:     userRepo,
		accountRepo:  accountRepo,
		registry:     registry,
		tokenManager: tokenManager,
	}, nil
}

// Login verifies the assertion and resolves it to a user, creating the user
// and/or the link as needed. Exactly one user ends up owning the
// (provider, subject) pair even under concurrent identical requests: the
// database uniqueness constraint decides the winner and the loser re-reads.
func (s *SocialLoginService) Login(ctx context.Context, input SocialLoginInput) (*SocialLoginResult, error) {
	identity, err := s.verify(ctx, input.Provider, input.Assertion)
	if err != nil {
		return nil, err
	}

	user, isNew, err := s.resolveUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	if !user.IsActive() {
		return nil, ErrInactiveUser
	}

	// Обновляем провайдера последнего входа и аватар, если его не было
	updates := map[string]interface{}{"last_login_provider": identity.Provider}
	if user.AvatarURL == "" && identity.AvatarURL != "" {
		updates["avatar_url"] = identity.AvatarURL
	}
	if err := s.userRepo.UpdateProfile(user.ID, updates); err != nil {
		log.Printf("[SocialLoginService] Не удалось обновить профиль после входа user_id=%d: %v", user.ID, err)
	}

	tokenResp, err := s.tokenManager.GenerateTokenPair(user.ID, input.DeviceID, input.IPAddress, input.UserAgent)
	if err != nil {
		return nil, err
	}

	log.Printf("[SocialLoginService] Вход через %s: user_id=%d subject=%s new=%t",
		identity.Provider, user.ID, identity.Subject, isNew)

	return &SocialLoginResult{User: user, Token: tokenResp, IsNewUser: isNew}, nil
}

// Link attaches a verified identity to an already authenticated user.
// A subject owned by another account is refused, never silently re-homed.
func (s *SocialLoginService) Link(ctx context.Context, userID uint, providerName, assertion string) error {
	identity, err := s.verify(ctx, providerName, assertion)
	if err != nil {
		return err
	}

	existing, err := s.accountRepo.GetByProviderSubject(identity.Provider, identity.Subject)
	if err == nil && existing != nil {
		if existing.UserID == userID {
			return fmt.Errorf("%w: this %s account is already linked", ErrAccountConflict, identity.Provider)
		}
		return fmt.Errorf("%w: this %s account is linked to another user", ErrAccountConflict, identity.Provider)
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	account := newLink(userID, identity)
	if err := s.accountRepo.Create(account); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Гонка с параллельным связыванием того же subject
			return fmt.Errorf("%w: this %s account was just linked elsewhere", ErrAccountConflict, identity.Provider)
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	log.Printf("[SocialLoginService] Привязан %s аккаунт к user_id=%d", identity.Provider, userID)
	return nil
}

// Unlink removes a provider link. The last way into the account is protected:
// a user with no password cannot drop their only remaining link.
func (s *SocialLoginService) Unlink(ctx context.Context, userID uint, providerName string) error {
	if _, err := s.registry.Get(providerName); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if !user.PasswordAuthEnabled {
		count, err := s.accountRepo.CountByUserID(userID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if count <= 1 {
			return ErrLastAuthMethod
		}
	}

	if err := s.accountRepo.Delete(userID, providerName); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	log.Printf("[SocialLoginService] Отвязан %s аккаунт от user_id=%d", providerName, userID)
	return nil
}

// ListAccounts returns the user's provider links.
func (s *SocialLoginService) ListAccounts(ctx context.Context, userID uint) ([]entity.SocialAccount, error) {
	accounts, err := s.accountRepo.ListByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return accounts, nil
}

func (s *SocialLoginService) verify(ctx context.Context, providerName, assertion string) (*provider.Identity, error) {
	verifier, err := s.registry.Get(providerName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	identity, err := verifier.VerifyAssertion(ctx, assertion)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrInvalidAssertion):
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
		case errors.Is(err, provider.ErrUnavailable):
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
	}
	return identity, nil
}

// resolveUser maps a verified identity to a user via link, identifier or
// provisioning, in that order.
func (s *SocialLoginService) resolveUser(ctx context.Context, identity *provider.Identity) (*entity.User, bool, error) {
	// 1. Существующая связка (provider, subject) всегда выигрывает
	user, err := s.userByLink(identity)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}

	// 2. Поиск аккаунта по идентификатору (email или телефон)
	user, err = s.userByIdentifier(identity)
	if err == nil {
		// Тот же провайдер с другим subject уже привязан: молча переиспользовать
		// аккаунт нельзя, это почти наверняка чужая учетная запись провайдера.
		held, heldErr := s.accountRepo.GetByUserAndProvider(user.ID, identity.Provider)
		if heldErr == nil && held.ProviderUserID != identity.Subject {
			return nil, false, fmt.Errorf("%w: account already holds a different %s identity",
				ErrAccountConflict, identity.Provider)
		}
		if heldErr != nil && !errors.Is(heldErr, apperrors.ErrNotFound) {
			return nil, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, heldErr)
		}

		linkedUser, linkErr := s.createLink(user, identity)
		if linkErr != nil {
			return nil, false, linkErr
		}
		return linkedUser, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}

	// 3. Ни связки, ни аккаунта: создаем нового пользователя
	user, err = s.provisionUser(identity)
	if err != nil {
		return nil, false, err
	}

	linkedUser, linkErr := s.createLink(user, identity)
	if linkErr != nil {
		return nil, false, linkErr
	}
	if linkedUser.ID != user.ID {
		// Связку успел создать параллельный запрос: наш свежий аккаунт проиграл гонку
		return linkedUser, false, nil
	}
	return user, true, nil
}

// createLink inserts the link row. A unique violation means a concurrent
// request created the same link first: re-read once and follow the winner.
func (s *SocialLoginService) createLink(user *entity.User, identity *provider.Identity) (*entity.User, error) {
	account := newLink(user.ID, identity)
	err := s.accountRepo.Create(account)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrConflict) {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	log.Printf("[SocialLoginService] Проиграна гонка вставки связки %s/%s, перечитываем",
		identity.Provider, identity.Subject)

	winner, reErr := s.userByLink(identity)
	if reErr != nil {
		if errors.Is(reErr, apperrors.ErrNotFound) {
			// Уникальное нарушение без видимой строки: однократный повтор исчерпан
			return nil, fmt.Errorf("%w: link row vanished after unique violation", ErrStoreUnavailable)
		}
		return nil, reErr
	}
	return winner, nil
}

func (s *SocialLoginService) userByLink(identity *provider.Identity) (*entity.User, error) {
	account, err := s.accountRepo.GetByProviderSubject(identity.Provider, identity.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	user, err := s.userRepo.GetByID(account.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Связка указывает на несуществующего пользователя
			return nil, fmt.Errorf("%w: link points to missing user id=%d", ErrStoreUnavailable, account.UserID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return user, nil
}

func (s *SocialLoginService) userByIdentifier(identity *provider.Identity) (*entity.User, error) {
	var (
		user *entity.User
		err  error
	)
	switch {
	case identity.Email != "":
		user, err = s.userRepo.GetByEmail(identity.Email)
	case identity.Phone != "":
		user, err = s.userRepo.GetByPhone(identity.Phone)
	default:
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return user, nil
}

// provisionUser creates a local account for a first-time social identity.
func (s *SocialLoginService) provisionUser(identity *provider.Identity) (*entity.User, error) {
	email := identity.Email
	if email == "" {
		// Провайдер не отдал email (firebase_phone): синтезируем локальный
		email = fmt.Sprintf("%s@%s.local", identity.Subject, identity.Provider)
	}

	randomPassword, err := generateRandomHex(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate placeholder password: %w", err)
	}

	now := time.Now()
	user := &entity.User{
		Email:               email,
		Password:            randomPassword,
		PasswordAuthEnabled: false,
		FullName:            identity.Name,
		AvatarURL:           identity.AvatarURL,
		LastLoginProvider:   identity.Provider,
		TrialExpiredAt:      trialDeadline(now),
	}
	if identity.Email != "" {
		user.EmailVerifiedAt = &now
	}
	if identity.Phone != "" {
		phone := identity.Phone
		user.PhoneNumber = &phone
		user.PhoneVerifiedAt = &now
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Параллельный запрос успел создать пользователя с тем же идентификатором
			existing, reErr := s.userByIdentifier(identity)
			if reErr != nil {
				if errors.Is(reErr, apperrors.ErrNotFound) {
					return nil, fmt.Errorf("%w: user row vanished after unique violation", ErrStoreUnavailable)
				}
				return nil, reErr
			}
			return existing, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return user, nil
}

func newLink(userID uint, identity *provider.Identity) *entity.SocialAccount {
	now := time.Now()
	return &entity.SocialAccount{
		UserID:         userID,
		Provider:       identity.Provider,
		ProviderUserID: identity.Subject,
		ProviderEmail:  identity.Email,
		ProviderPhone:  identity.Phone,
		LinkedAt:       now,
		CreatedAt:      now,
	}
}
