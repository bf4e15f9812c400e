package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/account-api/internal/domain/entity"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
	"github.com/yourusername/account-api/internal/service/provider"
	"github.com/yourusername/account-api/pkg/auth"
	"github.com/yourusername/account-api/pkg/auth/manager"
)

// ============================================================================
// Вспомогательные конструкторы
// ============================================================================

func mustJWTService(t *testing.T) *auth.JWTService {
	jwtService, err := auth.NewJWTService("test-secret-key", 60)
	require.NoError(t, err)
	return jwtService
}

func newTestTokenManager(t *testing.T, userRepo *MockUserRepository, refreshRepo *MockRefreshTokenRepository) *manager.TokenManager {
	tm, err := manager.NewTokenManager(mustJWTService(t), refreshRepo, userRepo)
	require.NoError(t, err)
	return tm
}

func newTestSocialLoginService(
	t *testing.T,
	userRepo *MockUserRepository,
	accountRepo *MockSocialAccountRepository,
	refreshRepo *MockRefreshTokenRepository,
	verifiers ...provider.Verifier,
) *SocialLoginService {
	registry := provider.NewRegistry(verifiers...)
	svc, err := NewSocialLoginService(userRepo, accountRepo, registry, newTestTokenManager(t, userRepo, refreshRepo))
	require.NoError(t, err)
	return svc
}

// expectTokenPair настраивает моки, которые дергает TokenManager при выдаче пары
func expectTokenPair(userRepo *MockUserRepository, refreshRepo *MockRefreshTokenRepository, user *entity.User) {
	userRepo.On("GetByID", user.ID).Return(user, nil)
	refreshRepo.On("CreateToken", mock.AnythingOfType("*entity.RefreshToken")).Return(uint(1), nil)
	refreshRepo.On("CountTokensForUser", user.ID).Return(1, nil)
}

func googleIdentity() *provider.Identity {
	return &provider.Identity{
		Provider:  provider.Google,
		Subject:   "google-sub-1",
		Email:     "user@example.com",
		Name:      "Test User",
		AvatarURL: "https://lh3.example.com/photo.jpg",
	}
}

// ============================================================================
// Login: разрешение личности в пользователя
// ============================================================================

func TestSocialLoginService_Login_ExistingLinkWins(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockAccountRepo := new(MockSocialAccountRepository)
	mockRefreshRepo := new(MockRefreshTokenRepository)

	identity := googleIdentity()
	// Email в токене отличается от email аккаунта: связка все равно выигрывает
	identity.Email = "renamed@example.com"

	linkedUser := &entity.User{ID: 42, Email: "user@example.com"}
	mockAccountRepo.On("GetByProviderSubject", provider.Google, "google-sub-1").
		Return(&entity.SocialAccount{UserID: 42, Provider: provider.Google, ProviderUserID: "google-sub-1"}, nil)
	mockUserRepo.On("UpdateProfile", uint(42), mock.Anything).Return(nil)
	expectTokenPair(mockUserRepo, mockRefreshRepo, linkedUser)

	svc := newTestSocialLoginService(t, mockUserRepo, mockAccountRepo, mockRefreshRepo,
		&stubVerifier{name: provider.Google, identity: identity})

	// Act
	result, err := svc.Login(context.Background(), SocialLoginInput{Provider: "google", Assertion: "token"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(42), result.User.ID)
	assert.False(t, result.IsNewUser)
	assert.NotEmpty(t, result.Token.AccessToken)
	// Поиск по email не должен был выполняться
	mockUserRepo.AssertNotCalled(t, "GetByEmail", mock.Anything)
	mockAccountRepo.AssertExpectations(t)
}

func TestSocialLoginService_Login_AttachesByEmail(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockAccountRepo := new(MockSocialAccountRepository)
	mockRefreshRepo := new(MockRefreshTokenRepository)

	existing := &entity.User{ID: 7, Email: "user@example.com", PasswordAuthEnabled: true}

	mockAccountRepo.On("GetByProviderSubject", provider.Google, "google-sub-1").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("GetByEmail", "user@example.com").Return(existing, nil)
	// У аккаунта нет другой связки с этим провайдером
	mockAccountRepo.On("GetByUserAndProvider", uint(7), provider.Google).Return(nil, apperrors.ErrNotFound)
	mockAccountRepo.On("Create", mock.AnythingOfType("*entity.SocialAccount")).Return(nil)
	mockUserRepo.On("UpdateProfile", uint(7), mock.Anything).Return(nil)
	expectTokenPair(mockUserRepo, mockRefreshRepo, existing)

	svc := newTestSocialLoginService(t, mockUserRepo, mockAccountRepo, mockRefreshRepo,
		&stubVerifier{name: provider.Google, identity: googleIdentity()})

	// Act
	result, err := svc.Login(context.Background(), SocialLoginInput{Provider: "google", Assertion: "token"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(7), result.User.ID)
	assert.False(t, result.IsNewUser)
	mockAccountRepo.AssertCalled(t, "Create", mock.MatchedBy(func(a *entity.SocialAccount) bool {
		return a.UserID == 7 && a.Provider == provider.Google && a.ProviderUserID == "google-sub-1"
	}))
}

func TestSocialLoginService_Login_ProvisionsNewUser(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockAccountRepo := new(MockSocialAccountRepository)
	mockRefreshRepo := new(MockRefreshTokenRepository)

	mockAccountRepo.On("GetByProviderSubject", provider.Google, "google-sub-1").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("GetByEmail", "user@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*entity.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.User).ID = 100
	}).Return(nil)
	mockAccountRepo.On("Create", mock.AnythingOfType("*entity.SocialAccount")).Return(nil)
	mockUserRepo.On("UpdateProfile", uint(100), mock.Anything).Return(nil)
	mockUserRepo.On("GetByID", uint(100)).Return(&entity.User{ID: 100, Email: "user@example.com"}, nil)
	mockRefreshRepo.On("CreateToken", mock.AnythingOfType("*entity.RefreshToken")).Return(uint(1), nil)
	mockRefreshRepo.On("CountTokensForUser", uint(100)).Return(1, nil)

	svc := newTestSocialLoginService(t, mockUserRepo, mockAccountRepo, mockRefreshRepo,
		&stubVerifier{name: provider.Google, identity: googleIdentity()})

	// Act
	result, err := svc.Login(context.Background(), SocialLoginInput{Provider: "google", Assertion: "token"})

	// Assert
	require.NoError(t, err)
	assert.True(t, result.IsNewUser)
	assert.Equal(t, uint(100), result.User.ID)
	// У нового пользователя парольный вход выключен, email подтвержден, триал задан
	mockUserRepo.AssertCalled(t, "Create", mock.MatchedBy(func(u *entity.User) bool {
		return !u.PasswordAuthEnabled && u.EmailVerifiedAt != nil && u.TrialExpiredAt != nil &&
			u.LastLoginProvider == provider.Google
	}))
}

func TestSocialLoginService_Login_PhoneIdentityGetsSyntheticEmail(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockAccountRepo := new(MockSocialAccountRepository)
	mockRefreshRepo := new(MockRefreshTokenRepository)

	identity := &provider.Identity{
		Provider: provider.FirebasePhone,
		Subject:  "firebase-uid-9",
		Phone:    "+15551234567",
	}

	mockAccountRepo.On("GetByProviderSubject", provider.FirebasePhone, "firebase-uid-9").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("GetByPhone", "+15551234567").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*entity.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.User).ID = 200
	}).Return(nil)
	mockAccountRepo.On("Create", mock.AnythingOfType("*entity.SocialAccount")).Return(nil)
	mockUserRepo.On("UpdateProfile", uint(200), mock.Anything).Return(nil)
	mockUserRepo.On("GetByID", uint(200)).Return(&entity.User{ID: 200}, nil)
	mockRefreshRepo.On("CreateToken", mock.AnythingOfType("*entity.RefreshToken")).Return(uint(1), nil)
	mockRefreshRepo.On("CountTokensForUser", uint(200)).Return(1, nil)

	svc := newTestSocialLoginService(t, mockUserRepo, mockAccountRepo, mockRefreshRepo,
		&stubVerifier{name: provider.FirebasePhone, identity: identity})

	// Act
	result, err := svc.Login(context.Background(), SocialLoginInput{Provider: "firebase_phone", Assertion: "id-token"})

	// Assert
	require.NoError(t, err)
	assert.True(t, result.IsNewUser)
	mockUserRepo.AssertCalled(t, "Create", mock.MatchedBy(func(u *entity.User) bool {
		return u.Email == "firebase-uid-9@firebase_phone.local" &&
			u.PhoneNumber != nil && *u.PhoneNumber == "+15551234567" &&
			u.PhoneVerifiedAt != nil && u.EmailVerifiedAt == nil
	}))
}

func TestSocialLoginService_Login_ConflictOnDifferentSubjectSameProvider(t *testing.T) {
	// Arrange: аккаунт с этим email уже держит другую связку Google
	mockUserRepo := new(MockUserRepository)
	mockAccountRepo := new(MockSocialAccountRepository)
	mockRefreshRepo := new(MockRefreshTokenRepository)

	existing := &entity.User{ID: 7, Email: "user@example.com"}

	mockAccountRepo.On("GetByProviderSubject", provider.Google, "google-sub-1").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("GetByEmail", "user@example.com").Return(existing, nil)
	mockAccountRepo.On("GetByUserAndProvider", uint(7), provider.Google).
		Return(&entity.SocialAccount{UserID: 7, Provider: provider.Google, ProviderUserID: "other-sub"}, nil)

	svc := newTestSocialLoginService(t, mockUserRepo, mockAccountRepo, mockRefreshRepo,
		&stubVerifier{name: provider.Google, identity: googleIdentity()})

	// Act
	result, err := svc.Login(context.Background(), SocialLoginInput{Provider: "google", Assertion: "token"})

	// Assert
	assert.ErrorIs(t, err, ErrAccountConflict)
	assert.Nil(t, result)
	mockAccountRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestSocialLoginService_Login_LostInsertRaceFollowsWinner(t *testing.T) {
	// Arrange: вставка связки упирается в unique violation,
	// повторное чтение возвращает победителя гонки
	mockUserRepo := new(MockUserRepository)
	mockAccountRepo := new(MockSocialAccountRepository)
	mockRefreshRepo := new(MockRefreshTokenRepository)

	winner := &entity.User{ID: 55, Email: "user@example.com"}

	mockAccountRepo.On("GetByProviderSubject", provider.Google, "google-sub-1").
		Return(nil, apperrors.ErrNotFound).Once()
	mockUserRepo.On("GetByEmail", "user@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*entity.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.User).ID = 56
	}).Return(nil)
	mockAccountRepo.On("Create", mock.AnythingOfType("*entity.SocialAccount")).Return(apperrors.ErrConflict)
	// Перечитывание после проигранной гонки находит строку победителя
	mockAccountRepo.On("GetByProviderSubject", provider.Google, "google-sub-1").
		Return(&entity.SocialAccount{UserID: 55, Provider: provider.Google, ProviderUserID: "google-sub-1"}, nil).Once()
	mockUserRepo.On("GetByID", uint(55)).Return(winner, nil)
	mockUserRepo.On("UpdateProfile", uint(55), mock.Anything).Return(nil)
	mockRefreshRepo.On("CreateToken", mock.AnythingOfType("*entity.RefreshToken")).Return(uint(1), nil)
	mockRefreshRepo.On("CountTokensForUser", uint(55)).Return(1, nil)

	svc := newTestSocialLoginService(t, mockUserRepo, mockAccountRepo, mockRefreshRepo,
		&stubVerifier{name: provider.Google, identity: googleIdentity()})

	// Act
	result, err := svc.Login(context.Background(), SocialLoginInput{Provider: "google", Assertion: "token"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(55), result.User.ID)
	assert.False(t, result.IsNewUser, "проигравший гонку не должен считаться создателем аккаунта")
}

func TestSocialLoginService_Login_RepeatedFirstLoginConvergesToOneUser(t *testing.T) {
	// Arrange: два входа одного и того же удостоверения подряд.
	// Первый создает пользователя и связку, второй должен найти связку
	// и ничего не создавать.
	mockUserRepo := new(MockUserRepository)
	mockAccountRepo := new(MockSocialAccountRepository)
	mockRefreshRepo := new(MockRefreshTokenRepository)

	created := &entity.User{ID: 100, Email: "user@example.com"}

	mockAccountRepo.On("GetByProviderSubject", provider.Google, "google-sub-1").
		Return(nil, apperrors.ErrNotFound).Once()
	mockUserRepo.On("GetByEmail", "user@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*entity.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.User).ID = 100
	}).Return(nil).Once()
	mockAccountRepo.On("Create", mock.AnythingOfType("*entity.SocialAccount")).Return(nil).Once()
	// Второй вход видит уже существующую связку
	mockAccountRepo.On("GetByProviderSubject", provider.Google, "google-sub-1").
		Return(&entity.SocialAccount{UserID: 100, Provider: provider.Google, ProviderUserID: "google-sub-1"}, nil)
	mockUserRepo.On("UpdateProfile", uint(100), mock.Anything).Return(nil)
	mockUserRepo.On("GetByID", uint(100)).Return(created, nil)
	mockRefreshRepo.On("CreateToken", mock.AnythingOfType("*entity.RefreshToken")).Return(uint(1), nil)
	mockRefreshRepo.On("CountTokensForUser", uint(100)).Return(1, nil)

	svc := newTestSocialLoginService(t, mockUserRepo, mockAccountRepo, mockRefreshRepo,
		&stubVerifier{name: provider.Google, identity: googleIdentity()})

	// Act
	first, err := svc.Login(context.Background(), SocialLoginInput{Provider: "google", Assertion: "token"})
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), SocialLoginInput{Provider: "google", Assertion: "token"})
	require.NoError(t, err)

	// Assert: оба входа сходятся к одному пользователю, создание ровно одно
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.True(t, first.IsNewUser)
	assert.False(t, second.IsNewUser)
	mockUserRepo.AssertNumberOfCalls(t, "Create", 1)
	mockAccountRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestSocialLoginService_Login_VanishedLinkAfterConflict(t *testing.T) {
	// Arrange: unique violation, но перечитывание строку не находит
	mockUserRepo := new(MockUserRepository)
	mockAccountRepo := new(MockSocialAccountRepository)
	mockRefreshRepo := new(MockRefreshTokenRepository)

	mockAccountRepo.On("GetByProviderSubject", provider.Google, "google-sub-1").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("GetByEmail", "user@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*entity.User")).Return(nil)
	mockAccountRepo.On("Create", mock.AnythingOfType("*entity.SocialAccount")).Return(apperrors.ErrConflict)

	svc := newTestSocialLoginService(t, mockUserRepo, mockAccountRepo, mockRefreshRepo,
		&stubVerifier{name: provider.Google, identity: googleIdentity()})

	// Act
	result, err := svc.Login(context.Background(), SocialLoginInput{Provider: "google", Assertion: "token"})

	// Assert: однократный повтор исчерпан, наружу выходит ошибка хранилища
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Nil(t, result)
}

func TestSocialLoginService_Login_InactiveUser(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockAccountRepo := new(MockSocialAccountRepository)
	mockRefreshRepo := new(MockRefreshTokenRepository)

	deactivatedAt := time.Now().AddDate(0, 0, -30)
	inactive := &entity.User{ID: 42, Email: "user@example.com", InactiveAt: &deactivatedAt}
	mockAccountRepo.On("GetByProviderSubject", provider.Google, "google-sub-1").
		Return(&entity.SocialAccount{UserID: 42, Provider: provider.Google, ProviderUserID: "google-sub-1"}, nil)
	mockUserRepo.On("GetByID", uint(42)).Return(inactive, nil)

	svc := newTestSocialLoginService(t, mockUserRepo, mockAccountRepo, mockRefreshRepo,
		&stubVerifier{name: provider.Google, identity: googleIdentity()})

	// Act
	result, err := svc.Login(context.Background(), SocialLoginInput{Provider: "google", Assertion: "token"})

	// Assert
	assert.ErrorIs(t, err, ErrInactiveUser)
	assert.Nil(t, result)
	mockRefreshRepo.AssertNotCalled(t, "CreateToken", mock.Anything)
}

func TestSocialLoginService_Login_InvalidAssertion(t *testing.T) {
	// Arrange
	svc := newTestSocialLoginService(t,
		new(MockUserRepository), new(MockSocialAccountRepository), new(MockRefreshTokenRepository),
		&stubVerifier{name: provider.Google, err: provider.ErrInvalidAssertion})

	// Act
	result, err := svc.Login(context.Background(), SocialLoginInput{Provider: "google", Assertion: "garbage"})

	// Assert
	assert.ErrorIs(t, err, ErrInvalidAssertion)
	assert.Nil(t, result)
}

func TestSocialLoginService_Login_ProviderUnavailable(t *testing.T) {
	// Arrange
	svc := newTestSocialLoginService(t,
		new(MockUserRepository), new(MockSocialAccountRepository), new(MockRefreshTokenRepository),
		&stubVerifier{name: provider.Google, err: provider.ErrUnavailable})

	// Act
	result, err := svc.Login(context.Background(), SocialLoginInput{Provider: "google", Assertion: "token"})

	// Assert
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Nil(t, result)
}

func TestSocialLoginService_Login_UnknownProvider(t *testing.T) {
	// Arrange
	svc := newTestSocialLoginService(t,
		new(MockUserRepository), new(MockSocialAccountRepository), new(MockRefreshTokenRepository),
		&stubVerifier{name: provider.Google, identity: googleIdentity()})

	// Act
	result, err := svc.Login(context.Background(), SocialLoginInput{Provider: "myspace", Assertion: "token"})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Nil(t, result)
}

// ============================================================================
// Link / Unlink
// ============================================================================

func TestSocialLoginService_Link_Success(t *testing.T) {
	// Arrange
	mockAccountRepo := new(MockSocialAccountRepository)
	mockAccountRepo.On("GetByProviderSubject", provider.Google, "google-sub-1").Return(nil, apperrors.ErrNotFound)
	mockAccountRepo.On("Create", mock.AnythingOfType("*entity.SocialAccount")).Return(nil)

	svc := newTestSocialLoginService(t,
		new(MockUserRepository), mockAccountRepo, new(MockRefreshTokenRepository),
		&stubVerifier{name: provider.Google, identity: googleIdentity()})

	// Act
	err := svc.Link(context.Background(), 7, "google", "token")

	// Assert
	require.NoError(t, err)
	mockAccountRepo.AssertExpectations(t)
}

func TestSocialLoginService_Link_SubjectOwnedByAnotherUser(t *testing.T) {
	// Arrange
	mockAccountRepo := new(MockSocialAccountRepository)
	mockAccountRepo.On("GetByProviderSubject", provider.Google, "google-sub-1").
		Return(&entity.SocialAccount{UserID: 99, Provider: provider.Google, ProviderUserID: "google-sub-1"}, nil)

	svc := newTestSocialLoginService(t,
		new(MockUserRepository), mockAccountRepo, new(MockRefreshTokenRepository),
		&stubVerifier{name: provider.Google, identity: googleIdentity()})

	// Act
	err := svc.Link(context.Background(), 7, "google", "token")

	// Assert
	assert.ErrorIs(t, err, ErrAccountConflict)
	mockAccountRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestSocialLoginService_Link_RaceOnInsert(t *testing.T) {
	// Arrange: между проверкой и вставкой subject привязал кто-то другой
	mockAccountRepo := new(MockSocialAccountRepository)
	mockAccountRepo.On("GetByProviderSubject", provider.Google, "google-sub-1").Return(nil, apperrors.ErrNotFound)
	mockAccountRepo.On("Create", mock.AnythingOfType("*entity.SocialAccount")).Return(apperrors.ErrConflict)

	svc := newTestSocialLoginService(t,
		new(MockUserRepository), mockAccountRepo, new(MockRefreshTokenRepository),
		&stubVerifier{name: provider.Google, identity: googleIdentity()})

	// Act
	err := svc.Link(context.Background(), 7, "google", "token")

	// Assert
	assert.ErrorIs(t, err, ErrAccountConflict)
}

func TestSocialLoginService_Unlink_LastAuthMethodProtected(t *testing.T) {
	// Arrange: пароль выключен и связка единственная
	mockUserRepo := new(MockUserRepository)
	mockAccountRepo := new(MockSocialAccountRepository)

	mockUserRepo.On("GetByID", uint(7)).Return(&entity.User{ID: 7, PasswordAuthEnabled: false}, nil)
	mockAccountRepo.On("CountByUserID", uint(7)).Return(int64(1), nil)

	svc := newTestSocialLoginService(t,
		mockUserRepo, mockAccountRepo, new(MockRefreshTokenRepository),
		&stubVerifier{name: provider.Google, identity: googleIdentity()})

	// Act
	err := svc.Unlink(context.Background(), 7, "google")

	// Assert
	assert.ErrorIs(t, err, ErrLastAuthMethod)
	mockAccountRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSocialLoginService_Unlink_AllowedWithPassword(t *testing.T) {
	// Arrange: парольный вход включен, единственную связку можно отвязать
	mockUserRepo := new(MockUserRepository)
	mockAccountRepo := new(MockSocialAccountRepository)

	mockUserRepo.On("GetByID", uint(7)).Return(&entity.User{ID: 7, PasswordAuthEnabled: true}, nil)
	mockAccountRepo.On("Delete", uint(7), "google").Return(nil)

	svc := newTestSocialLoginService(t,
		mockUserRepo, mockAccountRepo, new(MockRefreshTokenRepository),
		&stubVerifier{name: provider.Google, identity: googleIdentity()})

	// Act
	err := svc.Unlink(context.Background(), 7, "google")

	// Assert
	require.NoError(t, err)
	mockAccountRepo.AssertNotCalled(t, "CountByUserID", mock.Anything)
}

func TestSocialLoginService_Unlink_UnknownLink(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockAccountRepo := new(MockSocialAccountRepository)

	mockUserRepo.On("GetByID", uint(7)).Return(&entity.User{ID: 7, PasswordAuthEnabled: true}, nil)
	mockAccountRepo.On("Delete", uint(7), "google").Return(apperrors.ErrNotFound)

	svc := newTestSocialLoginService(t,
		mockUserRepo, mockAccountRepo, new(MockRefreshTokenRepository),
		&stubVerifier{name: provider.Google, identity: googleIdentity()})

	// Act
	err := svc.Unlink(context.Background(), 7, "google")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
