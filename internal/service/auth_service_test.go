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
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(
	t *testing.T,
	userRepo *MockUserRepository,
	refreshRepo *MockRefreshTokenRepository,
	email *capturingEmailService,
) *AuthService {
	otpService := newTestOTPService(t, newMemoryCache(), email)
	svc, err := NewAuthService(userRepo, mustJWTService(t), newTestTokenManager(t, userRepo, refreshRepo), otpService)
	require.NoError(t, err)
	return svc
}

func hashedTestPassword(t *testing.T, plain string) string {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestAuthService_RegisterUser_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	email := &capturingEmailService{}

	mockUserRepo.On("GetByEmail", "new@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*entity.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.User).ID = 1
	}).Return(nil)

	authService := newTestAuthService(t, mockUserRepo, new(MockRefreshTokenRepository), email)

	// Act
	user, err := authService.RegisterUser(context.Background(), RegisterInput{
		Email:       " New@Example.com ",
		Password:    "password123",
		FullName:    "New User",
		CompanyName: "Acme",
	})

	// Assert
	require.NoError(t, err, "Регистрация должна быть успешной")
	assert.Equal(t, "new@example.com", user.Email, "Email должен быть нормализован")
	assert.True(t, user.PasswordAuthEnabled)
	assert.Equal(t, entity.RoleOwner, user.Role)
	require.NotNil(t, user.TrialExpiredAt)
	assert.True(t, user.TrialExpiredAt.After(time.Now().AddDate(0, 0, 6)), "Триал должен длиться не меньше недели")
	// Код подтверждения email отправлен
	assert.Len(t, email.lastCode, 6)
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUser_DuplicateEmail(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", "existing@example.com").
		Return(&entity.User{ID: 1, Email: "existing@example.com"}, nil)

	authService := newTestAuthService(t, mockUserRepo, new(MockRefreshTokenRepository), &capturingEmailService{})

	// Act
	user, err := authService.RegisterUser(context.Background(), RegisterInput{
		Email:    "existing@example.com",
		Password: "password123",
	})

	// Assert
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Nil(t, user)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_RegisterUser_LostCreateRace(t *testing.T) {
	// Arrange: между проверкой и вставкой email занял параллельный запрос
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", "new@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*entity.User")).Return(apperrors.ErrConflict)

	authService := newTestAuthService(t, mockUserRepo, new(MockRefreshTokenRepository), &capturingEmailService{})

	// Act
	user, err := authService.RegisterUser(context.Background(), RegisterInput{
		Email:    "new@example.com",
		Password: "password123",
	})

	// Assert
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Nil(t, user)
}

func TestAuthService_AuthenticateUser_ValidCredentials(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	user := &entity.User{
		ID:                  1,
		Email:               "user@example.com",
		Password:            hashedTestPassword(t, "correctPassword123"),
		PasswordAuthEnabled: true,
	}
	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)

	authService := newTestAuthService(t, mockUserRepo, new(MockRefreshTokenRepository), &capturingEmailService{})

	// Act
	got, err := authService.AuthenticateUser("user@example.com", "correctPassword123")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID)
}

func TestAuthService_AuthenticateUser_InvalidPassword(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	user := &entity.User{
		ID:                  1,
		Email:               "user@example.com",
		Password:            hashedTestPassword(t, "correctPassword123"),
		PasswordAuthEnabled: true,
	}
	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)

	authService := newTestAuthService(t, mockUserRepo, new(MockRefreshTokenRepository), &capturingEmailService{})

	// Act
	got, err := authService.AuthenticateUser("user@example.com", "wrongPassword")

	// Assert
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, got)
}

func TestAuthService_AuthenticateUser_PasswordAuthDisabled(t *testing.T) {
	// Arrange: у социального аккаунта случайный пароль-заглушка,
	// вход по паролю для него закрыт полностью
	mockUserRepo := new(MockUserRepository)
	user := &entity.User{
		ID:                  1,
		Email:               "user@example.com",
		Password:            hashedTestPassword(t, "placeholder"),
		PasswordAuthEnabled: false,
	}
	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)

	authService := newTestAuthService(t, mockUserRepo, new(MockRefreshTokenRepository), &capturingEmailService{})

	// Act
	got, err := authService.AuthenticateUser("user@example.com", "placeholder")

	// Assert
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, got)
}

func TestAuthService_AuthenticateUser_UnknownEmail(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", "nobody@example.com").Return(nil, apperrors.ErrNotFound)

	authService := newTestAuthService(t, mockUserRepo, new(MockRefreshTokenRepository), &capturingEmailService{})

	// Act
	got, err := authService.AuthenticateUser("nobody@example.com", "password")

	// Assert: неизвестный email и неверный пароль неразличимы
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, got)
}

func TestAuthService_AuthenticateUser_InactiveUser(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	deactivatedAt := time.Now().AddDate(0, 0, -1)
	user := &entity.User{
		ID:                  1,
		Email:               "user@example.com",
		Password:            hashedTestPassword(t, "correctPassword123"),
		PasswordAuthEnabled: true,
		InactiveAt:          &deactivatedAt,
	}
	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)

	authService := newTestAuthService(t, mockUserRepo, new(MockRefreshTokenRepository), &capturingEmailService{})

	// Act
	got, err := authService.AuthenticateUser("user@example.com", "correctPassword123")

	// Assert
	assert.ErrorIs(t, err, ErrInactiveUser)
	assert.Nil(t, got)
}

func TestAuthService_LoginUser_ReturnsTokenPair(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockRefreshRepo := new(MockRefreshTokenRepository)
	user := &entity.User{
		ID:                  1,
		Email:               "user@example.com",
		Password:            hashedTestPassword(t, "correctPassword123"),
		PasswordAuthEnabled: true,
	}
	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)
	mockUserRepo.On("GetByID", uint(1)).Return(user, nil)
	mockRefreshRepo.On("CreateToken", mock.AnythingOfType("*entity.RefreshToken")).Return(uint(1), nil)
	mockRefreshRepo.On("CountTokensForUser", uint(1)).Return(1, nil)

	authService := newTestAuthService(t, mockUserRepo, mockRefreshRepo, &capturingEmailService{})

	// Act
	tokens, err := authService.LoginUser("user@example.com", "correctPassword123", "device-1", "10.0.0.1", "go-test")

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Equal(t, uint(1), tokens.UserID)
}

func TestAuthService_ChangePassword_WrongOldPassword(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	user := &entity.User{
		ID:                  1,
		Email:               "user@example.com",
		Password:            hashedTestPassword(t, "oldPassword123"),
		PasswordAuthEnabled: true,
	}
	mockUserRepo.On("GetByID", uint(1)).Return(user, nil)

	authService := newTestAuthService(t, mockUserRepo, new(MockRefreshTokenRepository), &capturingEmailService{})

	// Act
	err := authService.ChangePassword(1, "wrongOldPassword", "newPassword123")

	// Assert
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	mockUserRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything)
}

func TestAuthService_ChangePassword_SocialAccountSetsFirstPassword(t *testing.T) {
	// Arrange: у социального аккаунта пароля еще нет, старый не требуется
	mockUserRepo := new(MockUserRepository)
	mockRefreshRepo := new(MockRefreshTokenRepository)
	user := &entity.User{
		ID:                  1,
		Email:               "user@example.com",
		Password:            hashedTestPassword(t, "placeholder"),
		PasswordAuthEnabled: false,
	}
	mockUserRepo.On("GetByID", uint(1)).Return(user, nil)
	mockUserRepo.On("UpdatePassword", uint(1), "newPassword123").Return(nil)
	mockRefreshRepo.On("MarkAllAsExpiredForUser", uint(1)).Return(nil)

	authService := newTestAuthService(t, mockUserRepo, mockRefreshRepo, &capturingEmailService{})

	// Act
	err := authService.ChangePassword(1, "", "newPassword123")

	// Assert
	require.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
	mockRefreshRepo.AssertExpectations(t)
}

func TestAuthService_ResetPassword_FullFlow(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockRefreshRepo := new(MockRefreshTokenRepository)
	email := &capturingEmailService{}
	user := &entity.User{ID: 1, Email: "user@example.com", PasswordAuthEnabled: true}

	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)
	mockUserRepo.On("UpdatePassword", uint(1), "brandNewPassword1").Return(nil)
	mockRefreshRepo.On("MarkAllAsExpiredForUser", uint(1)).Return(nil)

	authService := newTestAuthService(t, mockUserRepo, mockRefreshRepo, email)

	// Act: запрашиваем код и применяем его
	require.NoError(t, authService.RequestPasswordReset(context.Background(), "user@example.com"))
	require.Len(t, email.lastCode, 6)
	err := authService.ResetPassword(context.Background(), "user@example.com", email.lastCode, "brandNewPassword1")

	// Assert
	require.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
	mockRefreshRepo.AssertExpectations(t)
}

func TestAuthService_ResetPassword_WrongCode(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	email := &capturingEmailService{}
	user := &entity.User{ID: 1, Email: "user@example.com"}
	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)

	authService := newTestAuthService(t, mockUserRepo, new(MockRefreshTokenRepository), email)
	require.NoError(t, authService.RequestPasswordReset(context.Background(), "user@example.com"))

	// Act
	err := authService.ResetPassword(context.Background(), "user@example.com", "000000", "brandNewPassword1")

	// Assert
	assert.ErrorIs(t, err, ErrInvalidVerificationCode)
	mockUserRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything)
}

func TestAuthService_RequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	email := &capturingEmailService{}
	mockUserRepo.On("GetByEmail", "nobody@example.com").Return(nil, apperrors.ErrNotFound)

	authService := newTestAuthService(t, mockUserRepo, new(MockRefreshTokenRepository), email)

	// Act
	err := authService.RequestPasswordReset(context.Background(), "nobody@example.com")

	// Assert: существование аккаунта не раскрывается
	assert.NoError(t, err)
	assert.Empty(t, email.lastCode)
}

func TestAuthService_ConfirmEmail_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	email := &capturingEmailService{}
	user := &entity.User{ID: 1, Email: "user@example.com"}
	mockUserRepo.On("GetByID", uint(1)).Return(user, nil)
	mockUserRepo.On("MarkEmailVerified", uint(1)).Return(nil)

	authService := newTestAuthService(t, mockUserRepo, new(MockRefreshTokenRepository), email)
	require.NoError(t, authService.SendEmailVerification(context.Background(), 1))

	// Act
	err := authService.ConfirmEmail(context.Background(), 1, email.lastCode)

	// Assert
	require.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_ConfirmEmail_AlreadyVerified(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	verifiedAt := time.Now()
	mockUserRepo.On("GetByID", uint(1)).Return(&entity.User{ID: 1, EmailVerifiedAt: &verifiedAt}, nil)

	authService := newTestAuthService(t, mockUserRepo, new(MockRefreshTokenRepository), &capturingEmailService{})

	// Act
	err := authService.ConfirmEmail(context.Background(), 1, "123456")

	// Assert: подтверждение идемпотентно
	assert.NoError(t, err)
	mockUserRepo.AssertNotCalled(t, "MarkEmailVerified", mock.Anything)
}
