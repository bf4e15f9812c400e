package service

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/yourusername/account-api/internal/domain/entity"
	"github.com/yourusername/account-api/internal/service/provider"
)

// ============================================================================
// Общие моки для тестов сервисного слоя
// ============================================================================

// MockUserRepository реализует repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByPhone(phoneNumber string) (*entity.User, error) {
	args := m.Called(phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(userID uint, updates map[string]interface{}) error {
	args := m.Called(userID, updates)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(userID uint, newPassword string) error {
	args := m.Called(userID, newPassword)
	return args.Error(0)
}

func (m *MockUserRepository) MarkEmailVerified(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) MarkPhoneVerified(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) List(limit, offset int) ([]entity.User, int64, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.User), args.Get(1).(int64), args.Error(2)
}

// MockSocialAccountRepository реализует repository.SocialAccountRepository
type MockSocialAccountRepository struct {
	mock.Mock
}

func (m *MockSocialAccountRepository) Create(account *entity.SocialAccount) error {
	args := m.Called(account)
	return args.Error(0)
}

func (m *MockSocialAccountRepository) GetByProviderSubject(providerName, providerUserID string) (*entity.SocialAccount, error) {
	args := m.Called(providerName, providerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SocialAccount), args.Error(1)
}

func (m *MockSocialAccountRepository) GetByUserAndProvider(userID uint, providerName string) (*entity.SocialAccount, error) {
	args := m.Called(userID, providerName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SocialAccount), args.Error(1)
}

func (m *MockSocialAccountRepository) ListByUserID(userID uint) ([]entity.SocialAccount, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.SocialAccount), args.Error(1)
}

func (m *MockSocialAccountRepository) CountByUserID(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSocialAccountRepository) Delete(userID uint, providerName string) error {
	args := m.Called(userID, providerName)
	return args.Error(0)
}

func (m *MockSocialAccountRepository) DeleteByUserID(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

// MockRefreshTokenRepository реализует repository.RefreshTokenRepository
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) CreateToken(token *entity.RefreshToken) (uint, error) {
	args := m.Called(token)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockRefreshTokenRepository) GetTokenByHash(tokenHash string) (*entity.RefreshToken, error) {
	args := m.Called(tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) GetTokenByID(id uint) (*entity.RefreshToken, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) MarkTokenAsExpired(tokenHash string) error {
	args := m.Called(tokenHash)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) MarkTokenAsExpiredByID(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) MarkAllAsExpiredForUser(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) CleanupExpiredTokens() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRefreshTokenRepository) GetActiveTokensForUser(userID uint) ([]*entity.RefreshToken, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) CountTokensForUser(userID uint) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

func (m *MockRefreshTokenRepository) MarkOldestAsExpiredForUser(userID uint, limit int) error {
	args := m.Called(userID, limit)
	return args.Error(0)
}

// stubVerifier возвращает фиксированный результат проверки утверждения
type stubVerifier struct {
	name     string
	identity *provider.Identity
	err      error
}

func (v *stubVerifier) Name() string { return v.name }

func (v *stubVerifier) VerifyAssertion(ctx context.Context, assertion string) (*provider.Identity, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.identity, nil
}
