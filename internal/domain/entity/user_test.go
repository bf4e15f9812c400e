package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// mockTx создаёт минимальный мок для передачи в BeforeSave
// В реальности BeforeSave не использует tx напрямую, но сигнатура требует его
var mockTx *gorm.DB = nil

func TestUser_BeforeSave_HashesPassword(t *testing.T) {
	// Arrange: создаём пользователя с открытым паролем
	plainPassword := "mySecretPassword123"
	user := &User{
		Email:    "test@example.com",
		Password: plainPassword,
	}

	// Act: вызываем BeforeSave
	err := user.BeforeSave(mockTx)

	// Assert: пароль должен быть хеширован
	require.NoError(t, err, "BeforeSave не должен возвращать ошибку")
	assert.NotEqual(t, plainPassword, user.Password, "Пароль должен быть изменён после хеширования")
	assert.True(t, len(user.Password) > 50, "Хеш bcrypt должен быть длиннее 50 символов")

	// Проверяем, что пароль действительно bcrypt-хеш
	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(plainPassword))
	assert.NoError(t, err, "Хеш должен соответствовать исходному паролю")
}

func TestUser_BeforeSave_SkipsAlreadyHashedPassword(t *testing.T) {
	// Arrange: создаём пользователя с уже хешированным паролем
	plainPassword := "alreadyHashed"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &User{
		Email:    "test@example.com",
		Password: string(hashedPassword),
	}
	originalHash := user.Password

	// Act: вызываем BeforeSave
	err = user.BeforeSave(mockTx)

	// Assert: пароль не должен измениться (нет двойного хеширования)
	require.NoError(t, err, "BeforeSave не должен возвращать ошибку")
	assert.Equal(t, originalHash, user.Password, "Уже хешированный пароль не должен изменяться")
}

func TestUser_BeforeSave_SkipsEmptyPassword(t *testing.T) {
	// Arrange: социальный аккаунт без пароля
	user := &User{
		Email:    "test@example.com",
		Password: "",
	}

	// Act: вызываем BeforeSave
	err := user.BeforeSave(mockTx)

	// Assert: пароль должен остаться пустым
	require.NoError(t, err, "BeforeSave не должен возвращать ошибку для пустого пароля")
	assert.Equal(t, "", user.Password, "Пустой пароль должен оставаться пустым")
}

func TestUser_CheckPassword_CorrectPassword(t *testing.T) {
	// Arrange: создаём пользователя и хешируем его пароль
	plainPassword := "correctPassword123"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &User{
		Email:    "test@example.com",
		Password: string(hashedPassword),
	}

	// Act & Assert: правильный пароль должен вернуть true
	result := user.CheckPassword(plainPassword)
	assert.True(t, result, "CheckPassword должен вернуть true для правильного пароля")
}

func TestUser_CheckPassword_IncorrectPassword(t *testing.T) {
	// Arrange: создаём пользователя и хешируем его пароль
	correctPassword := "correctPassword123"
	wrongPassword := "wrongPassword456"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(correctPassword), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &User{
		Email:    "test@example.com",
		Password: string(hashedPassword),
	}

	// Act & Assert: неправильный пароль должен вернуть false
	result := user.CheckPassword(wrongPassword)
	assert.False(t, result, "CheckPassword должен вернуть false для неправильного пароля")
}

func TestUser_CheckPassword_NoPasswordAuth(t *testing.T) {
	// Arrange: пользователь создан через социальный вход, пароля нет
	user := &User{
		Email:    "social@example.com",
		Password: "",
	}

	// Act & Assert: проверка пароля всегда false
	assert.False(t, user.CheckPassword("anything"), "CheckPassword должен вернуть false при отсутствии хеша")
	assert.False(t, user.CheckPassword(""), "CheckPassword должен вернуть false для пустого пароля")
}

func TestUser_IsActive(t *testing.T) {
	// Arrange
	now := time.Now()
	active := &User{Email: "a@example.com"}
	inactive := &User{Email: "b@example.com", InactiveAt: &now}

	// Act & Assert
	assert.True(t, active.IsActive(), "Пользователь без InactiveAt должен быть активен")
	assert.False(t, inactive.IsActive(), "Пользователь с InactiveAt должен быть неактивен")
}

func TestUser_TableName(t *testing.T) {
	// Arrange
	user := User{}

	// Act & Assert
	assert.Equal(t, "users", user.TableName(), "TableName должен возвращать 'users'")
}
