package config

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Auth      AuthConfig
	OTP       OTPConfig
	Email     EmailConfig
	Providers ProvidersConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single' (для обратной совместимости).
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// JWTConfig содержит настройки подписи access-токенов
type JWTConfig struct {
	// Secret — ключ для подписи HS256. Обязателен.
	Secret string `mapstructure:"secret"`

	// ExpirationMins — время жизни access-токена в минутах.
	ExpirationMins int `mapstructure:"expirationMins"`
}

// AuthConfig содержит настройки аутентификации
type AuthConfig struct {
	// SessionLimit — максимум одновременных refresh-сессий на пользователя
	SessionLimit int `mapstructure:"sessionLimit"`

	// RefreshTokenLifetime — время жизни refresh-токена в днях
	RefreshTokenLifetime int `mapstructure:"refreshTokenLifetime"`
}

// OTPConfig содержит настройки одноразовых кодов
type OTPConfig struct {
	// TTLMinutes — время жизни кода
	TTLMinutes int `mapstructure:"ttlMinutes"`

	// MaxAttempts — максимальное число попыток проверки одного кода
	MaxAttempts int `mapstructure:"maxAttempts"`

	// ResendCooldownSec — пауза между повторными отправками
	ResendCooldownSec int `mapstructure:"resendCooldownSec"`

	// Pepper — серверный секрет, подмешиваемый в хеш кода.
	// Если не задан, используется JWT secret.
	Pepper string `mapstructure:"pepper"`
}

// EmailConfig содержит настройки отправки писем через Resend
type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

// ProvidersConfig содержит настройки внешних провайдеров входа
type ProvidersConfig struct {
	Google        GoogleProviderConfig   `mapstructure:"google"`
	Facebook      FacebookProviderConfig `mapstructure:"facebook"`
	FirebasePhone FirebaseProviderConfig `mapstructure:"firebase_phone"`
}

// GoogleProviderConfig — Google OAuth2 userinfo
type GoogleProviderConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	UserInfoURL string `mapstructure:"userinfo_url"`
}

// FacebookProviderConfig — Facebook Graph API
type FacebookProviderConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	UserInfoURL string `mapstructure:"userinfo_url"`
}

// FirebaseProviderConfig — Firebase phone auth (ID token против сертификатов securetoken)
type FirebaseProviderConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
	CertsURL  string `mapstructure:"certs_url"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из файла
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// Привязываем переменные окружения ЯВНО
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expirationMins", "JWT_EXPIRATIONMINS")

	vip.BindEnv("auth.sessionLimit", "AUTH_SESSIONLIMIT")
	vip.BindEnv("auth.refreshTokenLifetime", "AUTH_REFRESHTOKENLIFETIME")

	vip.BindEnv("otp.ttlMinutes", "OTP_TTLMINUTES")
	vip.BindEnv("otp.maxAttempts", "OTP_MAXATTEMPTS")
	vip.BindEnv("otp.resendCooldownSec", "OTP_RESENDCOOLDOWNSEC")
	vip.BindEnv("otp.pepper", "OTP_PEPPER")

	vip.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from_address", "EMAIL_FROM_ADDRESS")
	vip.BindEnv("email.from_name", "EMAIL_FROM_NAME")

	vip.BindEnv("providers.google.enabled", "PROVIDERS_GOOGLE_ENABLED")
	vip.BindEnv("providers.facebook.enabled", "PROVIDERS_FACEBOOK_ENABLED")
	vip.BindEnv("providers.firebase_phone.enabled", "PROVIDERS_FIREBASE_PHONE_ENABLED")
	vip.BindEnv("providers.firebase_phone.project_id", "FIREBASE_PROJECT_ID")

	vip.BindEnv("server.port", "SERVER_PORT")

	// Устанавливаем путь к файлу конфигурации
	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Не страшно, если файла нет: есть BindEnv
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// Анмаршалим конфигурацию (Viper объединит значения из файла и привязанных env vars)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	// Логирование конфигурации (только в debug режиме)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s", cfg.Redis.Addr)
		log.Printf("Redis Mode: %s", cfg.Redis.Mode)
		log.Printf("JWT Secret Set: %t", cfg.JWT.Secret != "")
		log.Printf("JWT Expiration Minutes: %d", cfg.JWT.ExpirationMins)
		log.Printf("Session Limit: %d", cfg.Auth.SessionLimit)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	// Проверка обязательных параметров
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT secret is required in config (check JWT_SECRET env var)")
	}
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" && cfg.Database.Password == "" {
		return nil, fmt.Errorf("database password is required in production mode (check DATABASE_PASSWORD env var)")
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.JWT.ExpirationMins == 0 {
		cfg.JWT.ExpirationMins = 60
	}
	if cfg.Auth.SessionLimit == 0 {
		cfg.Auth.SessionLimit = 10
	}
	if cfg.Auth.RefreshTokenLifetime == 0 {
		cfg.Auth.RefreshTokenLifetime = 30
	}
	if cfg.OTP.TTLMinutes == 0 {
		cfg.OTP.TTLMinutes = 10
	}
	if cfg.OTP.MaxAttempts == 0 {
		cfg.OTP.MaxAttempts = 5
	}
	if cfg.OTP.ResendCooldownSec == 0 {
		cfg.OTP.ResendCooldownSec = 60
	}
	if cfg.Providers.Google.UserInfoURL == "" {
		cfg.Providers.Google.UserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
	}
	if cfg.Providers.Facebook.UserInfoURL == "" {
		cfg.Providers.Facebook.UserInfoURL = "https://graph.facebook.com/me"
	}
	if cfg.Providers.FirebasePhone.CertsURL == "" {
		cfg.Providers.FirebasePhone.CertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"
	}
}
