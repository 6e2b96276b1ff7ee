package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Orchestrator OrchestratorConfig
	Security     SecurityConfig
	Cache        CacheConfig
	Logging      LoggingConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port     int
	Host     string
	UseHTTPS bool
	CertFile string
	KeyFile  string
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// OrchestratorConfig - настройки подключения к оркестратору.
// Оркестратор - внешний торговый движок; дашборд общается с ним
// только по HTTP через эти параметры.
type OrchestratorConfig struct {
	BaseURL string

	// Таймаут каждого HTTP запроса к оркестратору. Явный и настраиваемый:
	// аварийные действия не должны висеть на дефолтах transport'а.
	RequestTimeout time.Duration

	// Retry для идемпотентных (read-only) запросов
	MaxRetries   int
	RetryBackoff time.Duration
}

// SecurityConfig - настройки безопасности
type SecurityConfig struct {
	// SessionSecret - ключ подписи сессионных токенов (HMAC-SHA256)
	SessionSecret string
	// SessionTTL - время жизни сессии
	SessionTTL time.Duration
	// EncryptionKey - 32 байта для AES-256-GCM (секреты каналов уведомлений)
	EncryptionKey string

	// Статические учетные записи. *PasswordHash - bcrypt-хеш, не сам
	// пароль. Администратор обязателен, оператор и наблюдатель
	// опциональны (пустой хеш отключает учетку).
	AdminUsername        string
	AdminPasswordHash    string
	OperatorUsername     string
	OperatorPasswordHash string
	ViewerUsername       string
	ViewerPasswordHash   string

	// Rate limit для логина (защита от bruteforce)
	LoginRatePerSec float64
	LoginBurst      float64

	// Basic auth для служебных endpoints (/internal, /debug/pprof).
	// Пустые значения отключают служебные маршруты.
	InternalUsername string
	InternalPassword string
}

// CacheConfig - настройки кеша агрегации дашборда
type CacheConfig struct {
	// TTL кеша - короткий, порядка секунд: данные дашборда быстро устаревают
	TTL time.Duration
	// Максимум записей в кеше
	MaxEntries int
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnvAsInt("SERVER_PORT", 8080),
			Host:     getEnv("SERVER_HOST", "0.0.0.0"),
			UseHTTPS: getEnvAsBool("USE_HTTPS", false),
			CertFile: getEnv("CERT_FILE", ""),
			KeyFile:  getEnv("KEY_FILE", ""),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "dashboard"),
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Orchestrator: OrchestratorConfig{
			BaseURL:        getEnv("ORCHESTRATOR_URL", "http://localhost:9090"),
			RequestTimeout: getEnvAsDuration("ORCHESTRATOR_TIMEOUT", 10*time.Second),
			MaxRetries:     getEnvAsInt("ORCHESTRATOR_MAX_RETRIES", 3),
			RetryBackoff:   getEnvAsDuration("ORCHESTRATOR_RETRY_BACKOFF", 200*time.Millisecond),
		},
		Security: SecurityConfig{
			SessionSecret:        getEnv("SESSION_SECRET", ""),
			SessionTTL:           getEnvAsDuration("SESSION_TTL", 12*time.Hour),
			EncryptionKey:        getEnv("ENCRYPTION_KEY", ""),
			AdminUsername:        getEnv("ADMIN_USERNAME", "admin"),
			AdminPasswordHash:    getEnv("ADMIN_PASSWORD_HASH", ""),
			OperatorUsername:     getEnv("OPERATOR_USERNAME", "operator"),
			OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
			ViewerUsername:       getEnv("VIEWER_USERNAME", "viewer"),
			ViewerPasswordHash:   getEnv("VIEWER_PASSWORD_HASH", ""),
			LoginRatePerSec:      getEnvAsFloat("LOGIN_RATE_PER_SEC", 1),
			LoginBurst:           getEnvAsFloat("LOGIN_BURST", 5),
			InternalUsername:     getEnv("INTERNAL_USERNAME", ""),
			InternalPassword:     getEnv("INTERNAL_PASSWORD", ""),
		},
		Cache: CacheConfig{
			TTL:        getEnvAsDuration("CACHE_TTL", 5*time.Second),
			MaxEntries: getEnvAsInt("CACHE_MAX_ENTRIES", 128),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Валидация критичных параметров безопасности
	if err := cfg.validateSecurity(); err != nil {
		return nil, err
	}

	// Валидация числовых диапазонов
	if err := cfg.validateRanges(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateSecurity проверяет параметры безопасности
func (c *Config) validateSecurity() error {
	// SESSION_SECRET обязателен: без него токены нельзя верифицировать
	if c.Security.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required for session signing")
	}

	if len(c.Security.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters for security")
	}

	// ENCRYPTION_KEY обязателен для шифрования секретов каналов уведомлений
	if c.Security.EncryptionKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required for encrypting channel secrets")
	}

	if len(c.Security.EncryptionKey) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes for AES-256")
	}

	// Без admin-учетки в систему нельзя войти вообще
	if c.Security.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required (bcrypt hash, see cmd/hashpw)")
	}

	return nil
}

// validateRanges проверяет числовые диапазоны параметров
func (c *Config) validateRanges() error {
	// Валидация портов
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Database.Port)
	}

	// Валидация параметров оркестратора
	if c.Orchestrator.BaseURL == "" {
		return fmt.Errorf("ORCHESTRATOR_URL cannot be empty")
	}

	if c.Orchestrator.RequestTimeout <= 0 {
		return fmt.Errorf("ORCHESTRATOR_TIMEOUT must be positive, got %v", c.Orchestrator.RequestTimeout)
	}

	if c.Orchestrator.MaxRetries < 0 {
		return fmt.Errorf("ORCHESTRATOR_MAX_RETRIES cannot be negative, got %d", c.Orchestrator.MaxRetries)
	}

	if c.Orchestrator.MaxRetries > 10 {
		return fmt.Errorf("ORCHESTRATOR_MAX_RETRIES should not exceed 10, got %d", c.Orchestrator.MaxRetries)
	}

	// Валидация сессий
	if c.Security.SessionTTL < time.Minute {
		return fmt.Errorf("SESSION_TTL must be at least 1 minute, got %v", c.Security.SessionTTL)
	}

	// Валидация кеша
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %v", c.Cache.TTL)
	}

	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be at least 1, got %d", c.Cache.MaxEntries)
	}

	return nil
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// DSNWithoutPassword возвращает строку подключения без пароля (для логирования)
func (d DatabaseConfig) DSNWithoutPassword() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
