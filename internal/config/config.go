// Package config: .env 파일 및 환경 변수 기반 설정 로더.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kapu/customer-crm-go/internal/constants"
	"github.com/kapu/customer-crm-go/internal/util"
)

// Config: CRM 서버의 전체 동작에 필요한 설정을 담는 구조체
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Valkey   ValkeyConfig
	Logging  LoggingConfig
	Version  string
}

// ServerConfig: API 서버 및 세션 관련 설정
type ServerConfig struct {
	Port          int
	SessionTTL    time.Duration
	AllowOrigins  []string
	EnableMetrics bool
}

// PostgresConfig: 메인 데이터베이스(PostgreSQL) 연결 설정
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ValkeyConfig: 캐시/세션 저장소(Valkey) 연결 설정
type ValkeyConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LoggingConfig: 애플리케이션 로그 설정 (레벨, 디렉토리, 로테이션 정책)
type LoggingConfig struct {
	Level      string
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Load: .env 파일 및 환경 변수로부터 설정을 로드하고, 기본값을 적용하여 Config 객체를 생성한다.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:          getEnvInt("SERVER_PORT", 30080),
			SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_HOURS", int(constants.SessionConfig.TTL.Hours()))) * time.Hour,
			AllowOrigins:  parseCommaSeparated(getEnv("CORS_ALLOW_ORIGINS", "")),
			EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", constants.DatabaseDefaults.Host),
			Port:     getEnvInt("POSTGRES_PORT", constants.DatabaseDefaults.Port),
			User:     getEnv("POSTGRES_USER", constants.DatabaseDefaults.User),
			Password: getEnv("POSTGRES_PASSWORD", constants.DatabaseDefaults.Password),
			Database: getEnv("POSTGRES_DB", constants.DatabaseDefaults.Database),
			SSLMode:  getEnv("POSTGRES_SSLMODE", constants.DatabaseDefaults.SSLMode),
		},
		Valkey: ValkeyConfig{
			Host:     getEnv("CACHE_HOST", "localhost"),
			Port:     getEnvInt("CACHE_PORT", 6379),
			Password: getEnv("CACHE_PASSWORD", ""),
			DB:       getEnvInt("CACHE_DB", 0),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Dir:        getEnv("LOG_DIR", "logs"),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Version: util.TrimSpace(getEnv("APP_VERSION", "1.0.0")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate: 필수 설정값이 누락되지 않았는지 검증한다.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be a valid port, got %d", c.Server.Port)
	}
	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}
	if c.Postgres.Host == "" || c.Postgres.Database == "" {
		return fmt.Errorf("POSTGRES_HOST and POSTGRES_DB are required")
	}
	if c.Valkey.Host == "" {
		return fmt.Errorf("CACHE_HOST is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := util.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
