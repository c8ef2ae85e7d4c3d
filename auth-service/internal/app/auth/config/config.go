package config

import (
	"fmt"
	"time"

	"shopcatalog/pkg/envconfig"
)

// Config содержит все настройки Auth Service
type Config struct {
	AppEnv       string `env:"APP_ENV" envDefault:"production"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogstashAddr string `env:"LOGSTASH_ADDR"`

	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Reset    ResetConfig
}

type ServerConfig struct {
	Host        string   `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port        string   `env:"SERVER_PORT" envDefault:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
}

// DatabaseConfig - настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName   string `env:"DB_NAME" envDefault:"auth_service"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// RedisConfig - хранилище токенов сброса пароля
type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"1"`
}

// JWTConfig - секрет общий с Catalog Service
type JWTConfig struct {
	Secret string        `env:"JWT_SECRET" envDefault:"your-secret-key-change-this-in-production"`
	TTL    time.Duration `env:"JWT_TTL" envDefault:"720h"`
}

// ResetConfig - сброс пароля по ссылке из письма
type ResetConfig struct {
	TokenTTL    time.Duration `env:"RESET_TOKEN_TTL" envDefault:"10m"`
	FrontendURL string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
}

// Load загружает конфигурацию из .env и переменных окружения
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Load(cfg); err != nil {
		return nil, err
	}

	if cfg.JWT.TTL <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL: must be positive")
	}
	if cfg.Reset.TokenTTL <= 0 {
		return nil, fmt.Errorf("invalid RESET_TOKEN_TTL: must be positive")
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// DSN возвращает строку подключения к PostgreSQL для pgx
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}
