// config предоставляет структуру конфигурации contacts-service и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// InsecureSecretKey - значение секрета по умолчанию. Годится только для
// локального запуска; в prod Load отказывается стартовать с ним.
const InsecureSecretKey = "change-me-insecure-default-secret-key"

// Драйверы хранилища.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const envProd = "prod"

// ErrInsecureSecret - в prod-окружении не задан собственный SECRET_KEY.
var ErrInsecureSecret = errors.New("insecure default secret key must be overridden in prod")

// Config - корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Auth     AuthConfig    `yaml:"auth"`
	DB       DBConfig      `yaml:"db"`
	Redis    RedisConfig   `yaml:"redis"`
	CORS     CORSConfig    `yaml:"cors"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig - таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// HTTPConfig - сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8000"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AuthConfig содержит параметры выпуска и валидации токенов и хэширования паролей.
// Значения неизменяемы после старта: структура передаётся по значению.
type AuthConfig struct {
	SecretKey      string        `yaml:"secret_key" env:"SECRET_KEY" env-default:"change-me-insecure-default-secret-key"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"30m"`
	BcryptCost     int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

// DBConfig - настройки подключения к базе данных.
// Для sqlite DatabaseURL - путь к файлу БД, для postgres - DSN.
type DBConfig struct {
	Driver      string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
	DatabaseURL string `yaml:"db_url" env:"DATABASE_URL" env-default:"contacts.db"`
}

// RedisConfig - кэш пользователей для резолвинга токенов (опционально).
// Пустой RedisURL отключает кэш.
type RedisConfig struct {
	RedisURL string        `yaml:"redis_url" env:"REDIS_URL"`
	UserTTL  time.Duration `yaml:"user_ttl" env:"REDIS_USER_TTL" env-default:"1m"`
}

// CORSConfig - разрешённые источники для браузерных/мобильных клиентов.
// AllowCredentials включается явно: cleanenv не отличает false из файла от
// отсутствующего значения.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	AllowCredentials bool     `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS"`
}

// MustLoad - обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла ENV-переменные накладываются поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file does not exist: %q: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	var (
		c   *Config
		err error
	)

	switch envPath := os.Getenv("CONFIG_PATH"); {
	case path != "":
		c, err = tryRead(path)
	case envPath != "":
		c, err = tryRead(envPath)
	default:
		if _, statErr := os.Stat("local.yaml"); statErr == nil {
			c, err = tryRead("local.yaml")
		} else {
			if err := cleanenv.ReadEnv(&cfg); err != nil {
				return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
			}
			c = &cfg
		}
	}
	if err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// validate проверяет согласованность значений после загрузки.
func (c *Config) validate() error {
	if c.Env == envProd && (c.Auth.SecretKey == "" || c.Auth.SecretKey == InsecureSecretKey) {
		return ErrInsecureSecret
	}

	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("access_token_ttl must be positive, got %s", c.Auth.AccessTokenTTL)
	}

	switch c.DB.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported db driver %q", c.DB.Driver)
	}

	return nil
}
