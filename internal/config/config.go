package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type Config struct {
	AppEnv    string `mapstructure:"APP_ENV"`
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Tracing   TracingConfig
	Import    ImportConfig
	LogLevel  string `mapstructure:"LOG_LEVEL"`
}

type ServerConfig struct {
	Port    string        `mapstructure:"SERVER_PORT"`
	Timeout time.Duration `mapstructure:"SERVER_TIMEOUT"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"DB_DRIVER"`
	Path            string        `mapstructure:"DB_PATH"`
	Host            string        `mapstructure:"DB_HOST"`
	Port            string        `mapstructure:"DB_PORT"`
	User            string        `mapstructure:"DB_USER"`
	Password        string        `mapstructure:"DB_PASSWORD"`
	Name            string        `mapstructure:"DB_NAME"`
	SSLMode         string        `mapstructure:"DB_SSL_MODE"`
	MaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
}

// RedisConfig is optional: an empty Addr selects the in-memory rate limiter.
type RedisConfig struct {
	Addr     string `mapstructure:"REDIS_ADDR"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

// RateLimitConfig holds per-window request budgets. Zero disables a limit.
type RateLimitConfig struct {
	Signup int           `mapstructure:"RATE_LIMIT_SIGNUP"`
	Write  int           `mapstructure:"RATE_LIMIT_WRITE"`
	Window time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
}

type TracingConfig struct {
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
	Endpoint    string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// ImportConfig points at legacy users.json / tweets.json documents to load at startup.
type ImportConfig struct {
	UsersFile  string `mapstructure:"IMPORT_USERS_FILE"`
	TweetsFile string `mapstructure:"IMPORT_TWEETS_FILE"`
	Workers    int    `mapstructure:"IMPORT_WORKERS"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("SERVER_TIMEOUT", 15*time.Second)

	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_PATH", "twitter.db")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute)

	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("RATE_LIMIT_SIGNUP", 10)
	v.SetDefault("RATE_LIMIT_WRITE", 120)
	v.SetDefault("RATE_LIMIT_WINDOW", time.Minute)

	v.SetDefault("OTEL_SERVICE_NAME", "twitterapi")

	v.SetDefault("IMPORT_WORKERS", 4)
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config

	cfg.AppEnv = v.GetString("APP_ENV")
	cfg.LogLevel = v.GetString("LOG_LEVEL")

	cfg.Server.Port = v.GetString("SERVER_PORT")
	cfg.Server.Timeout = v.GetDuration("SERVER_TIMEOUT")

	cfg.Database.Driver = strings.ToLower(v.GetString("DB_DRIVER"))
	cfg.Database.Path = v.GetString("DB_PATH")
	cfg.Database.Host = v.GetString("DB_HOST")
	cfg.Database.Port = v.GetString("DB_PORT")
	cfg.Database.User = v.GetString("DB_USER")
	cfg.Database.Password = v.GetString("DB_PASSWORD")
	cfg.Database.Name = v.GetString("DB_NAME")
	cfg.Database.SSLMode = v.GetString("DB_SSL_MODE")
	cfg.Database.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	cfg.Database.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	cfg.Database.ConnMaxLifetime = v.GetDuration("DB_CONN_MAX_LIFETIME")

	cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")

	cfg.RateLimit.Signup = v.GetInt("RATE_LIMIT_SIGNUP")
	cfg.RateLimit.Write = v.GetInt("RATE_LIMIT_WRITE")
	cfg.RateLimit.Window = v.GetDuration("RATE_LIMIT_WINDOW")

	cfg.Tracing.ServiceName = v.GetString("OTEL_SERVICE_NAME")
	cfg.Tracing.Endpoint = v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")

	cfg.Import.UsersFile = v.GetString("IMPORT_USERS_FILE")
	cfg.Import.TweetsFile = v.GetString("IMPORT_TWEETS_FILE")
	cfg.Import.Workers = v.GetInt("IMPORT_WORKERS")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("SERVER_PORT must not be empty")
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("DB_PATH is required for the sqlite3 driver")
		}
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" {
			return errors.New("DB_HOST, DB_USER and DB_NAME are required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.RateLimit.Signup < 0 || c.RateLimit.Write < 0 {
		return errors.New("rate limits must not be negative")
	}

	if c.Import.Workers < 0 {
		return errors.New("IMPORT_WORKERS must not be negative")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}
