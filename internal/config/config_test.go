package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so no .env file leaks in.
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.Timeout)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "twitter.db", cfg.Database.Path)
	assert.Equal(t, 10, cfg.RateLimit.Signup)
	assert.Equal(t, 120, cfg.RateLimit.Write)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Tracing.Endpoint)
	assert.Equal(t, "twitterapi", cfg.Tracing.ServiceName)
	assert.Equal(t, 4, cfg.Import.Workers)
}

func TestLoad_FromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "twitter")
	t.Setenv("DB_NAME", "twitter")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RATE_LIMIT_WRITE", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 90*time.Second, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.RateLimit.Write)
}

func TestLoad_DotEnvFile(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.WriteFile(".env", []byte("IMPORT_USERS_FILE=users.json\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("IMPORT_USERS_FILE") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "users.json", cfg.Import.UsersFile)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: "8000"},
			Database: DatabaseConfig{Driver: DriverSQLite, Path: ":memory:"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "sqlite ok", mutate: func(c *Config) {}},
		{name: "empty port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "SERVER_PORT"},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "DB_PATH"},
		{name: "postgres missing host", mutate: func(c *Config) { c.Database.Driver = DriverPostgres }, wantErr: "DB_HOST"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "unsupported DB_DRIVER"},
		{name: "negative limit", mutate: func(c *Config) { c.RateLimit.Signup = -1 }, wantErr: "negative"},
		{name: "negative workers", mutate: func(c *Config) { c.Import.Workers = -2 }, wantErr: "IMPORT_WORKERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
