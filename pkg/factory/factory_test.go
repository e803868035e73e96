package factory

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitterapi/internal/config"
	"twitterapi/pkg/ratelimit"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:   "test",
		LogLevel: "error",
		Server:   config.ServerConfig{Port: "0"},
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"},
		Tracing:  config.TracingConfig{ServiceName: "twitterapi-test"},
	}
}

func TestNewFactory_InMemoryLimiter(t *testing.T) {
	ctx := context.Background()

	f, err := NewFactory(ctx, testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close(ctx) })

	require.NoError(t, f.GetDB().PingContext(ctx))
	assert.IsType(t, &ratelimit.MemoryLimiter{}, f.GetLimiter())
	assert.Nil(t, f.GetRedisLimiter())

	assert.NotNil(t, f.GetUserRepository())
	assert.NotNil(t, f.GetTweetRepository())
	assert.NotNil(t, f.GetAuditLogRepository())
	assert.NotNil(t, f.GetUserService())
	assert.NotNil(t, f.GetTweetService())
	assert.NotNil(t, f.GetAuditLogService())
	assert.Equal(t, "test", f.GetConfig().AppEnv)
}

func TestNewFactory_RedisLimiter(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.Redis.Addr = mr.Addr()

	f, err := NewFactory(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close(ctx) })

	require.NotNil(t, f.GetRedisLimiter())
	assert.IsType(t, &ratelimit.FallbackLimiter{}, f.GetLimiter())
	assert.NoError(t, f.GetRedisLimiter().PingContext(ctx))
}

func TestNewFactory_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.Redis.Addr = addr

	_, err := NewFactory(context.Background(), cfg)
	require.Error(t, err)
}

func TestNewFactory_BadDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = "mysql"

	_, err := NewFactory(context.Background(), cfg)
	require.Error(t, err)
}
