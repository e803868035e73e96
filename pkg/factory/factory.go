package factory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"twitterapi/internal/config"
	"twitterapi/internal/domain"
	"twitterapi/internal/repository"
	"twitterapi/internal/service"
	"twitterapi/internal/validation"
	"twitterapi/pkg/database"
	"twitterapi/pkg/logger"
	"twitterapi/pkg/ratelimit"
	"twitterapi/pkg/tracing"
)

type Factory interface {
	GetLogger() logger.Logger
	GetConfig() *config.Config
	GetDB() *sql.DB
	GetLimiter() ratelimit.Limiter
	GetRedisLimiter() *ratelimit.RedisLimiter

	GetUserRepository() domain.UserRepository
	GetTweetRepository() domain.TweetRepository
	GetAuditLogRepository() domain.AuditLogRepository

	GetUserService() domain.UserService
	GetTweetService() domain.TweetService
	GetAuditLogService() domain.AuditLogService

	Close(ctx context.Context) error
}

type AppFactory struct {
	config         *config.Config
	logger         logger.Logger
	db             *sql.DB
	limiter        ratelimit.Limiter
	redisLimiter   *ratelimit.RedisLimiter
	validator      *validation.Validator
	tracerShutdown tracing.ShutdownFunc

	userRepository     domain.UserRepository
	tweetRepository    domain.TweetRepository
	auditLogRepository domain.AuditLogRepository

	userService     domain.UserService
	tweetService    domain.TweetService
	auditLogService domain.AuditLogService
}

// NewFactory wires every dependency of the application from cfg. Resources
// opened before a failure are released before returning the error.
func NewFactory(ctx context.Context, cfg *config.Config) (Factory, error) {
	log := logger.New(logger.LogLevel(cfg.LogLevel), nil)

	factory := &AppFactory{
		config:    cfg,
		logger:    log,
		validator: validation.New(),
	}

	shutdown, err := tracing.Init(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	factory.tracerShutdown = shutdown

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		_ = factory.Close(ctx)
		return nil, err
	}
	factory.db = db

	if err := factory.initLimiter(); err != nil {
		_ = factory.Close(ctx)
		return nil, err
	}

	factory.initRepositories()
	factory.initServices()

	return factory, nil
}

func (f *AppFactory) initLimiter() error {
	if f.config.Redis.Addr == "" {
		f.limiter = ratelimit.NewMemoryLimiter()
		f.logger.Info("Using in-memory rate limiter", nil)
		return nil
	}

	redisLimiter, err := ratelimit.NewRedisLimiter(ratelimit.RedisConfig{
		Addr:     f.config.Redis.Addr,
		Password: f.config.Redis.Password,
		DB:       f.config.Redis.DB,
	}, f.logger)
	if err != nil {
		return err
	}

	f.redisLimiter = redisLimiter
	f.limiter = ratelimit.NewFallbackLimiter(redisLimiter, ratelimit.NewMemoryLimiter(), f.logger)
	f.logger.Info("Using Redis rate limiter", map[string]interface{}{"addr": f.config.Redis.Addr})
	return nil
}

func (f *AppFactory) initRepositories() {
	f.userRepository = repository.NewUserRepository(f.db, f.logger)
	f.tweetRepository = repository.NewTweetRepository(f.db, f.logger)
	f.auditLogRepository = repository.NewAuditLogRepository(f.db, f.logger)
}

func (f *AppFactory) initServices() {
	f.auditLogService = service.NewAuditLogService(f.auditLogRepository, f.logger)
	f.userService = service.NewUserService(f.userRepository, f.auditLogService, f.validator, f.logger)
	f.tweetService = service.NewTweetService(f.tweetRepository, f.userRepository, f.auditLogService, f.validator, f.logger)
}

// Close releases the limiter, flushes pending spans and closes the database.
func (f *AppFactory) Close(ctx context.Context) error {
	var errs []error

	if f.limiter != nil {
		if err := f.limiter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rate limiter: %w", err))
		}
	}
	if f.tracerShutdown != nil {
		if err := f.tracerShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
		}
	}
	if f.db != nil {
		if err := f.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (f *AppFactory) GetLogger() logger.Logger {
	return f.logger
}

func (f *AppFactory) GetConfig() *config.Config {
	return f.config
}

func (f *AppFactory) GetDB() *sql.DB {
	return f.db
}

func (f *AppFactory) GetLimiter() ratelimit.Limiter {
	return f.limiter
}

// GetRedisLimiter returns nil when the in-memory limiter is in use.
func (f *AppFactory) GetRedisLimiter() *ratelimit.RedisLimiter {
	return f.redisLimiter
}

func (f *AppFactory) GetUserRepository() domain.UserRepository {
	return f.userRepository
}

func (f *AppFactory) GetTweetRepository() domain.TweetRepository {
	return f.tweetRepository
}

func (f *AppFactory) GetAuditLogRepository() domain.AuditLogRepository {
	return f.auditLogRepository
}

func (f *AppFactory) GetUserService() domain.UserService {
	return f.userService
}

func (f *AppFactory) GetTweetService() domain.TweetService {
	return f.tweetService
}

func (f *AppFactory) GetAuditLogService() domain.AuditLogService {
	return f.auditLogService
}
