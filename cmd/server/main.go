package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"twitterapi/internal/api"
	"twitterapi/internal/config"
	"twitterapi/internal/database"
	"twitterapi/internal/importer"
	"twitterapi/pkg/factory"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	appFactory, err := factory.NewFactory(ctx, cfg)
	if err != nil {
		fmt.Printf("Failed to create factory: %v\n", err)
		os.Exit(1)
	}

	log := appFactory.GetLogger()
	db := appFactory.GetDB()

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := appFactory.Close(closeCtx); err != nil {
			log.Error("Failed to release resources", map[string]interface{}{"error": err.Error()})
		}
	}()

	log.Info("Starting application", map[string]interface{}{
		"env":       cfg.AppEnv,
		"db_driver": cfg.Database.Driver,
	})

	migrationService := database.NewMigrationService(db, log)
	if err := migrationService.RunMigrations(ctx); err != nil {
		log.Error("Failed to apply migrations", map[string]interface{}{"error": err.Error()})
		return
	}

	if cfg.Import.UsersFile != "" || cfg.Import.TweetsFile != "" {
		imp := importer.New(appFactory.GetUserService(), appFactory.GetTweetService(), cfg.Import.Workers, log)
		if _, err := imp.Run(ctx, cfg.Import.UsersFile, cfg.Import.TweetsFile); err != nil {
			log.Error("Legacy import failed", map[string]interface{}{"error": err.Error()})
			return
		}
	}

	healthHandler := api.NewHealthHandler(log, version)
	healthHandler.AddCheck("database", db)
	if redisLimiter := appFactory.GetRedisLimiter(); redisLimiter != nil {
		healthHandler.AddCheck("redis", redisLimiter)
	}

	handler := api.NewRouter(api.Handlers{
		Users:     api.NewUserHandler(appFactory.GetUserService(), log),
		Tweets:    api.NewTweetHandler(appFactory.GetTweetService(), log),
		AuditLogs: api.NewAuditLogHandler(appFactory.GetAuditLogService(), log),
		Health:    healthHandler,
	}, api.RouterConfig{
		Limiter: appFactory.GetLimiter(),
		Limits: map[string]int{
			api.GroupSignup: cfg.RateLimit.Signup,
			api.GroupWrite:  cfg.RateLimit.Write,
		},
		Window: cfg.RateLimit.Window,
		Logger: log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", map[string]interface{}{"port": cfg.Server.Port})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("Shutting down server", map[string]interface{}{"signal": sig.String()})
	case err := <-serverErr:
		if err != nil {
			log.Error("HTTP server failed", map[string]interface{}{"error": err.Error()})
			return
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shut down", map[string]interface{}{"error": err.Error()})
		return
	}

	log.Info("Server stopped", nil)
}
