package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/qaforge/qaforge/internal/adapter/ai"
	httpadapter "github.com/qaforge/qaforge/internal/adapter/http"
	"github.com/qaforge/qaforge/internal/adapter/jira"
	"github.com/qaforge/qaforge/internal/adapter/persistence"
	redisadapter "github.com/qaforge/qaforge/internal/adapter/redis"
	"github.com/qaforge/qaforge/internal/auth"
	"github.com/qaforge/qaforge/internal/config"
	"github.com/qaforge/qaforge/internal/ports"
	"github.com/qaforge/qaforge/internal/usecase"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	configureLogger(logger, cfg.Logging)
	logger.WithField("environment", cfg.Server.Environment).Info("starting qaforge")

	// Database
	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		logger.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxConnections)

	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.WithError(err).Fatal("failed to ping database")
	}
	logger.Info("database connection established")

	userRepo := persistence.NewPostgresUserRepository(db)

	// Login limiter. Redis being down disables rate limiting rather than
	// blocking startup.
	var limiter ports.LoginLimiter
	if cfg.Auth.RateLimitEnabled {
		redisClient, err := redisadapter.NewClient(cfg.Redis)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, login rate limiting disabled")
		} else {
			defer redisClient.Close()
			limiter = redisadapter.NewLoginLimiter(redisClient, logger)
			logger.Info("login rate limiting enabled")
		}
	}

	// Tracker
	tracker, err := jira.NewClient(cfg.Tracker, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to configure tracker client")
	}

	// AI providers
	providers := ai.NewFactory(cfg.AI, logger)

	// Usecases
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	dashboardUC, err := usecase.NewDashboardUseCase(tracker, cfg.Dashboard, cfg.Tracker.PageSize, logger, nil)
	if err != nil {
		logger.WithError(err).Fatal("failed to build dashboard usecase")
	}
	statusTimeUC, err := usecase.NewStatusTimeUseCase(tracker, cfg.Dashboard, cfg.Tracker.PageSize, logger, nil)
	if err != nil {
		logger.WithError(err).Fatal("failed to build status-time usecase")
	}
	analyzeUC := usecase.NewAnalyzeUseCase(providers, logger)
	bugUC := usecase.NewBugUseCase(tracker, providers, cfg.Dashboard, logger)
	authUC := usecase.NewAuthUseCase(userRepo, limiter, tokens, cfg.Auth, logger)
	userUC := usecase.NewUserUseCase(userRepo, cfg.Auth, logger)

	server := httpadapter.NewServer(
		cfg.Server,
		logger,
		tokens,
		dashboardUC,
		statusTimeUC,
		analyzeUC,
		bugUC,
		authUC,
		userUC,
	)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("forced shutdown")
	}
	logger.Info("server stopped")
}

func configureLogger(logger *logrus.Logger, cfg config.LoggingConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
