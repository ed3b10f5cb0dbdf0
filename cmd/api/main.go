package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/astromatch/astromatch/internal/cache"
	"github.com/astromatch/astromatch/internal/config"
	"github.com/astromatch/astromatch/internal/database"
	"github.com/astromatch/astromatch/internal/httpapi"
	"github.com/astromatch/astromatch/internal/monitoring"
	"github.com/astromatch/astromatch/internal/notification"
	"github.com/astromatch/astromatch/internal/pairlock"
	"github.com/astromatch/astromatch/internal/services"
	"github.com/astromatch/astromatch/internal/telemetry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("invalid configuration: " + err.Error())
	}

	logConfig := telemetry.DefaultLogConfig()
	logConfig.Level = telemetry.LogLevel(cfg.LogLevel)
	if cfg.LogFile != "" {
		logConfig.Output = cfg.LogFile
		logConfig.Rotation = true
	}
	if cfg.IsDevelopment() {
		logConfig.Format = "text"
	}
	if err := telemetry.InitGlobalLogger(logConfig); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	ctx := telemetry.WithCorrelationID(context.Background(), telemetry.NewCorrelationID())
	logger := telemetry.GetContextualLogger(ctx)

	otelProvider, err := telemetry.NewProvider(telemetry.DefaultOTelConfig())
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Telemetry shutdown failed")
		}
	}()

	db, err := database.NewInstrumentedConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	var cacheSvc *cache.Service
	if svc, err := cache.NewService(cfg.Redis); err != nil {
		logger.WithError(err).Warn("Redis unavailable, running without cache")
	} else {
		cacheSvc = svc
		defer cacheSvc.Close()
	}

	var notifier services.MatchNotifier
	if cfg.TelegramBotToken != "" {
		tg, err := notification.NewTelegramNotifier(cfg.TelegramBotToken)
		if err != nil {
			logger.WithError(err).Warn("Telegram notifier disabled")
		} else {
			notifier = tg
		}
	}

	metrics, err := monitoring.NewMetrics()
	if err != nil {
		logger.WithError(err).Warn("Metrics disabled")
		metrics = nil
	}

	swipeRepo := database.NewSwipeRepo(db)
	profileRepo := database.NewProfileRepo(db)
	blockRepo := database.NewBlockRepo(db)
	locks := pairlock.New()

	// The cache interface is nil when Redis is down; a typed nil would
	// defeat the services' nil checks.
	var cacheIface services.Cache
	if cacheSvc != nil {
		cacheIface = cacheSvc
	}

	swipeService := services.NewSwipeService(swipeRepo, profileRepo, locks, cacheIface, notifier, metrics)
	candidateService := services.NewCandidateService(profileRepo, swipeRepo, blockRepo, cacheIface, metrics)
	matchService := services.NewMatchService(swipeRepo, profileRepo, cacheIface)
	moderationService := services.NewModerationService(blockRepo, profileRepo, swipeService)

	handlers := httpapi.NewHandlers(swipeService, candidateService, matchService, moderationService)
	health := monitoring.NewHealthChecker(db, cacheSvc)
	router := httpapi.NewRouter(handlers, health, cfg.IsDevelopment())

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("Matching engine listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
}
