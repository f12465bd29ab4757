package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/skillforge/platform/internal/access"
	httptransport "github.com/skillforge/platform/internal/api/transport/http"
	catalogApp "github.com/skillforge/platform/internal/catalog/app"
	catalogPg "github.com/skillforge/platform/internal/catalog/repository/postgres"
	identityApp "github.com/skillforge/platform/internal/identity/app"
	identityPg "github.com/skillforge/platform/internal/identity/repository/postgres"
	ledgerApp "github.com/skillforge/platform/internal/ledger/app"
	ledgerPg "github.com/skillforge/platform/internal/ledger/repository/postgres"
	"github.com/skillforge/platform/internal/platform/config"
	"github.com/skillforge/platform/internal/platform/database"
	"github.com/skillforge/platform/internal/platform/logger"
	"github.com/skillforge/platform/internal/platform/messagebroker"
	settingsApp "github.com/skillforge/platform/internal/settings/app"
	settingsPg "github.com/skillforge/platform/internal/settings/repository/postgres"
)

const (
	serviceName     = "skillforge-api"
	shutdownTimeout = 15 * time.Second
)

// httpLogger logs each request through slog once the handler completes.
func httpLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			requestID := chiMiddleware.GetReqID(r.Context())

			next.ServeHTTP(ww, r)

			logger.LogAttrs(r.Context(), slog.LevelInfo, "HTTP request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status_code", ww.Status()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("request_id", requestID),
			)
		}
		return http.HandlerFunc(fn)
	}
}

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat).With("service", serviceName)
	appLogger.Info("Starting", "listen_addr", cfg.ListenAddr, "log_level", cfg.LogLevel)

	dbPool, err := database.NewPool(mainCtx, cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := database.Migrate(mainCtx, dbPool); err != nil {
		appLogger.Error("Failed to apply database schema", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Database ready")

	// NATS is best effort: the API runs without it, events are just dropped.
	var broker messagebroker.Publisher
	natsClient, err := messagebroker.NewNatsClient(cfg.NATSUrl, serviceName, appLogger)
	if err != nil {
		appLogger.Warn("NATS unavailable, events disabled", "error", err)
	} else {
		broker = natsClient
		defer natsClient.Close()
	}

	// Repositories.
	userRepo := identityPg.NewPgUserRepository()
	settingsRepo := settingsPg.NewPgSettingsRepository(dbPool)
	courseRepo := catalogPg.NewPgCourseRepository(dbPool)
	chapterRepo := catalogPg.NewPgChapterRepository(dbPool)
	lessonRepo := catalogPg.NewPgLessonRepository(dbPool)
	categoryRepo := catalogPg.NewPgCategoryRepository(dbPool)
	licenseRepo := catalogPg.NewPgLicenseRepository(dbPool)
	enrollmentRepo := ledgerPg.NewPgEnrollmentRepository()
	transactionRepo := ledgerPg.NewPgTransactionRepository()
	txManager := ledgerPg.NewPgTxManager(dbPool)

	// Services.
	settingsService := settingsApp.NewService(settingsRepo, appLogger)
	tokens := identityApp.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)
	authService := identityApp.NewAuthService(dbPool, userRepo, settingsService, tokens, identityApp.AdminCredentials{
		Key:      cfg.AdminKey,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	}, broker, appLogger)
	userService := identityApp.NewUserService(dbPool, userRepo, licenseRepo, appLogger)
	catalogService := catalogApp.NewService(dbPool, courseRepo, chapterRepo, lessonRepo, categoryRepo, licenseRepo, userRepo, appLogger)
	ledgerService := ledgerApp.NewService(dbPool, txManager, enrollmentRepo, transactionRepo, userRepo, courseRepo, licenseRepo, broker, appLogger)
	evaluator := access.NewEvaluator(dbPool, courseRepo, chapterRepo, lessonRepo, enrollmentRepo, appLogger)

	if err := catalogService.SeedLicenses(mainCtx); err != nil {
		appLogger.Error("Failed to seed licenses", "error", err)
		os.Exit(1)
	}
	if _, err := settingsService.Get(mainCtx); err != nil {
		appLogger.Error("Failed to initialize settings", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.RouterDeps{
		AuthService:     authService,
		UserService:     userService,
		CatalogService:  catalogService,
		LedgerService:   ledgerService,
		SettingsService: settingsService,
		Evaluator:       evaluator,
		Logger:          appLogger,
	})

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: httpLogger(appLogger)(router),
	}

	sigCtx, stop := signal.NotifyContext(mainCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		appLogger.Info("HTTP server listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		appLogger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Stopped cleanly")
}
