package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todolists/internal/config"
	"todolists/internal/database"
	"todolists/internal/handlers"
	"todolists/internal/logger"
	"todolists/internal/metrics"
	"todolists/internal/repository"
	"todolists/internal/security"
	"todolists/internal/service"
	"todolists/internal/staging"
	"todolists/internal/templates"
)

const (
	stepDatabase  = "Database connection"
	stepTemplates = "Loading templates"
	stepServices  = "Initializing services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("Server failed")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	status := handlers.NewStartupStatus(stepDatabase, stepTemplates, stepServices)

	// Initialize database with config (supports sqlite, postgres, mysql); migrations run on open
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	status.CompleteStep(stepDatabase)
	log.Infow("Database connection established", "type", db.Dialect.Name())

	tmpl, err := templates.Load()
	if err != nil {
		return err
	}
	status.CompleteStep(stepTemplates)

	stages, closeStages, err := openStagingStore(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeStages()
	log.Infow("Staging store ready", "backend", cfg.StagingBackend)

	secret := cfg.SessionSecret
	if secret == "" {
		secret = randomSecret()
		log.Warn("SESSION_SECRET not set; CSRF tokens and share links will not survive a restart")
	}

	m := metrics.New()
	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewListRepository(db)

	authService := service.NewAuthService(userRepo, stages, cfg.SessionDuration)
	listService := service.NewListService(db, listRepo, stages, m, log)
	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, log)
	if err != nil {
		return err
	}
	shareService := service.NewShareService(listRepo, security.NewShareTokens(secret, cfg.ShareTokenTTL), emailService, cfg.AppBaseURL, log)

	limiter := security.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	middleware := handlers.NewMiddleware(authService, security.NewCSRFGenerator(secret), limiter, m, log)
	renderer := handlers.NewTemplateRenderer(tmpl)

	routes := handlers.Routes{
		Auth:       handlers.NewAuthHandler(authService, renderer, log),
		Lists:      handlers.NewListHandler(listService, shareService, middleware, renderer, log),
		Health:     handlers.NewHealthHandler(db, status, log),
		Middleware: middleware,
		StaticPath: cfg.StaticFilesPath,
	}
	if cfg.MetricsEnabled {
		routes.Metrics = m.Handler()
	}
	status.CompleteStep(stepServices)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      routes.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go cleanupLoop(ctx, authService, limiter, log)

	errCh := make(chan error, 1)
	go func() {
		log.Infow("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	status.MarkReady()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStagingStore selects where in-progress edits live
func openStagingStore(ctx context.Context, cfg *config.Config, db *database.DB) (staging.Store, func(), error) {
	switch cfg.StagingBackend {
	case config.StagingRedis:
		store, err := staging.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionDuration)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.StagingMemory:
		return staging.NewMemoryStore(), func() {}, nil
	default:
		return repository.NewStagingRepository(db), func() {}, nil
	}
}

// cleanupLoop periodically removes expired sessions and idle rate limiter entries
func cleanupLoop(ctx context.Context, authService *service.AuthService, limiter *security.RateLimiter, log *logger.Logger) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := authService.CleanupExpiredSessions(ctx)
			if err != nil {
				log.WithError(err).Error("Error cleaning up expired sessions")
			} else {
				log.Infow("Expired sessions cleaned up", "removed", n)
			}
			if removed := limiter.Cleanup(); removed > 0 {
				log.Debugw("Rate limiter entries pruned", "removed", removed)
			}
		}
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("failed to read random bytes: %v", err))
	}
	return hex.EncodeToString(b)
}
