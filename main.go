package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farmfinance/backend/api"
	"farmfinance/backend/config"
	"farmfinance/backend/database"
	"farmfinance/backend/handlers"
	"farmfinance/backend/logger"
	"farmfinance/backend/middleware"
	"farmfinance/backend/reports"
	"farmfinance/backend/security"
	"farmfinance/backend/services"
	"farmfinance/backend/store"
)

const (
	devEncryptionKey = "default-key-for-development-only"
	shutdownTimeout  = 10 * time.Second
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "Optional config file (env vars still win)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log := logger.Default()
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(cfg.LogLevel, cfg.IsDevelopment())
	logger.SetDefault(log)
	log.Info().Str("env", cfg.AppEnv).Str("driver", cfg.DBDriver).Msg("Starting farm finance API")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	db, err := database.Open(database.Options{
		Driver:      cfg.DBDriver,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(db, cfg.DBDriver); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	encryptionKey := cfg.EncryptionKey
	if encryptionKey == "" {
		log.Warn().Msg("ENCRYPTION_KEY not set, using a default key. This is NOT secure for production!")
		encryptionKey = devEncryptionKey
	}
	fieldCipher, err := security.NewFieldCipher(encryptionKey)
	if err != nil {
		return fmt.Errorf("field cipher: %w", err)
	}
	st := store.New(db, cfg.DBDriver, store.WithCipher(fieldCipher))

	settings := services.NewSettingsService(st)
	seeded, err := settings.EnsureDefaults(ctx)
	if err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	if seeded > 0 {
		log.Info().Int("count", seeded).Msg("Seeded default settings")
	}

	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	authService := services.NewAuthService(st, security.NewHasher(cfg.BcryptCost), tokens, settings)

	// A nil *auth.Client stored in the interface would not compare equal to nil.
	var verifier middleware.FirebaseVerifier
	fbClient, err := middleware.InitializeFirebase(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Firebase, Firebase sign-in disabled")
	} else if fbClient != nil {
		verifier = fbClient
	}

	h := handlers.New(handlers.Deps{
		Store:       st,
		Auth:        authService,
		Ledger:      services.NewLedgerService(st, cfg.Location()),
		Users:       services.NewUserService(st),
		Feedback:    services.NewFeedbackService(st),
		Settings:    settings,
		Reporter:    reports.NewReporter(st, cfg.Location()),
		Development: cfg.IsDevelopment(),
	})
	server := api.NewServer(api.Options{
		Handler:        h,
		Authenticator:  middleware.NewAuthenticator(tokens, st, verifier),
		Logger:         log,
		AllowedOrigins: cfg.AllowedOrigins(),
		Development:    cfg.IsDevelopment(),
	})

	services.StartScheduler(ctx, st, cfg.OrphanCheckInterval)

	srv := &http.Server{
		Handler:      server.Handler(),
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Msg("Starting server...")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("Server stopped cleanly")
	return nil
}
