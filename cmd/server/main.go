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

	"github.com/joho/godotenv"

	"craftfolio.dev/internal/auth"
	"craftfolio.dev/internal/config"
	"craftfolio.dev/internal/handlers"
	"craftfolio.dev/internal/logging"
	"craftfolio.dev/internal/middleware"
	"craftfolio.dev/internal/models"
	"craftfolio.dev/internal/services"
	"craftfolio.dev/internal/store"
)

const (
	shutdownTimeout   = 10 * time.Second
	limiterSweepEvery = 10 * time.Minute
	limiterMaxIdle    = time.Hour
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(cfg.Log.Level, cfg.Log.Format)
	if cfg.Auth.SecretGenerated {
		slog.Warn("no jwt secret configured, using a random one; tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, store.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	tokens := auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	admin := models.Account{ID: cfg.Admin.ID, Username: cfg.Admin.Username, PasswordHash: cfg.Admin.PasswordHash}

	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.MaxClients)
	go limiter.Run(ctx, limiterSweepEvery, limiterMaxIdle)

	router := handlers.SetupRoutes(cfg, handlers.Services{
		Projects: services.NewProjectService(db),
		About:    services.NewAboutService(db),
		Contact:  services.NewContactService(db),
		Uploads:  services.NewUploadService(cfg.Upload.Dir, cfg.Upload.MaxBytes, cfg.Upload.MaxSide),
		Auth:     services.NewAuthService([]models.Account{admin}, tokens),
		Tokens:   tokens,
		Store:    db,
		Limiter:  limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr, "driver", cfg.Database.Driver)
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

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
