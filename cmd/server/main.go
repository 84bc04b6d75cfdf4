package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/stwalsh4118/coursecast/internal/config"
	"github.com/stwalsh4118/coursecast/internal/db"
	"github.com/stwalsh4118/coursecast/internal/logger"
	"github.com/stwalsh4118/coursecast/internal/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run() error {
	cfg, err := config.LoadAndWatch(
		func(updated *config.Config) {
			logger.SetLevel(updated.Logging.Level)
			logger.Log.Info().Str("level", updated.Logging.Level).Msg("Configuration reloaded")
		},
		func(err error) {
			logger.Log.Warn().Err(err).Msg("Ignoring invalid configuration change")
		},
	)
	if err != nil {
		logger.Init("info", true)
		return err
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Pretty)
	logger.Log.Info().Msg("CourseCast lessons API starting")

	if cfg.UsesDefaultSecret() {
		logger.Log.Warn().Msg("Using the development JWT secret; set COURSECAST_AUTH_JWTSECRET in production")
	}

	if dir := filepath.Dir(cfg.Database.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	database, err := db.New(cfg.Database.Path, db.Options{
		EnableWAL:   cfg.Database.EnableWAL,
		PingTimeout: cfg.Database.ConnectionTimeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	sqlDB, err := database.GetSQLDB()
	if err != nil {
		return err
	}
	if err := db.RunMigrations(sqlDB, cfg.Database.MigrationsPath); err != nil {
		return err
	}
	logger.Log.Info().Str("path", cfg.Database.Path).Msg("Database ready")

	srv := server.New(cfg, database)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Log.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
