package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/voicepay/voicepay/internal/config"
	"github.com/voicepay/voicepay/internal/infra"
	"github.com/voicepay/voicepay/internal/logging"
	"github.com/voicepay/voicepay/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("error").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	var db *gorm.DB
	if d, err := infra.OpenSQLite(cfg.DatabasePath); err != nil {
		logger.Warn("sqlite unavailable, falling back to in-memory stores", "error", err)
	} else {
		db = d
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		if c, err := infra.NewRedisClient(context.Background(), cfg.RedisURL); err != nil {
			logger.Warn("redis unavailable, keeping conversation state in-process", "error", err)
		} else {
			cache = c
			defer cache.Close()
		}
	}

	srv, err := server.New(cfg, db, cache, logger)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
