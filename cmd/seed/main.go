package main

import (
	"context"
	"os"

	"github.com/voicepay/voicepay/internal/config"
	"github.com/voicepay/voicepay/internal/infra"
	"github.com/voicepay/voicepay/internal/invest"
	"github.com/voicepay/voicepay/internal/ledger"
	"github.com/voicepay/voicepay/internal/logging"
	"github.com/voicepay/voicepay/internal/user"
)

// Seeds the demo accounts into the SQLite database so the API can run against
// a populated ledger from the first request.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("error").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := infra.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(&user.User{}, &ledger.Transaction{}, &invest.Position{}); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	users := user.NewService(user.NewGormRepository(db), logger)
	if err := users.Seed(context.Background()); err != nil {
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	logger.Info("demo accounts seeded", "database", cfg.DatabasePath)
}
