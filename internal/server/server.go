package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/voicepay/voicepay/internal/config"
	"github.com/voicepay/voicepay/internal/routes"
)

// Server wraps the Fiber application together with its shared dependencies.
type Server struct {
	app    *fiber.App
	cfg    config.Config
	logger *slog.Logger
}

// New builds the HTTP server and wires every route. DB and cache may be nil,
// in which case the application runs fully in-process.
func New(cfg config.Config, db *gorm.DB, cache *redis.Client, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	if err := routes.Setup(app, routes.Deps{
		Cfg:    cfg,
		DB:     db,
		Cache:  cache,
		Logger: logger,
	}); err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg, logger: logger}, nil
}

// Listen starts serving requests and blocks until the listener closes.
func (s *Server) Listen() error {
	s.logger.Info("server listening", "address", s.cfg.Address(), "env", s.cfg.AppEnv)
	return s.app.Listen(s.cfg.Address())
}

// Shutdown drains in-flight requests before stopping.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
