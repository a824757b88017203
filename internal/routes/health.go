package routes

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes exposes liveness and readiness endpoints.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":    "ok",
			"app":       d.Cfg.AppName,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	app.Get("/readyz", func(c *fiber.Ctx) error {
		if d.DB != nil {
			sqlDB, err := d.DB.DB()
			if err != nil {
				return fiber.NewError(http.StatusServiceUnavailable, err.Error())
			}
			if err := sqlDB.PingContext(c.UserContext()); err != nil {
				return fiber.NewError(http.StatusServiceUnavailable, err.Error())
			}
		}
		if d.Cache != nil {
			if err := d.Cache.Ping(c.UserContext()).Err(); err != nil {
				return fiber.NewError(http.StatusServiceUnavailable, err.Error())
			}
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"status": "ready"})
	})
}
