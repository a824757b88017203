package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequestIDApp() *fiber.App {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(requestIDHeader).(string))
	})
	return app
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	app := newRequestIDApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestRequestIDEchoesCallerValue(t *testing.T) {
	app := newRequestIDApp()

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(requestIDHeader, "trace-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "trace-123", resp.Header.Get(requestIDHeader))
}
