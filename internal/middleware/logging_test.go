package middleware

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_AddsRequestValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "development")

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, uint(9))
	logger.With("component", "feed").InfoContext(ctx, "built")

	out := buf.String()
	assert.Contains(t, out, "request_id=req-1")
	assert.Contains(t, out, "user_id=9")
	assert.Contains(t, out, "component=feed")
}

func TestNewLogger_Profiles(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "production").Info("ready", "port", "8000")
	assert.Contains(t, buf.String(), `"msg":"ready"`)

	buf.Reset()
	quiet := NewLogger(&buf, "test")
	quiet.Info("hidden")
	quiet.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestContextMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "abc")
		c.Locals("userID", uint(5))
		return c.Next()
	})
	app.Use(ContextMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		assert.Equal(t, "abc", ctx.Value(RequestIDKey))
		assert.Equal(t, uint(5), ctx.Value(UserIDKey))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestStructuredLogger_LevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	saved := Logger
	Logger = NewLogger(&buf, "development")
	t.Cleanup(func() { Logger = saved })

	app := fiber.New()
	app.Use(StructuredLogger())
	app.Get("/missing", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) })
	app.Get("/health/live", func(c *fiber.Ctx) error { return c.SendString("up") })

	for _, path := range []string{"/missing", "/health/live"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	out := buf.String()
	assert.Contains(t, out, "level=WARN msg=request status=404")
	assert.Contains(t, out, "level=DEBUG msg=request status=200")
}
