package middleware_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"gnsons/internal/middleware"
	"gnsons/internal/models"
	"gnsons/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAuth struct {
	admins map[string]*models.Admin
}

func (f *fakeAuth) Authenticate(token string) (*services.AccessClaims, error) {
	switch token {
	case "admin-token":
		return &services.AccessClaims{UID: "admin-1", Role: models.RoleAdmin, IsAdmin: true}, nil
	case "deleted-admin-token":
		return &services.AccessClaims{UID: "admin-2", Role: models.RoleAdmin, IsAdmin: true}, nil
	}
	return nil, services.ErrTokenInvalid
}

func (f *fakeAuth) ResolveAdmin(_ context.Context, claims *services.AccessClaims) (*models.Admin, error) {
	if admin, ok := f.admins[claims.UID]; ok {
		return admin, nil
	}
	return nil, services.ErrForbidden
}

func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrTokenInvalid):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

func newApp() *fiber.App {
	auth := &fakeAuth{admins: map[string]*models.Admin{"admin-1": {ID: "admin-1"}}}
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(statusFor(err)).SendString(err.Error())
		},
	})
	app.Get("/optional", middleware.AuthOptional(auth), func(c *fiber.Ctx) error {
		if claims := middleware.Claims(c); claims != nil {
			return c.SendString(claims.UID)
		}
		return c.SendString("guest")
	})
	app.Get("/admin", middleware.AuthRequired(auth, zap.NewNop()), middleware.RequireAdmin(auth), func(c *fiber.Ctx) error {
		return c.SendString(middleware.Admin(c).ID)
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthOptional(t *testing.T) {
	app := newApp()

	_, body := get(t, app, "/optional", "")
	assert.Equal(t, "guest", body)

	_, body = get(t, app, "/optional", "garbage")
	assert.Equal(t, "guest", body, "an invalid optional token is ignored")

	_, body = get(t, app, "/optional", "admin-token")
	assert.Equal(t, "admin-1", body)
}

func TestAuthRequiredAndRequireAdmin(t *testing.T) {
	app := newApp()

	status, _ := get(t, app, "/admin", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = get(t, app, "/admin", "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = get(t, app, "/admin", "deleted-admin-token")
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := get(t, app, "/admin", "admin-token")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "admin-1", body)
}

func TestRateLimit(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RateLimit(2, time.Minute, nil))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
}
