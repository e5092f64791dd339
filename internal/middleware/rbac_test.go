package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRequireRoleAllowsAuthorizedRoles(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_role", "Super_Admin")
		return c.Next()
	})
	app.Use(RequireRole("admin", "super_admin"))
	app.Get("/stats", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleRejectsUnauthorizedRoles(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_role", "staff")
		return c.Next()
	})
	app.Use(RequireRole("admin", "super_admin"))
	app.Get("/stats", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestPermissionsFromContext(t *testing.T) {
	app := fiber.New()
	app.Get("/bound", func(c *fiber.Ctx) error {
		c.Locals("user_permissions", map[string]bool{"is_food_enabled": true})
		require.Equal(t, map[string]bool{"is_food_enabled": true}, PermissionsFromContext(c))
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/unbound", func(c *fiber.Ctx) error {
		require.Nil(t, PermissionsFromContext(c))
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/bound", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/unbound", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
