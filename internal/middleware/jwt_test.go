package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/residence-admin-api/internal/middleware"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func protectedApp() (*fiber.App, *map[string]interface{}) {
	captured := map[string]interface{}{}
	app := fiber.New()
	app.Use(middleware.JWTProtected(testSecret))
	app.Get("/", func(c *fiber.Ctx) error {
		captured["subject"] = c.Locals("user_subject")
		captured["role"] = c.Locals("user_role")
		captured["permissions"] = middleware.PermissionsFromContext(c)
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app, &captured
}

func TestJWTProtectedBindsClaims(t *testing.T) {
	app, captured := protectedApp()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "adm-7",
		"role": "Admin",
		"permissions": map[string]interface{}{
			"is_food_enabled":  true,
			"is_issue_enabled": "false",
		},
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	require.Equal(t, "adm-7", (*captured)["subject"])
	require.Equal(t, "admin", (*captured)["role"])
	require.Equal(t, map[string]bool{"is_food_enabled": true, "is_issue_enabled": false}, (*captured)["permissions"])
}

func TestJWTProtectedNumericSubject(t *testing.T) {
	app, captured := protectedApp()
	token := signToken(t, testSecret, jwt.MapClaims{"sub": 42, "roles": []interface{}{"super_admin"}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.Equal(t, "42", (*captured)["subject"])
	require.Equal(t, "super_admin", (*captured)["role"])
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	app, _ := protectedApp()

	cases := map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"wrong secret": "Bearer " + signToken(t, "other-secret", jwt.MapClaims{"sub": "adm-1"}),
		"expired":      "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "adm-1", "exp": time.Now().Add(-time.Hour).Unix()}),
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err, name)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, name)
	}
}

func TestCorrelationIDPropagates(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(middleware.CorrelationIDFromContext(c.UserContext()))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "req-123", resp.Header.Get("X-Correlation-ID"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Len(t, resp.Header.Get("X-Correlation-ID"), 36)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", strings.Repeat("a", 200))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Len(t, resp.Header.Get("X-Correlation-ID"), 36)
}

func TestRateLimitRejectsBurst(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_subject", "adm-1")
		return c.Next()
	})
	app.Delete("/", middleware.RateLimit("purge", 1, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
