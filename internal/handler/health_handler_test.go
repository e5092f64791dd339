package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/residence-admin-api/internal/config"
	"github.com/noah-isme/residence-admin-api/internal/handler"
)

type healthEnvelope struct {
	Success bool                   `json:"success"`
	Msg     string                 `json:"msg"`
	Data    handler.HealthResponse `json:"data"`
}

func getHealth(t *testing.T, probes map[string]handler.HealthProbe) (int, healthEnvelope) {
	t.Helper()
	cfg := config.Config{AppName: "Residence Admin API", AppEnv: "test"}

	app := fiber.New()
	app.Get("/api/v1/health", handler.HealthCheck(cfg, probes))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload healthEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func TestHealthCheck(t *testing.T) {
	status, payload := getHealth(t, nil)

	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, payload.Success)
	assert.Equal(t, "ok", payload.Data.Status)
	assert.Equal(t, "Residence Admin API", payload.Data.Service)
	assert.Equal(t, "test", payload.Data.Environment)
	assert.Nil(t, payload.Data.Dependencies)
	assert.WithinDuration(t, time.Now().UTC(), payload.Data.Timestamp, 2*time.Second)
}

func TestHealthCheckReportsDegradedDependency(t *testing.T) {
	status, payload := getHealth(t, map[string]handler.HealthProbe{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.False(t, payload.Success)
	assert.Equal(t, "service degraded", payload.Msg)
	assert.Equal(t, "degraded", payload.Data.Status)
	assert.Equal(t, map[string]string{"postgres": "up", "redis": "down"}, payload.Data.Dependencies)
}
