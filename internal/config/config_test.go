package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/residence-admin-api/internal/activitylog"
)

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("RESIDENCE_JWT_SECRET", "")
	t.Setenv("RESIDENCE_DATABASE_URL", "postgres://localhost/residence")

	_, err := Load()
	require.EqualError(t, err, "jwt secret must be provided")
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("RESIDENCE_JWT_SECRET", "secret")
	t.Setenv("RESIDENCE_DATABASE_URL", "postgres://localhost/residence")
	t.Setenv("RESIDENCE_APP_PORT", ":9090")
	t.Setenv("RESIDENCE_APP_TIMEZONE", "UTC")
	t.Setenv("RESIDENCE_STATS_CACHE_TTL", "30s")
	t.Setenv("RESIDENCE_PURGE_RATE_LIMIT", "0")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, time.UTC, cfg.Location)
	require.Equal(t, 30*time.Second, cfg.StatsCacheTTL)
	require.Equal(t, 3, cfg.PurgeRateLimit)
	require.Equal(t, "activity_logs.purged", cfg.PurgeSubject)
}

func TestLoadConsoleFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "console.yaml")
	content := []byte(`api:
  base_url: https://admin.example.com/api/v1
  token: file-token
  timeout: 5s
role: staff
page_size: 25
permissions:
  is_food_enabled: "false"
  is_issue_enabled: true
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("RESIDENCE_API_TOKEN", "env-token")
	t.Setenv("RESIDENCE_PERMISSIONS_IS_UTILITY_ENABLED", "1")

	cfg, err := LoadConsole(path)
	require.NoError(t, err)
	require.Equal(t, "https://admin.example.com/api/v1", cfg.BaseURL)
	require.Equal(t, "env-token", cfg.Token)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, 25, cfg.PageSize)
	require.False(t, cfg.Privileged())
	require.Equal(t, activitylog.Permissions{
		activitylog.PermissionFood:    false,
		activitylog.PermissionIssue:   true,
		activitylog.PermissionUtility: true,
	}, cfg.Permissions)
}

func TestLoadConsoleRejectsPageSize(t *testing.T) {
	t.Setenv("RESIDENCE_PAGE_SIZE", "500")
	t.Chdir(t.TempDir())

	_, err := LoadConsole("")
	require.ErrorContains(t, err, "page_size must be between 1 and 200")
}
