package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/noah-isme/residence-admin-api/internal/activitylog"
)

// DefaultConsoleConfigName is the file name (without extension) searched for when no path is given.
const DefaultConsoleConfigName = "residence-console"

// ConsoleConfig configures the operator console.
type ConsoleConfig struct {
	BaseURL     string
	Token       string
	Timeout     time.Duration
	Role        string
	Permissions activitylog.Permissions
	PageSize    int
	Debug       bool
}

// Privileged reports whether the configured role may read statistics and purge logs.
func (c ConsoleConfig) Privileged() bool {
	switch strings.ToLower(strings.TrimSpace(c.Role)) {
	case "admin", "super_admin":
		return true
	default:
		return false
	}
}

// LoadConsole reads the console configuration from path (when set), a residence-console.yaml in the
// working directory, and RESIDENCE_* environment variables, in increasing precedence.
func LoadConsole(path string) (ConsoleConfig, error) {
	_ = godotenv.Load()

	v := newViper()
	v.SetDefault("api.base_url", "http://localhost:8080/api/v1")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("role", "admin")
	v.SetDefault("page_size", activitylog.DefaultLimit)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConsoleConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return ConsoleConfig{}, fmt.Errorf("read console config: %w", err)
		}
	}

	timeout, err := parseDuration(v, "api.timeout")
	if err != nil {
		return ConsoleConfig{}, err
	}

	cfg := ConsoleConfig{
		BaseURL:     strings.TrimSpace(v.GetString("api.base_url")),
		Token:       strings.TrimSpace(v.GetString("api.token")),
		Timeout:     timeout,
		Role:        strings.ToLower(strings.TrimSpace(v.GetString("role"))),
		Permissions: readPermissions(v),
		PageSize:    v.GetInt("page_size"),
		Debug:       v.GetBool("debug"),
	}
	if cfg.BaseURL == "" {
		return ConsoleConfig{}, fmt.Errorf("api base url must be provided")
	}
	if cfg.PageSize < 1 || cfg.PageSize > activitylog.MaxLimit {
		return ConsoleConfig{}, fmt.Errorf("page_size must be between 1 and %d", activitylog.MaxLimit)
	}

	return cfg, nil
}

// readPermissions merges the permissions map from the file with per-flag environment overrides
// such as RESIDENCE_PERMISSIONS_IS_FOOD_ENABLED.
func readPermissions(v *viper.Viper) activitylog.Permissions {
	perms := activitylog.Permissions{}
	for key, value := range v.GetStringMap("permissions") {
		perms[key] = cast.ToBool(value)
	}
	for _, key := range []string{activitylog.PermissionUtility, activitylog.PermissionIssue, activitylog.PermissionFood} {
		if v.IsSet("permissions." + key) {
			perms[key] = cast.ToBool(v.Get("permissions." + key))
		}
	}
	return perms
}
