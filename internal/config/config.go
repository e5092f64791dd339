package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by this package.
const EnvPrefix = "RESIDENCE"

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	Location        *time.Location
	AllowOrigins    string
	DatabaseURL     string
	RedisURL        string
	NATSURL         string
	PurgeSubject    string
	JWTSecret       string
	StatsCacheTTL   time.Duration
	PurgeRateLimit  int
	PurgeRateWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := newViper()
	v.SetDefault("app.name", "Residence Admin API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.timezone", "Local")
	v.SetDefault("app.allow_origins", "*")
	v.SetDefault("nats.subject", "activity_logs.purged")
	v.SetDefault("stats.cache_ttl", "1m")
	v.SetDefault("purge.rate_limit", 3)
	v.SetDefault("purge.rate_window", "1m")

	ttl, err := parseDuration(v, "stats.cache_ttl")
	if err != nil {
		return Config{}, err
	}
	window, err := parseDuration(v, "purge.rate_window")
	if err != nil {
		return Config{}, err
	}

	location, err := time.LoadLocation(v.GetString("app.timezone"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid app timezone: %w", err)
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		Location:        location,
		AllowOrigins:    v.GetString("app.allow_origins"),
		DatabaseURL:     v.GetString("database.url"),
		RedisURL:        v.GetString("redis.url"),
		NATSURL:         v.GetString("nats.url"),
		PurgeSubject:    v.GetString("nats.subject"),
		JWTSecret:       v.GetString("jwt.secret"),
		StatsCacheTTL:   ttl,
		PurgeRateLimit:  v.GetInt("purge.rate_limit"),
		PurgeRateWindow: window,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}
	if cfg.PurgeRateLimit <= 0 {
		cfg.PurgeRateLimit = 3
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
