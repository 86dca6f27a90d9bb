// Package config handles configuration for the server component. Values are
// layered: built-in defaults, then an optional JSON file, then environment
// variables, then command-line flags.
package config

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/machinewatch/internal/auth"
	"github.com/dmitrijs2005/machinewatch/internal/credentials"
)

// Config holds runtime settings for the machinewatch backend.
//
// Fields:
//   - HTTPAddr: bind address of the auth API, health and metrics endpoints.
//   - TelemetryAddr: bind address of the gRPC telemetry gateway.
//   - SecretKey: HMAC secret for signing session tokens (HS256).
//   - AllowDevSecret: permit the well-known development secret when
//     SecretKey is empty.
//   - Store: relational user store; enabled by a non-empty DBHost.
//   - RunMigrations: apply embedded schema migrations to the store at startup.
//   - ShutdownTimeout: grace period for in-flight requests on shutdown.
//   - LogLevel / LogFormat: slog level name and "json" or "text".
type Config struct {
	HTTPAddr        string
	TelemetryAddr   string
	SecretKey       string
	AllowDevSecret  bool
	Store           credentials.StoreConfig
	RunMigrations   bool
	ShutdownTimeout time.Duration
	LogLevel        string
	LogFormat       string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.TelemetryAddr = ":50051"
	c.SecretKey = ""
	c.AllowDevSecret = true
	c.Store = credentials.StoreConfig{DBPort: credentials.DefaultDBPort}
	c.RunMigrations = false
	c.ShutdownTimeout = 10 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// ErrNoSecret is returned by Secret when no signing secret is available.
var ErrNoSecret = errors.New("JWT_SECRET is not set and the development secret is disabled")

// Secret returns the signing secret to use and whether it is the
// development fallback.
func (c *Config) Secret() ([]byte, bool, error) {
	secret, dev := auth.ResolveSecret(c.SecretKey, c.AllowDevSecret)
	if len(secret) == 0 {
		return nil, false, ErrNoSecret
	}
	return secret, dev, nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line
// flags. Malformed input panics.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
