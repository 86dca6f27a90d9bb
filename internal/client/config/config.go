package config

import (
	"time"

	"github.com/dmitrijs2005/machinewatch/internal/auth"
	"github.com/dmitrijs2005/machinewatch/internal/credentials"
)

// Config holds runtime settings for the machinewatch CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the auth backend. Its host also
//     decides whether the client runs in restricted (fallback-only) mode.
//   - TelemetryAddr: host:port of the telemetry gateway.
//   - DatabaseDSN: SQLite file holding the persisted session.
//   - SecretKey / AllowDevSecret: signing secret for locally issued tokens,
//     resolved the same way as on the server.
//   - Store: optional relational user store for local verification.
//   - RemoteTimeout: bound on each backend call.
//   - ConnectTimeout: bound on a single telemetry dial.
//   - TelemetryGrace: how long login, restore and logout wait on the channel.
//   - SessionCheckInterval: how often the token expiry is checked.
//
// Units: all intervals are time.Duration (e.g., 5*time.Second).
type Config struct {
	ServerEndpointAddr   string
	TelemetryAddr        string
	DatabaseDSN          string
	SecretKey            string
	AllowDevSecret       bool
	Store                credentials.StoreConfig
	RemoteTimeout        time.Duration
	ConnectTimeout       time.Duration
	TelemetryGrace       time.Duration
	SessionCheckInterval time.Duration
	LogLevel             string
	LogFormat            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://localhost:8080"
	c.TelemetryAddr = "127.0.0.1:50051"
	c.DatabaseDSN = "machinewatch.db"
	c.SecretKey = ""
	c.AllowDevSecret = true
	c.Store = credentials.StoreConfig{DBPort: credentials.DefaultDBPort}
	c.RemoteTimeout = 5 * time.Second
	c.ConnectTimeout = 10 * time.Second
	c.TelemetryGrace = 2 * time.Second
	c.SessionCheckInterval = time.Minute
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Secret returns the local signing secret and whether it is the development
// fallback. An empty secret means locally issued tokens are self-asserted.
func (c *Config) Secret() ([]byte, bool) {
	return auth.ResolveSecret(c.SecretKey, c.AllowDevSecret)
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
