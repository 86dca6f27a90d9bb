package config

import (
	"time"

	"github.com/dmitrijs2005/machinewatch/internal/envx"
)

// parseEnv overlays the environment. The store and secret variables are the
// same ones the server reads, so one .env serves both binaries.
//
//	MACHINEWATCH_SERVER, MACHINEWATCH_TELEMETRY, MACHINEWATCH_DB
//	DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME
//	JWT_SECRET, ALLOW_DEV_SECRET
//	REMOTE_TIMEOUT, CONNECT_TIMEOUT, TELEMETRY_GRACE
//
// Malformed values panic.
func parseEnv(cfg *Config) {
	cfg.ServerEndpointAddr = envx.Default("MACHINEWATCH_SERVER", cfg.ServerEndpointAddr)
	cfg.TelemetryAddr = envx.Default("MACHINEWATCH_TELEMETRY", cfg.TelemetryAddr)
	cfg.DatabaseDSN = envx.Default("MACHINEWATCH_DB", cfg.DatabaseDSN)

	cfg.Store.DBHost = envx.Default("DB_HOST", cfg.Store.DBHost)
	cfg.Store.DBUser = envx.Default("DB_USER", cfg.Store.DBUser)
	cfg.Store.DBPassword = envx.Default("DB_PASSWORD", cfg.Store.DBPassword)
	cfg.Store.DBName = envx.Default("DB_NAME", cfg.Store.DBName)
	cfg.SecretKey = envx.Default("JWT_SECRET", cfg.SecretKey)

	port, err := envx.Int("DB_PORT", cfg.Store.DBPort)
	if err != nil {
		panic(err)
	}
	cfg.Store.DBPort = port

	allowDev, err := envx.Bool("ALLOW_DEV_SECRET", cfg.AllowDevSecret)
	if err != nil {
		panic(err)
	}
	cfg.AllowDevSecret = allowDev

	for _, d := range []struct {
		key string
		dst *time.Duration
	}{
		{"REMOTE_TIMEOUT", &cfg.RemoteTimeout},
		{"CONNECT_TIMEOUT", &cfg.ConnectTimeout},
		{"TELEMETRY_GRACE", &cfg.TelemetryGrace},
	} {
		v, err := envx.Duration(d.key, *d.dst)
		if err != nil {
			panic(err)
		}
		*d.dst = v
	}
}
