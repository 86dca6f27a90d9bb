package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/machinewatch/internal/flagx"
	"github.com/dmitrijs2005/machinewatch/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Fields absent from the file
// (zero or nil) leave the current value untouched. Durations accept both
// "10s" strings and integer nanoseconds.
type JsonConfig struct {
	HTTPAddr        string         `json:"http_addr"`
	TelemetryAddr   string         `json:"telemetry_addr"`
	SecretKey       string         `json:"secret_key"`
	AllowDevSecret  *bool          `json:"allow_dev_secret"`
	DBHost          string         `json:"db_host"`
	DBPort          int            `json:"db_port"`
	DBUser          string         `json:"db_user"`
	DBPassword      string         `json:"db_password"`
	DBName          string         `json:"db_name"`
	RunMigrations   *bool          `json:"run_migrations"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
	LogLevel        string         `json:"log_level"`
	LogFormat       string         `json:"log_format"`
}

// parseJson loads the file named by -c or -config, if any, into config.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	path := flagx.ConfigFile(os.Args[1:])
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.TelemetryAddr, c.TelemetryAddr)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.Store.DBHost, c.DBHost)
	setString(&config.Store.DBUser, c.DBUser)
	setString(&config.Store.DBPassword, c.DBPassword)
	setString(&config.Store.DBName, c.DBName)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	if c.DBPort != 0 {
		config.Store.DBPort = c.DBPort
	}
	if c.AllowDevSecret != nil {
		config.AllowDevSecret = *c.AllowDevSecret
	}
	if c.RunMigrations != nil {
		config.RunMigrations = *c.RunMigrations
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
