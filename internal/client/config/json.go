package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/machinewatch/internal/flagx"
	"github.com/dmitrijs2005/machinewatch/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Fields absent
// from the file leave the current value untouched.
type JsonConfig struct {
	ServerEndpointAddr   string         `json:"server_endpoint_addr"`
	TelemetryAddr        string         `json:"telemetry_addr"`
	DatabaseDSN          string         `json:"database_dsn"`
	SecretKey            string         `json:"secret_key"`
	AllowDevSecret       *bool          `json:"allow_dev_secret"`
	DBHost               string         `json:"db_host"`
	DBPort               int            `json:"db_port"`
	DBUser               string         `json:"db_user"`
	DBPassword           string         `json:"db_password"`
	DBName               string         `json:"db_name"`
	RemoteTimeout        timex.Duration `json:"remote_timeout"`
	ConnectTimeout       timex.Duration `json:"connect_timeout"`
	TelemetryGrace       timex.Duration `json:"telemetry_grace"`
	SessionCheckInterval timex.Duration `json:"session_check_interval"`
	LogLevel             string         `json:"log_level"`
	LogFormat            string         `json:"log_format"`
}

// parseJson overlays Config with values loaded from the file named by -c or
// -config. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigFile(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.TelemetryAddr, jc.TelemetryAddr)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.SecretKey, jc.SecretKey)
	setString(&cfg.Store.DBHost, jc.DBHost)
	setString(&cfg.Store.DBUser, jc.DBUser)
	setString(&cfg.Store.DBPassword, jc.DBPassword)
	setString(&cfg.Store.DBName, jc.DBName)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)

	if jc.DBPort != 0 {
		cfg.Store.DBPort = jc.DBPort
	}
	if jc.AllowDevSecret != nil {
		cfg.AllowDevSecret = *jc.AllowDevSecret
	}

	setDuration(&cfg.RemoteTimeout, jc.RemoteTimeout)
	setDuration(&cfg.ConnectTimeout, jc.ConnectTimeout)
	setDuration(&cfg.TelemetryGrace, jc.TelemetryGrace)
	setDuration(&cfg.SessionCheckInterval, jc.SessionCheckInterval)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration > 0 {
		*dst = v.Duration
	}
}
