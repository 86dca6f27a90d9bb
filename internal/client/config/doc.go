// Package config loads runtime configuration for the machinewatch CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the auth backend
//	-g string   address:port of the telemetry gateway
//	-d string   SQLite database file
//	-s string   local signing secret
//	-i int      session expiry check interval (seconds)
//	-l string   log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "http://localhost:8080",
//	  "telemetry_addr": "127.0.0.1:50051",
//	  "database_dsn": "machinewatch.db",
//	  "remote_timeout": "5s",
//	  "connect_timeout": "10s",
//	  "telemetry_grace": "2s",
//	  "session_check_interval": "1m"
//	}
package config
