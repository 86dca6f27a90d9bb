package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/machinewatch/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the auth backend
//	-g string   telemetry gateway address
//	-d string   SQLite database file
//	-s string   local signing secret
//	-i int      session expiry check interval in seconds
//	-l string   log level
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], "-a", "-g", "-d", "-s", "-i", "-l")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the auth backend")
	fs.StringVar(&cfg.TelemetryAddr, "g", cfg.TelemetryAddr, "address and port of the telemetry gateway")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "local database file")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "local signing secret")
	checkInterval := fs.Int("i", int(cfg.SessionCheckInterval.Seconds()), "session check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SessionCheckInterval = time.Duration(*checkInterval) * time.Second
}
