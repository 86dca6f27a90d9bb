package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/machinewatch/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   telemetry gateway bind address (e.g., ":50051")
//	-s string   JWT HMAC secret key
//	-l string   log level (debug, info, warn, error)
//
// os.Args is filtered with flagx.FilterArgs first, so flags meant for other
// components (such as -c) do not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], "-a", "-g", "-s", "-l")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port of the HTTP API")
	fs.StringVar(&config.TelemetryAddr, "g", config.TelemetryAddr, "address and port of the telemetry gateway")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
