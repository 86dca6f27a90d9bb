package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/machinewatch/internal/buildinfo"
	"github.com/dmitrijs2005/machinewatch/internal/client/cli"
	"github.com/dmitrijs2005/machinewatch/internal/client/config"
	"github.com/dmitrijs2005/machinewatch/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewFromConfig(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
