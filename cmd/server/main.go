package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/machinewatch/internal/buildinfo"
	"github.com/dmitrijs2005/machinewatch/internal/logging"
	"github.com/dmitrijs2005/machinewatch/internal/server"
	"github.com/dmitrijs2005/machinewatch/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewFromConfig(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	app, err := server.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
