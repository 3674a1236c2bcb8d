package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/opsdash/internal/client/app"
	"github.com/dmitrijs2005/opsdash/internal/client/config"
	"github.com/dmitrijs2005/opsdash/internal/client/metrics"
	"github.com/dmitrijs2005/opsdash/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.New(os.Stdout, "json", cfg.LogLevel)

	a, err := app.NewApp(ctx, cfg, logger, metrics.New())
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer a.Close()

	if err := a.RunWeb(ctx); err != nil {
		logger.Error(ctx, "web server stopped", "error", err)
		os.Exit(1)
	}

}
