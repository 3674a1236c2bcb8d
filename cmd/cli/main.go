package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/opsdash/internal/client/app"
	"github.com/dmitrijs2005/opsdash/internal/client/config"
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

	logger := logging.New(os.Stderr, "text", cfg.LogLevel)

	a, err := app.NewApp(ctx, cfg, logger, nil)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer a.Close()

	if err := a.RunCLI(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Error(ctx, "terminal stopped", "error", err)
	}

}
