package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/roadwatch/internal/devserver"
	"github.com/dmitrijs2005/roadwatch/internal/logging"
)

func main() {

	cfg, err := devserver.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.New(logging.Options{Backend: cfg.LogBackend, Level: cfg.LogLevel, JSON: true})

	ctx := context.Background()
	app, err := devserver.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
