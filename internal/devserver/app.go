// Package devserver is a small in-memory implementation of the RoadWatch
// authentication API, used for local development and end-to-end tests of
// the client.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/roadwatch/internal/logging"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *Config
	logger logging.Logger
	server *http.Server
}

func NewApp(ctx context.Context, cfg *Config, logger logging.Logger) (*App, error) {
	svc := NewService(NewMemoryRepository(), cfg, logger)
	if err := svc.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminEmail); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           NewRouter(svc, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return &App{config: cfg, logger: logger, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// shuts the listener down gracefully.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)
	app.logger.Info(ctx, "Starting development backend...", "addr", app.config.ListenAddr)

	var (
		wg       sync.WaitGroup
		serveErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown failed", "error", err)
	}

	wg.Wait()
	app.logger.Info(shutdownCtx, "development backend stopped")
	return serveErr
}
