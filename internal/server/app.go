// Package server wires configuration, storage and services into the
// Grapevine HTTP application and runs it until a shutdown signal.
package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/grapevine/internal/common"
	"github.com/dmitrijs2005/grapevine/internal/logging"
	"github.com/dmitrijs2005/grapevine/internal/server/auth"
	"github.com/dmitrijs2005/grapevine/internal/server/config"
	"github.com/dmitrijs2005/grapevine/internal/server/httpapi"
	"github.com/dmitrijs2005/grapevine/internal/server/observability"
	"github.com/prometheus/client_golang/prometheus"
)

type App struct {
	config *config.Config
	logger logging.Logger
	core   *Core
	server *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	core, err := NewCore(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	server := httpapi.NewServer(httpapi.Options{
		Address:     c.HTTPAddr,
		FrontendURL: c.FrontendURL,
		Logger:      logger,
		Users:       core.Users,
		AudioFiles:  core.AudioFiles,
		Gate:        auth.NewGate(core.Tokens, core.Repos.Users(core.DB)),
		Cookie:      auth.NewSessionCookie(common.SessionCookieName, c.TokenTTL, c.CookieSecure),
		Metrics:     observability.NewMetrics(prometheus.NewRegistry()),
	})

	return &App{config: c, logger: logger, core: core, server: server}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a shutdown signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.core.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
