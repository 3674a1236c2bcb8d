// Package app wires the configured stores, the session gate and the screen
// services, and runs one of the two front-ends until a signal arrives.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/client/cli"
	"github.com/dmitrijs2005/opsdash/internal/client/config"
	"github.com/dmitrijs2005/opsdash/internal/client/localstore"
	"github.com/dmitrijs2005/opsdash/internal/client/metrics"
	"github.com/dmitrijs2005/opsdash/internal/client/repositories/adminusers"
	"github.com/dmitrijs2005/opsdash/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/opsdash/internal/client/screens"
	"github.com/dmitrijs2005/opsdash/internal/client/services"
	"github.com/dmitrijs2005/opsdash/internal/client/session"
	"github.com/dmitrijs2005/opsdash/internal/client/web"
	"github.com/dmitrijs2005/opsdash/internal/logging"
	"github.com/dmitrijs2005/opsdash/internal/remote"
	"github.com/dmitrijs2005/opsdash/internal/remote/postgres"
)

// shutdownTimeout bounds the graceful stop of the web server.
const shutdownTimeout = 10 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	metrics  *metrics.Metrics
	remoteDB *sql.DB
	local    *localstore.Repositories
	gate     *session.Gate
	services screens.Services
}

// NewApp connects to the remote backend and opens the local store. m may be
// nil, in which case remote queries are not measured.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger, m *metrics.Metrics) (*App, error) {
	db, err := postgres.Open(ctx, c.RemoteDSN)
	if err != nil {
		return nil, err
	}
	app, err := newApp(ctx, c, logger, m, postgres.NewStore(db))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.remoteDB = db
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, m *metrics.Metrics, store remote.Store) (*App, error) {
	local, err := localstore.InitDatabase(ctx, c.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("local store init error: %w", err)
	}

	var secret []byte
	err = local.InTx(ctx, func(ctx context.Context, md metadata.Repository) error {
		secret, err = session.LoadOrCreateSecret(ctx, md, c.SessionSecret)
		return err
	})
	if err != nil {
		_ = local.Close()
		return nil, err
	}

	if m != nil {
		store = remote.Observe(store, m)
	}

	gate := session.NewGate(adminusers.NewRemoteRepository(store), local.Metadata,
		session.Options{Secret: secret, TTL: c.SessionTTL}, logger.With("component", "session"))

	return &App{
		config:  c,
		logger:  logger,
		metrics: m,
		local:   local,
		gate:    gate,
		services: screens.Services{
			Overview: services.NewOverviewService(store),
			Users:    services.NewUserService(store, c.FetchConcurrency),
			Logs:     services.NewLogService(store),
			Emails:   services.NewEmailService(store),
		},
	}, nil
}

func (app *App) screenOptions() screens.Options {
	return screens.Options{
		UsersPageSize:  app.config.UsersPageSize,
		LogsPageSize:   app.config.LogsPageSize,
		EmailsPageSize: app.config.EmailsPageSize,
		QueryTimeout:   app.config.QueryTimeout,
		Logger:         app.logger.With("component", "screens"),
	}
}

// Close releases both databases.
func (app *App) Close() error {
	var errs []error
	if app.remoteDB != nil {
		errs = append(errs, app.remoteDB.Close())
	}
	errs = append(errs, app.local.Close())
	return errors.Join(errs...)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// RunCLI runs the terminal companion on in/out until the operator exits or a
// signal arrives.
func (app *App) RunCLI(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	app.initSignalHandler(cancelFunc)

	dash := screens.NewDashboard(app.services, app.gate, app.screenOptions())
	cli.NewApp(app.gate, dash, in, out, app.logger.With("component", "cli")).Run(ctx)
	return nil
}

// RunWeb serves the JSON API on the configured address until ctx is done or
// a signal arrives, then shuts the server down gracefully.
func (app *App) RunWeb(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	app.initSignalHandler(cancelFunc)

	m := app.metrics
	if m == nil {
		m = metrics.New()
	}
	s := web.NewServer(app.gate, app.services, m,
		web.Options{Screens: app.screenOptions(), CORSOrigins: app.config.CORSOrigins},
		app.logger.With("component", "web"))

	srv := &http.Server{
		Addr:              app.config.WebAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	var (
		wg       sync.WaitGroup
		serveErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.logger.Info(ctx, "web server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
			cancelFunc()
		}
	}()

	<-ctx.Done()
	app.logger.Info(ctx, "shutting down web server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	wg.Wait()
	return errors.Join(serveErr, err)
}
