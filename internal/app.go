package internal

import (
	"backlog/internal/controllers"
	"backlog/internal/providers"
	"backlog/internal/session"
	"backlog/internal/structures"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"
)

type App struct {
	WebServer *http.Server

	conf    *structures.Config
	logger  providers.Logger
	session session.StoreInterface
	router  providers.RouterProviderInterface
	shell   *controllers.ShellController
}

func NewApp(
	conf *structures.Config,
	logger providers.Logger,
	store session.StoreInterface,
	router providers.RouterProviderInterface,
	routes []structures.Route,
	shell *controllers.ShellController,
	healthController *controllers.HealthController,
	metrics providers.MetricsProviderInterface,
) *App {
	app := &App{
		conf:    conf,
		logger:  logger,
		session: store,
		router:  router,
		shell:   shell,
	}
	logger.Debugf(providers.TypeApp, "%d routes registered", len(routes))

	if conf.WebServer.Enabled {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", healthController.Health)
		if conf.Metrics.Enabled {
			mux.Handle("/metrics", metrics.Handler())
		}
		app.WebServer = &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
	}
	return app
}

// Run restores the session, opens the start route and serves the shell until
// it exits or a termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Infof(providers.TypeApp, "Starting %s", a.conf.AppName)
	a.session.Restore()

	serverErr := make(chan error, 1)
	if a.WebServer != nil {
		go func() {
			a.logger.Infof(providers.TypeApp, "Listening diagnostics on %s", a.WebServer.Addr)
			if err := a.WebServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	if err := a.router.Navigate(ctx, providers.RouteHome); err != nil {
		return fmt.Errorf("open start route: %w", err)
	}

	shellDone := make(chan error, 1)
	go func() {
		shellDone <- a.shell.Serve(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-shellDone:
		runErr = err
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if view := a.router.CurrentView(); view != nil {
		view.Unmount()
	}

	if a.WebServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.WebServer.Shutdown(shutdownCtx); err != nil && runErr == nil {
			runErr = err
		}
	}
	if runErr != nil {
		return runErr
	}
	a.logger.Infof(providers.TypeApp, "gracefully stopped")
	return nil
}

// Close flushes the logger. Call it after the injector cleanup.
func (a *App) Close() {
	a.logger.Close()
}
