package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/giljurha/Airvisual/internal/api"
	"github.com/giljurha/Airvisual/internal/api/handler"
	"github.com/giljurha/Airvisual/internal/api/middleware"
	"github.com/giljurha/Airvisual/internal/permission"
	"github.com/giljurha/Airvisual/internal/platform"
	"github.com/giljurha/Airvisual/internal/provider/resilience"
	"github.com/giljurha/Airvisual/internal/refresh"
)

var portFlag string

// defaultServeScopes are granted when LOCATION_PERMISSIONS is unset, as
// nobody is present to answer a prompt.
var defaultServeScopes = []string{string(permission.ScopeFine), string(permission.ScopeCoarse)}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the air quality screen over HTTP",
	Long: `Runs the screen headless and exposes it over HTTP:

  GET  /v1/screen          current view and controller state
  GET  /v1/screen/notices  recent notices
  POST /v1/screen/refresh  start a manual refresh
  GET  /v1/ops/health      liveness
  GET  /v1/ops/status      screen and provider health

Location permissions are taken from LOCATION_PERMISSIONS and default to
fine,coarse when it is unset.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&portFlag, "port", "", "listen port (overrides APP_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	log.Info().
		Str("build_time", BuildTime).
		Msg("starting airvisual server")

	tp, shutdown, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer shutdown()

	metrics, err := middleware.NewMetrics(tp.Meter)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	registry := resilience.NewRegistry()
	src := newSources(cfg, registry, log)
	board := handler.NewBoard(0, log.With().Str("component", "board").Logger())
	scopes := cfg.Permissions
	if len(scopes) == 0 {
		scopes = defaultServeScopes
	}
	static := platform.NewStatic(src.provider, scopes)

	controller, err := newController(screenDeps{
		cfg:       cfg,
		logger:    log,
		registry:  registry,
		sources:   src,
		telemetry: tp,
	}, host{
		platform: static,
		prompter: static,
		renderer: board,
		notifier: board,
		screen:   board,
	})
	if err != nil {
		return err
	}

	loopCtx, cancelLoop := context.WithCancel(context.Background())
	defer cancelLoop()
	go func() {
		if err := controller.Run(loopCtx); errors.Is(err, refresh.ErrClosed) {
			log.Warn().Msg("screen closed; serving final state")
		}
	}()
	controller.Launch()

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Screen:      controller,
		Board:       board,
		Locale:      cfg.Locale,
		Registry:    registry,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	cancelLoop()
	<-controller.Done()

	log.Info().Msg("server stopped")
	return nil
}
