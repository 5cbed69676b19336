package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/giljurha/Airvisual/internal/platform"
	"github.com/giljurha/Airvisual/internal/provider/resilience"
	"github.com/giljurha/Airvisual/internal/refresh"
	"github.com/giljurha/Airvisual/internal/ui"
)

var showCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"s"},
	Short:   "Show the air quality screen in the terminal",
	Long: `Opens the screen in the terminal. Permission and settings dialogs are
answered on stdin. Type r and Enter to refresh, q and Enter to quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runShow(ctx, cmd)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(ctx context.Context, cmd *cobra.Command) error {
	tp, shutdown, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer shutdown()

	registry := resilience.NewRegistry()
	src := newSources(cfg, registry, log)

	out := cmd.OutOrStdout()
	terminal := platform.NewTerminal(platform.TerminalConfig{
		In:       cmd.InOrStdin(),
		Out:      out,
		Services: src.provider,
		Switches: []platform.Switch{src.gps, src.network},
		Scopes:   cfg.Permissions,
		Messages: refresh.MessagesFor(cfg.Locale),
		Logger:   log.With().Str("component", "terminal").Logger(),
	})
	screen := ui.NewScreen(out, cfg.Locale)

	controller, err := newController(screenDeps{
		cfg:       cfg,
		logger:    log,
		registry:  registry,
		sources:   src,
		telemetry: tp,
	}, host{
		platform: terminal,
		prompter: terminal,
		renderer: screen,
		notifier: screen,
		screen:   screen,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- controller.Run(ctx) }()

	terminal.Start()
	controller.Launch()
	fmt.Fprintln(out, color.New(color.Faint).Sprint("r: refresh  q: quit"))

	for {
		select {
		case line, ok := <-terminal.Commands():
			if !ok {
				cancel()
				return ignoreCancel(<-runErr)
			}
			switch strings.ToLower(line) {
			case "r", "refresh":
				controller.Refresh()
			case "q", "quit", "exit":
				cancel()
				return ignoreCancel(<-runErr)
			}
		case err := <-runErr:
			return ignoreCancel(err)
		}
	}
}

// ignoreCancel treats a cancelled loop as a normal exit. A screen closed by
// a terminal outcome is still reported.
func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if errors.Is(err, refresh.ErrClosed) {
		log.Info().Msg("screen closed")
	}
	return err
}
