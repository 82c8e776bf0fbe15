package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	app "github.com/okian/demandgen/internal/app"
	"github.com/okian/demandgen/internal/config"
	"github.com/okian/demandgen/internal/ui"
	"github.com/okian/demandgen/pkg/logger"
)

const logFilePermission = 0o600

func main() {
	os.Exit(run())
}

func run() int {
	logFile := flag.String("log", "", "Write logs to this file instead of discarding them")
	flag.Parse()

	// Logs must not draw over the dashboard.
	var logOut io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			os.Stderr.WriteString("failed to open log file: " + err.Error() + "\n")
			return 1
		}
		defer f.Close()
		logOut = f
	}
	if err := logger.InitWithWriter(logOut); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}
	_ = logger.SetLevelString(cfg.LogLevel)

	svc := app.New(app.FromConfig(cfg)...)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return 1
	}
	defer svc.Stop()

	sub, err := svc.Subscribe(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to subscribe: " + err.Error() + "\n")
		return 1
	}
	defer sub.Unsubscribe()

	opts := []ui.Option{ui.WithViewport(svc.Viewport()), ui.WithQuitHook(stop)}
	if initial, err := svc.Snapshot(ctx); err == nil {
		opts = append(opts, ui.WithInitial(initial))
	}

	program := tea.NewProgram(ui.NewModel(sub, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		os.Stderr.WriteString("dashboard failed: " + err.Error() + "\n")
		return 1
	}
	return 0
}
