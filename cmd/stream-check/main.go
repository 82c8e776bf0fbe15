package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/demandgen/internal/streamcheck"
	"github.com/okian/demandgen/pkg/logger"
)

// Exit codes.
const (
	exitVerification = 1
	exitStream       = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	defaults := streamcheck.DefaultConfig()
	var (
		baseURL     = flag.String("url", defaults.BaseURL, "Base URL of the service")
		frames      = flag.Int("frames", defaults.Frames, "Number of frames to verify after the first")
		timeout     = flag.Duration("timeout", defaults.Timeout, "Per-frame and per-request timeout")
		dialTimeout = flag.Duration("dial-timeout", defaults.MaxDialTime, "Give up dialing after this long")
		verbose     = flag.Bool("verbose", false, "Log every frame")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		streamcheck.ShowHelp()
		return 0
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return exitStream
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &streamcheck.Config{
		BaseURL:     *baseURL,
		Frames:      *frames,
		Timeout:     *timeout,
		MaxDialTime: *dialTimeout,
		Verbose:     *verbose,
	}

	if _, err := streamcheck.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Stream check failed: " + err.Error() + "\n")
		if streamcheck.IsVerificationFailure(err) {
			return exitVerification
		}
		return exitStream
	}
	return 0
}
