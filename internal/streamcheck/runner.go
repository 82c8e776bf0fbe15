package streamcheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/okian/demandgen/internal/adapters/http/api"
	"github.com/okian/demandgen/pkg/logger"
)

// Run connects to the service stream, reads cfg.Frames frames after the
// initial one and verifies each of them. It returns an error wrapping
// ErrVerification when any invariant is violated.
func Run(ctx context.Context, cfg *Config) (Stats, error) {
	stats := Stats{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}
	log := logger.Get().Named("streamcheck")

	log.Info(ctx, "starting stream check",
		logger.String("runID", stats.RunID),
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("frames", cfg.Frames),
		logger.Duration("timeout", cfg.Timeout))

	conn, err := dial(ctx, cfg, log)
	if err != nil {
		return stats, err
	}
	defer func() { _ = conn.Close() }()

	info, err := fetchChartInfo(ctx, cfg)
	if err != nil {
		return stats, err
	}

	frames := make(chan api.SnapshotView, cfg.Frames+1)
	verifier := NewVerifier(cfg.Specs, info.Domain, info.Viewport)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(frames)
		return readFrames(gctx, conn, cfg, frames)
	})

	g.Go(func() error {
		for f := range frames {
			record(&stats, f)
			problems := verifier.Check(f)
			stats.Failures += len(problems)
			for _, p := range problems {
				log.Error(gctx, "invariant violated", logger.Error(p))
			}
			if cfg.Verbose {
				log.Info(gctx, "frame",
					logger.Uint64("sequence", f.Sequence),
					logger.String("successRate", f.Readout.SuccessRate),
					logger.Int("problems", len(problems)))
			}
		}
		return nil
	})

	// Unblock the reader if the context ends mid-frame.
	stop := context.AfterFunc(gctx, func() { _ = conn.Close() })
	defer stop()

	err = g.Wait()

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if err != nil {
		return stats, err
	}
	if stats.Failures > 0 {
		return stats, fmt.Errorf("%w: %d problems in %d frames", ErrVerification, stats.Failures, stats.Frames)
	}
	log.Info(ctx, "stream check passed", logger.String("runID", stats.RunID))
	return stats, nil
}

// readFrames reads the initial frame plus cfg.Frames more.
func readFrames(ctx context.Context, conn *websocket.Conn, cfg *Config, out chan<- api.SnapshotView) error {
	for i := 0; i <= cfg.Frames; i++ {
		if err := conn.SetReadDeadline(time.Now().Add(cfg.Timeout)); err != nil {
			return fmt.Errorf("%w: %w", ErrStream, err)
		}
		var f api.SnapshotView
		if err := conn.ReadJSON(&f); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return fmt.Errorf("%w: server closed the stream after %d frames", ErrStream, i)
			}
			return fmt.Errorf("%w: %w", ErrStream, err)
		}
		select {
		case out <- f:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func record(stats *Stats, f api.SnapshotView) {
	if stats.Frames == 0 {
		stats.FirstSequence = f.Sequence
	} else {
		switch {
		case f.Sequence == stats.LastSequence+1:
			stats.Consecutive++
		case f.Sequence > stats.LastSequence+1:
			stats.Gaps++
		}
	}
	stats.LastSequence = f.Sequence
	stats.Frames++
}

// displayFinalStats logs the run summary.
func displayFinalStats(ctx context.Context, log logger.Logger, stats Stats) {
	var framesPerSecond float64
	if stats.Duration > 0 {
		framesPerSecond = float64(stats.Frames) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.String("runID", stats.RunID),
		logger.Int("frames", stats.Frames),
		logger.Int("consecutive", stats.Consecutive),
		logger.Int("gaps", stats.Gaps),
		logger.Int("failures", stats.Failures),
		logger.Uint64("firstSequence", stats.FirstSequence),
		logger.Uint64("lastSequence", stats.LastSequence),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("framesPerSecond", framesPerSecond))
}

// IsVerificationFailure reports whether err came from a failed invariant
// rather than from connectivity.
func IsVerificationFailure(err error) bool {
	return errors.Is(err, ErrVerification)
}
