package scanner

import (
	"context"
	"time"

	"github.com/aleister1102/ayumi/internal/httpclient"
	"github.com/aleister1102/ayumi/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Requester performs one HTTP request
type Requester interface {
	Do(req *httpclient.HTTPRequest) (*httpclient.HTTPResponse, error)
}

// Check is a native probe run once per target
type Check interface {
	Name() string
	Scan(ctx context.Context, target string) []models.Finding
}

// EmitFunc receives findings as they are produced. Calls are serialised.
type EmitFunc func(models.Finding) error

// Runner drives a Check over many targets in a bounded worker pool
type Runner struct {
	workers int
	logger  zerolog.Logger
}

// NewRunner creates a Runner with the given pool size
func NewRunner(workers int, logger zerolog.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		workers: workers,
		logger:  logger.With().Str("component", "ScanRunner").Logger(),
	}
}

// Run scans each target with check. Once ctx is cancelled no new target
// is started. The first emit error stops scheduling and is returned.
func (r *Runner) Run(ctx context.Context, targets []string, check Check, emit EmitFunc) error {
	started := time.Now()
	logger := r.logger.With().Str("check", check.Name()).Logger()
	logger.Info().Int("targets", len(targets)).Int("workers", r.workers).Msg("Starting native scan")

	schedule, stop := context.WithCancel(ctx)
	defer stop()

	var g errgroup.Group
	g.SetLimit(r.workers)
	results := make(chan []models.Finding)

	done := make(chan error, 1)
	go func() {
		var emitErr error
		for findings := range results {
			for _, f := range findings {
				if emitErr != nil {
					break
				}
				if emitErr = emit(f); emitErr != nil {
					stop()
				}
			}
		}
		done <- emitErr
	}()

	scheduled := 0
	for _, target := range targets {
		if schedule.Err() != nil {
			break
		}
		scheduled++
		g.Go(func() error {
			findings := check.Scan(context.WithoutCancel(ctx), target)
			if len(findings) > 0 {
				logger.Debug().Str("target", target).Int("findings", len(findings)).Msg("Target produced findings")
			}
			results <- findings
			return nil
		})
	}

	_ = g.Wait()
	close(results)
	emitErr := <-done

	logger.Info().
		Int("scanned", scheduled).
		Int("skipped", len(targets)-scheduled).
		Dur("duration", time.Since(started)).
		Msg("Native scan finished")

	if emitErr != nil {
		return emitErr
	}
	return ctx.Err()
}
