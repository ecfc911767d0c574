package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/aleister1102/ayumi/internal/common/errorwrapper"
	"github.com/aleister1102/ayumi/internal/config"
	"github.com/aleister1102/ayumi/internal/datastore"
	"github.com/aleister1102/ayumi/internal/extractor"
	"github.com/aleister1102/ayumi/internal/metrics"
	"github.com/aleister1102/ayumi/internal/models"
	"github.com/aleister1102/ayumi/internal/probe"
	"github.com/aleister1102/ayumi/internal/scanner"
	"github.com/aleister1102/ayumi/internal/severity"
	"github.com/aleister1102/ayumi/internal/urlhandler"
	"github.com/rs/zerolog"
)

// Sink receives every classified finding and extracted match
type Sink interface {
	Write(v any) error
}

// Deps are the collaborators of a Pipeline. Invoker and Sink are required;
// HTTP is needed by the native and extractor actions; History, Archive and
// Metrics are optional.
type Deps struct {
	Invoker probe.Invoker
	HTTP    HTTPClient
	Sink    Sink
	History *datastore.HistoryDB
	Archive *datastore.FindingsArchive
	Metrics *metrics.Recorder
}

// HTTPClient is what the native scanners and the extractor need
type HTTPClient interface {
	scanner.Requester
	extractor.Fetcher
}

// Request describes one invocation
type Request struct {
	RunID   string
	Input   string // file path or literal target
	Actions []string
	// OutputPath is recorded in history and decides where side files such as
	// the enriched params list are written
	OutputPath string
	// Richer enables the richer tie-break for Endpoint deduplication
	Richer bool
}

// Pipeline runs the requested actions over one target list. Each action is
// an independent branch: a failing branch never stops the others.
type Pipeline struct {
	cfg        *config.GlobalConfig
	deps       Deps
	classifier *severity.Classifier
	logger     zerolog.Logger
	now        func() time.Time
}

// New creates a Pipeline
func New(cfg *config.GlobalConfig, deps Deps, logger zerolog.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, errorwrapper.NewValidationError("config", nil, "configuration cannot be nil")
	}
	if deps.Invoker == nil {
		return nil, errorwrapper.NewValidationError("invoker", nil, "probe invoker cannot be nil")
	}
	if deps.Sink == nil {
		return nil, errorwrapper.NewValidationError("sink", nil, "output sink cannot be nil")
	}
	l := logger.With().Str("component", "Pipeline").Logger()
	return &Pipeline{
		cfg:        cfg,
		deps:       deps,
		classifier: severity.NewClassifier(l),
		logger:     l,
		now:        time.Now,
	}, nil
}

// Run loads the targets and executes each action in order. The returned
// error is non-nil only for fatal conditions (unreadable input, invalid
// request); branch failures are reported in the summary. Cancelling ctx
// stops scheduling further actions and yields an INTERRUPTED summary.
func (p *Pipeline) Run(ctx context.Context, req Request) (models.RunSummary, error) {
	started := p.now()
	builder := models.NewRunSummaryBuilder().
		WithRunID(req.RunID).
		WithInput(req.Input).
		WithOutputPath(req.OutputPath).
		WithStartedAt(started)

	actions := normalizeActions(req.Actions)
	if err := config.ValidateActions(actions); err != nil {
		return builder.Build(), err
	}

	targets, err := urlhandler.LoadTargets(req.Input, p.logger)
	if err != nil {
		p.logger.Error().Err(err).Str("input", req.Input).Msg("Failed to load targets")
		return builder.Build(), err
	}
	p.logger.Info().Int("targets", len(targets)).Strs("actions", actions).Str("run_id", req.RunID).Msg("Targets loaded")

	if p.deps.History != nil {
		if err := p.deps.History.RecordRunStart(ctx, req.RunID, req.Input, started); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to record run start in history")
		}
	}

	for _, action := range actions {
		if ctx.Err() != nil {
			p.logger.Warn().Str("action", action).Msg("Run cancelled, not starting remaining actions")
			break
		}
		summary := p.runAction(ctx, req, action, targets)
		builder.AddAction(summary)
		if p.deps.Metrics != nil {
			p.deps.Metrics.ObserveAction(summary)
		}
	}

	run := builder.
		WithDuration(p.now().Sub(started)).
		WithInterrupted(ctx.Err() != nil).
		Build()

	// bookkeeping must survive an interrupted run
	bg := context.WithoutCancel(ctx)
	if p.deps.History != nil {
		if err := p.deps.History.RecordRunCompletion(bg, run); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to record run completion in history")
		}
	}
	if p.deps.Metrics != nil {
		p.deps.Metrics.ObserveRun(run)
		if err := p.deps.Metrics.WriteTextfile(p.cfg.MetricsConfig.TextfilePath); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to write metrics textfile")
		}
	}

	p.logger.Info().
		Str("status", string(run.Status)).
		Int("findings", run.TotalFindings()).
		Dur("duration", run.Duration).
		Msg("Run finished")
	return run, nil
}

func (p *Pipeline) runAction(ctx context.Context, req Request, action string, targets []string) models.ActionSummary {
	start := p.now()
	summary := models.NewActionSummary(action)
	summary.RawTargets = len(targets)
	br := &branch{
		pipeline: p,
		runID:    req.RunID,
		req:      req,
		summary:  summary,
		logger:   p.logger.With().Str("action", action).Logger(),
	}

	var err error
	switch action {
	case config.ActionXSS:
		err = br.runXSS(ctx, targets)
	case config.ActionParams:
		err = br.runParams(ctx, targets)
	case config.ActionNuclei:
		err = br.runNuclei(ctx, targets)
	case config.ActionTakeover:
		err = br.runTakeover(ctx, targets)
	case config.ActionCRLF:
		err = br.runCRLF(ctx, targets)
	case config.ActionMethods:
		err = br.runNative(ctx, targets, func(c HTTPClient) scanner.Check {
			return scanner.NewMethodScanner(c, p.logger)
		})
	case config.ActionCORS:
		err = br.runNative(ctx, targets, func(c HTTPClient) scanner.Check {
			return scanner.NewCORSScanner(c, p.logger)
		})
	case config.ActionLinks, config.ActionSecrets:
		err = br.runExtractor(ctx, targets)
	default:
		err = errorwrapper.NewValidationError("action", action, "unknown action")
	}

	if archErr := br.archive(context.WithoutCancel(ctx), start); archErr != nil {
		br.warn("archive: " + archErr.Error())
	}

	summary.Duration = p.now().Sub(start)
	summary.Status = branchStatus(ctx, summary, err)
	if err != nil {
		summary.Error = err.Error()
		br.logger.Error().Err(err).Msg("Action failed")
	}
	br.logger.Info().
		Str("status", string(summary.Status)).
		Int("raw_targets", summary.RawTargets).
		Int("unique_targets", summary.UniqueTargets).
		Int("findings", summary.Findings).
		Dur("duration", summary.Duration).
		Msg("Action finished")
	return *summary
}

func branchStatus(ctx context.Context, s *models.ActionSummary, err error) models.RunStatus {
	switch {
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		return models.RunStatusInterrupted
	case err != nil:
		return models.RunStatusFailed
	case s.UniqueTargets == 0:
		return models.RunStatusNoTargets
	case len(s.Warnings) > 0:
		return models.RunStatusCompletedWithIssues
	default:
		return models.RunStatusCompleted
	}
}

func normalizeActions(actions []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, a := range actions {
		for _, part := range strings.Split(a, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}

// ParseActions splits a comma-separated -action value
func ParseActions(raw string) []string {
	return normalizeActions([]string{raw})
}

func removeAll(path string, logger zerolog.Logger) {
	if err := os.RemoveAll(path); err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("Failed to remove work directory")
	}
}
