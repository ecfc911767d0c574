package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/aleister1102/ayumi/internal/config"
	"github.com/aleister1102/ayumi/internal/datastore"
	"github.com/aleister1102/ayumi/internal/httpclient"
	"github.com/aleister1102/ayumi/internal/logger"
	"github.com/aleister1102/ayumi/internal/metrics"
	"github.com/aleister1102/ayumi/internal/models"
	"github.com/aleister1102/ayumi/internal/output"
	"github.com/aleister1102/ayumi/internal/pipeline"
	"github.com/aleister1102/ayumi/internal/probe"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultResultFile = "ayumi_results.jsonl"

func main() {
	flags := ParseFlags()
	os.Exit(run(flags))
}

func run(flags AppFlags) int {
	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile, zerolog.Nop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] Could not load global config using path '%s': %v\n", flags.GlobalConfigFile, err)
		return 1
	}
	flags.apply(gCfg)

	if err := config.ValidateConfig(gCfg); err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		return 1
	}

	runID := uuid.NewString()
	zLogger, err := logger.NewWithRunID(gCfg.LogConfig, runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] Could not initialize logger: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outputPath := flags.Output
	if outputPath == "" {
		outputPath = filepath.Join(gCfg.OutputConfig.Directory, defaultResultFile)
	}
	writer, err := output.OpenJSONL(outputPath)
	if err != nil {
		zLogger.Error().Err(err).Str("path", outputPath).Msg("Could not open result file")
		return 1
	}
	defer func() {
		if err := writer.Close(); err != nil {
			zLogger.Warn().Err(err).Msg("Failed to close result file")
		}
	}()

	deps, cleanup, err := buildDeps(gCfg, writer, zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Could not initialize components")
		return 1
	}
	defer cleanup()

	p, err := pipeline.New(gCfg, deps, zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Could not create pipeline")
		return 1
	}

	summary, err := p.Run(ctx, pipeline.Request{
		RunID:      runID,
		Input:      flags.Input,
		Actions:    pipeline.ParseActions(flags.Actions),
		OutputPath: outputPath,
		Richer:     flags.Richer,
	})
	if err != nil {
		zLogger.Error().Err(err).Msg("Run aborted")
		return 1
	}

	usage := output.CollectResourceUsage()
	if err := output.NewSummary(summary, &usage, gCfg.OutputConfig.NoColor).Print(os.Stdout); err != nil {
		zLogger.Warn().Err(err).Msg("Failed to print run summary")
	}

	switch summary.Status {
	case models.RunStatusFailed:
		return 1
	case models.RunStatusInterrupted:
		return 130
	default:
		return 0
	}
}

// buildDeps wires the pipeline collaborators. Optional stores that fail to
// open are logged and skipped.
func buildDeps(gCfg *config.GlobalConfig, sink pipeline.Sink, zLogger zerolog.Logger) (pipeline.Deps, func(), error) {
	deps := pipeline.Deps{
		Invoker: probe.NewExecInvoker(gCfg.ProbeConfig, zLogger),
		Sink:    sink,
	}
	cleanup := func() {}

	client, err := newHTTPClient(gCfg, zLogger)
	if err != nil {
		return deps, cleanup, err
	}
	deps.HTTP = client

	if gCfg.StorageConfig.EnableHistory {
		history, err := datastore.NewHistoryDB(gCfg.StorageConfig.HistoryDBPath, zLogger)
		if err != nil {
			zLogger.Warn().Err(err).Msg("Run history disabled")
		} else {
			deps.History = history
			cleanup = func() {
				if err := history.Close(); err != nil {
					zLogger.Warn().Err(err).Msg("Failed to close history database")
				}
			}
		}
	}

	if gCfg.StorageConfig.EnableArchive {
		archive, err := datastore.NewFindingsArchive(gCfg.StorageConfig, zLogger)
		if err != nil {
			zLogger.Warn().Err(err).Msg("Findings archive disabled")
		} else {
			deps.Archive = archive
		}
	}

	if gCfg.MetricsConfig.TextfilePath != "" {
		recorder, err := metrics.NewRecorder(zLogger)
		if err != nil {
			zLogger.Warn().Err(err).Msg("Metrics disabled")
		} else {
			deps.Metrics = recorder
		}
	}

	return deps, cleanup, nil
}

// newHTTPClient builds the client shared by the native scanners and the
// content extractor
func newHTTPClient(gCfg *config.GlobalConfig, zLogger zerolog.Logger) (*httpclient.HTTPClient, error) {
	timeout := gCfg.ExtractorConfig.Timeout()
	if st := gCfg.ScannerConfig.Timeout(); st > timeout {
		timeout = st
	}
	return httpclient.NewHTTPClientBuilder(zLogger).
		WithTimeout(timeout).
		WithInsecureSkipVerify(true).
		WithUserAgent(gCfg.RequestConfig.UserAgent).
		WithUserAgents(gCfg.RequestConfig.UserAgents).
		WithHeaders(gCfg.RequestConfig.HeaderMap()).
		WithCookies(gCfg.RequestConfig.CookieMap()).
		WithMaxContentSize(gCfg.ExtractorConfig.MaxContentSizeMB * 1024 * 1024).
		WithRateLimit(gCfg.ExtractorConfig.RequestsPerSec).
		WithHTTP2(gCfg.ExtractorConfig.EnableHTTP2).
		Build()
}
