package pipeline

import (
	"context"

	"github.com/aleister1102/ayumi/internal/common/errorwrapper"
	"github.com/aleister1102/ayumi/internal/config"
	"github.com/aleister1102/ayumi/internal/dedupe"
	"github.com/aleister1102/ayumi/internal/extractor"
	"github.com/aleister1102/ayumi/internal/scanner"
)

func (b *branch) runNative(ctx context.Context, targets []string, newCheck func(HTTPClient) scanner.Check) error {
	client := b.pipeline.deps.HTTP
	if client == nil {
		return errorwrapper.NewValidationError("http_client", nil, "HTTP client is required for native scans")
	}
	unique := b.dedupe(targets, dedupe.StrategyEndpoint, b.req.Richer)
	if len(unique) == 0 {
		return nil
	}

	check := newCheck(client)
	b.summary.Tool = check.Name()
	runner := scanner.NewRunner(b.pipeline.cfg.ScannerConfig.Workers, b.logger)
	return runner.Run(ctx, unique, check, b.emit)
}

func (b *branch) runExtractor(ctx context.Context, targets []string) error {
	client := b.pipeline.deps.HTTP
	if client == nil {
		return errorwrapper.NewValidationError("http_client", nil, "HTTP client is required for content extraction")
	}
	b.summary.Tool = "extractor"

	unique := distinct(targets)
	b.summary.UniqueTargets = len(unique)
	if len(unique) == 0 {
		return nil
	}

	patterns, err := b.patternsFor(b.summary.Action)
	if err != nil {
		return err
	}

	cfg := b.pipeline.cfg.ExtractorConfig
	ex, err := extractor.NewExtractor(client, patterns, b.logger,
		extractor.WithWorkers(cfg.Workers),
		extractor.WithLinkAnalysis(b.summary.Action == config.ActionLinks),
	)
	if err != nil {
		return err
	}
	return ex.Extract(ctx, unique, matchSink{b: b})
}

// patternsFor returns the built-in set of action merged with the configured
// pattern file and inline expressions
func (b *branch) patternsFor(action string) (*extractor.PatternSet, error) {
	set, err := extractor.BuiltinSet(action)
	if err != nil {
		return nil, err
	}

	cfg := b.pipeline.cfg.ExtractorConfig
	if cfg.PatternFile != "" {
		fromFile, err := extractor.LoadPatternFile(cfg.PatternFile, b.logger)
		if err != nil {
			return nil, err
		}
		set = set.Merge(fromFile)
	}
	if len(cfg.CustomRegexes) > 0 {
		set = set.Merge(extractor.CompilePatterns(cfg.CustomRegexes, b.logger))
	}
	return set, nil
}

// distinct drops exact repeats, keeping first-seen order
func distinct(targets []string) []string {
	seen := make(map[string]struct{}, len(targets))
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
