package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aleister1102/ayumi/internal/common/errorwrapper"
	"github.com/aleister1102/ayumi/internal/common/filemanager"
	"github.com/aleister1102/ayumi/internal/config"
	"github.com/aleister1102/ayumi/internal/dedupe"
	"github.com/aleister1102/ayumi/internal/models"
	"github.com/aleister1102/ayumi/internal/parser"
	"github.com/aleister1102/ayumi/internal/probe"
	"github.com/aleister1102/ayumi/internal/urlhandler"
)

// argsFunc builds a tool's argument list from its list and output files
type argsFunc func(targetsFile, outputFile string) []string

func (b *branch) runXSS(ctx context.Context, targets []string) error {
	withQuery := urlhandler.FilterWithQuery(targets)
	b.logger.Info().Int("raw", len(targets)).Int("with_query", len(withQuery)).Msg("Filtered targets with a query string")

	unique := b.dedupe(withQuery, dedupe.StrategyPattern, b.req.Richer)
	cfg := b.pipeline.cfg
	_, err := b.runProbe(ctx, probe.ToolDalfox, unique, func(targetsFile, outputFile string) []string {
		return probe.DalfoxArgs(probe.NewDalfoxOptions(cfg.XSSConfig, cfg.RequestConfig, targetsFile, outputFile))
	})
	return err
}

func (b *branch) runParams(ctx context.Context, targets []string) error {
	cfg := b.pipeline.cfg
	unique := b.dedupe(targets, dedupe.StrategyEndpoint, true)
	if len(unique) == 0 {
		return nil
	}

	wordlist, err := cfg.ParamConfig.ResolveWordlist()
	if err != nil {
		return err
	}
	b.logger.Debug().Str("wordlist", wordlist).Msg("Using parameter wordlist")

	findings, err := b.runProbe(ctx, probe.ToolX8, unique, func(targetsFile, outputFile string) []string {
		return probe.X8Args(probe.NewX8Options(cfg.ParamConfig, cfg.RequestConfig, targetsFile, outputFile, wordlist))
	})
	if len(findings) > 0 {
		if werr := b.writeEnrichedURLs(findings); werr != nil {
			b.warn("enriched URLs: " + werr.Error())
		}
	}
	return err
}

func (b *branch) runNuclei(ctx context.Context, targets []string) error {
	cfg := b.pipeline.cfg
	unique := b.dedupe(targets, dedupe.StrategyOrigin, false)
	_, err := b.runProbe(ctx, probe.ToolNuclei, unique, func(targetsFile, outputFile string) []string {
		return probe.NucleiArgs(probe.NucleiOptions{
			TargetsFile:  targetsFile,
			TemplatesDir: cfg.NucleiConfig.TemplatesDir,
			Severities:   cfg.NucleiConfig.Severities,
			OutputFile:   outputFile,
			Headers:      cfg.RequestConfig.Headers,
		})
	})
	return err
}

// runTakeover runs nuclei restricted to the subdomain takeover templates
func (b *branch) runTakeover(ctx context.Context, targets []string) error {
	cfg := b.pipeline.cfg
	templates := cfg.NucleiConfig.TakeoverTemplatesDir
	if templates == "" {
		templates = config.DefaultTakeoverTemplatesDir
	}
	unique := b.dedupe(targets, dedupe.StrategyOrigin, false)
	_, err := b.runProbe(ctx, probe.ToolNuclei, unique, func(targetsFile, outputFile string) []string {
		return probe.NucleiArgs(probe.NucleiOptions{
			TargetsFile:  targetsFile,
			TemplatesDir: templates,
			Severities:   cfg.NucleiConfig.TakeoverSeverities,
			OutputFile:   outputFile,
			Headers:      cfg.RequestConfig.Headers,
		})
	})
	return err
}

func (b *branch) runCRLF(ctx context.Context, targets []string) error {
	cfg := b.pipeline.cfg
	unique := b.dedupe(targets, dedupe.StrategyOrigin, false)
	_, err := b.runProbe(ctx, probe.ToolCRLFuzz, unique, func(targetsFile, outputFile string) []string {
		return probe.CRLFuzzArgs(probe.CRLFuzzOptions{
			TargetsFile: targetsFile,
			OutputFile:  outputFile,
			Headers:     cfg.RequestConfig.Headers,
		})
	})
	return err
}

// runProbe materialises targets, invokes tool once, parses whatever output
// exists and emits every finding. Timeouts and non-zero exits are warnings;
// the partial output is still used. Only a missing binary or an unusable
// work directory fails the branch.
func (b *branch) runProbe(ctx context.Context, tool string, targets []string, args argsFunc) ([]models.Finding, error) {
	b.summary.Tool = tool
	if len(targets) == 0 {
		b.logger.Info().Msg("No targets left after deduplication, skipping probe")
		return nil, nil
	}

	workDir, err := os.MkdirTemp("", "ayumi-"+tool+"-")
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create probe work directory")
	}
	defer removeAll(workDir, b.logger)

	targetsFile := filepath.Join(workDir, "targets.txt")
	outputFile := filepath.Join(workDir, tool+"_output.txt")
	if err := urlhandler.WriteTargetsFile(targetsFile, targets, b.logger); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to write probe targets")
	}

	result, invokeErr := b.pipeline.deps.Invoker.Invoke(ctx, probe.Invocation{
		Tool:       tool,
		Args:       args(targetsFile, outputFile),
		OutputPath: outputFile,
		Timeout:    b.pipeline.cfg.ProbeConfig.Timeout(),
	})
	if invokeErr != nil {
		if errors.Is(invokeErr, errorwrapper.ErrProbeNotFound) {
			return nil, invokeErr
		}
		switch {
		case errors.Is(invokeErr, errorwrapper.ErrProbeTimeout):
			b.warn(fmt.Sprintf("%s timed out, using partial output", tool))
		case errors.Is(invokeErr, errorwrapper.ErrProbeNonZeroExit):
			if b.pipeline.cfg.ProbeConfig.WarnOnNonZeroExit {
				b.warn(fmt.Sprintf("%s exited with code %d", tool, result.ExitCode))
			}
		case errors.Is(invokeErr, context.Canceled):
			b.logger.Warn().Msg("Probe cancelled, parsing partial output")
		default:
			b.warn(invokeErr.Error())
		}
	}

	findings := b.parse(tool, result)
	for _, f := range findings {
		if err := b.emit(f); err != nil {
			return findings, err
		}
	}
	if invokeErr != nil && errors.Is(invokeErr, context.Canceled) {
		return findings, invokeErr
	}
	return findings, nil
}

// parse reads the output file, falling back to stdout when the tool did not
// create one
func (b *branch) parse(tool string, result probe.Result) []models.Finding {
	p := parser.New(parser.SchemaFor(tool), b.logger)

	var (
		findings []models.Finding
		errs     []error
	)
	fm := filemanager.NewFileManager(b.logger)
	if result.OutputPath != "" && fm.FileExists(result.OutputPath) {
		findings, errs = p.ParseFile(result.OutputPath)
	} else {
		findings, errs = p.Parse(result.Stdout)
	}

	for _, err := range errs {
		b.logger.Debug().Err(err).Msg("Skipped unparseable output record")
	}
	if len(errs) > 0 {
		b.warn(fmt.Sprintf("%d %s output records could not be parsed", len(errs), tool))
	}
	b.logger.Info().Int("findings", len(findings)).Msg("Parsed probe output")
	return findings
}

// writeEnrichedURLs writes every discovered URL with its new parameters
// appended as name=FUZZ, next to the result stream
func (b *branch) writeEnrichedURLs(findings []models.Finding) error {
	name := b.pipeline.cfg.ParamConfig.EnrichedURLsFile
	if name == "" {
		name = config.DefaultEnrichedURLsFile
	}
	path := name
	if !filepath.IsAbs(path) && b.req.OutputPath != "" {
		path = filepath.Join(filepath.Dir(b.req.OutputPath), name)
	}

	seen := make(map[string]bool)
	var lines []string
	for _, f := range findings {
		if len(f.Parameters) == 0 {
			continue
		}
		enriched, err := urlhandler.AddFuzzParams(f.Target, f.Parameters)
		if err != nil {
			b.logger.Debug().Err(err).Str("target", f.Target).Msg("Skipping enriched URL")
			continue
		}
		if !seen[enriched] {
			seen[enriched] = true
			lines = append(lines, enriched)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	if err := urlhandler.WriteTargetsFile(path, lines, b.logger); err != nil {
		return err
	}
	b.logger.Info().Str("path", path).Int("urls", len(lines)).Msg("Wrote enriched URLs")
	return nil
}
