package extractor

import (
	"context"
	"net/url"
	"time"

	"github.com/aleister1102/ayumi/internal/common/errorwrapper"
	"github.com/aleister1102/ayumi/internal/httpclient"
	"github.com/aleister1102/ayumi/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the pool size used when none is configured
const DefaultWorkers = 5

// Fetcher retrieves the body of one target
type Fetcher interface {
	FetchContent(ctx context.Context, targetURL string) (*httpclient.FetchContentResult, error)
}

// Sink receives every match. It must serialise concurrent writes.
type Sink interface {
	Write(v any) error
}

// Option configures an Extractor
type Option func(*Extractor)

// WithWorkers sets the pool size
func WithWorkers(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLinkAnalysis enables the HTML and JavaScript link analyzers
func WithLinkAnalysis(enabled bool) Option {
	return func(e *Extractor) {
		e.analyzeLinks = enabled
	}
}

// Extractor fetches each target once in a bounded pool and applies a
// shared PatternSet to the body.
type Extractor struct {
	fetcher      Fetcher
	patterns     *PatternSet
	workers      int
	analyzeLinks bool
	html         *HTMLAnalyzer
	js           *JSluiceAnalyzer
	logger       zerolog.Logger
}

// NewExtractor creates an Extractor. At least one pattern or link analysis is required.
func NewExtractor(fetcher Fetcher, patterns *PatternSet, logger zerolog.Logger, opts ...Option) (*Extractor, error) {
	if fetcher == nil {
		return nil, errorwrapper.NewValidationError("fetcher", nil, "fetcher cannot be nil")
	}

	l := logger.With().Str("component", "ContentExtractor").Logger()
	validator := NewURLValidator(l)
	e := &Extractor{
		fetcher:  fetcher,
		patterns: patterns,
		workers:  DefaultWorkers,
		html:     NewHTMLAnalyzer(validator, l),
		js:       NewJSluiceAnalyzer(validator, l),
		logger:   l,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.patterns.Len() == 0 && !e.analyzeLinks {
		return nil, errorwrapper.NewValidationError("patterns", 0, "no valid patterns to apply")
	}
	return e, nil
}

// Extract processes every target and streams matches to sink. A target
// that cannot be fetched yields exactly one error match. Once ctx is
// cancelled no new target is started; fetches already running complete
// or time out on their own.
func (e *Extractor) Extract(ctx context.Context, targets []string, sink Sink) error {
	started := time.Now()
	e.logger.Info().
		Int("targets", len(targets)).
		Int("workers", e.workers).
		Int("patterns", e.patterns.Len()).
		Bool("link_analysis", e.analyzeLinks).
		Msg("Starting content extraction")

	var g errgroup.Group
	g.SetLimit(e.workers)

	scheduled := 0
	for _, target := range targets {
		if ctx.Err() != nil {
			e.logger.Warn().Int("skipped", len(targets)-scheduled).Msg("Extraction cancelled, not scheduling remaining targets")
			break
		}
		scheduled++
		g.Go(func() error {
			return e.process(context.WithoutCancel(ctx), target, sink)
		})
	}

	err := g.Wait()
	e.logger.Info().
		Int("processed", scheduled).
		Dur("duration", time.Since(started)).
		Msg("Content extraction finished")
	if err != nil {
		return err
	}
	return ctx.Err()
}

func (e *Extractor) process(ctx context.Context, target string, sink Sink) error {
	result, err := e.fetcher.FetchContent(ctx, target)
	if err != nil {
		e.logger.Debug().Err(err).Str("target", target).Msg("Fetch failed")
		return sink.Write(models.NewErrorMatch(target, err))
	}

	matches := e.Match(target, result.Content, result.ContentType)
	for _, m := range matches {
		if err := sink.Write(m); err != nil {
			return errorwrapper.WrapError(err, "failed to write match")
		}
	}
	e.logger.Debug().Str("target", target).Int("matches", len(matches)).Msg("Target processed")
	return nil
}

// Match applies the pattern set, and the link analyzers when enabled, to
// one body. Duplicate (pattern, match) pairs are reported once.
func (e *Extractor) Match(target string, content []byte, contentType string) []models.RegexMatch {
	var matches []models.RegexMatch
	body := string(content)

	for _, p := range e.patterns.Patterns() {
		reported := make(map[string]struct{})
		for _, s := range p.find(body) {
			if _, dup := reported[s.text]; dup {
				continue
			}
			reported[s.text] = struct{}{}
			matches = append(matches, models.RegexMatch{
				Target:  target,
				Pattern: p.Name,
				Match:   s.text,
				Start:   s.start,
				End:     s.end,
			})
		}
	}

	if !e.analyzeLinks {
		return matches
	}

	base, err := url.Parse(target)
	if err != nil {
		return matches
	}
	seen := make(map[string]struct{})
	if isHTML(contentType, content) {
		matches = append(matches, e.html.Analyze(target, content, base, seen)...)
	}
	if isJavaScript(target, contentType) {
		matches = append(matches, e.js.Analyze(target, content, base, seen)...)
	}
	return matches
}
