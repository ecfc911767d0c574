package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aleister1102/ayumi/internal/dedupe"
	"github.com/aleister1102/ayumi/internal/models"
	"github.com/rs/zerolog"
)

// branch carries the state of one action while it runs
type branch struct {
	pipeline *Pipeline
	runID    string
	req      Request
	summary  *models.ActionSummary
	logger   zerolog.Logger

	mu       sync.Mutex
	archived []models.Finding
}

func (b *branch) warn(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.summary.Warnings = append(b.summary.Warnings, msg)
	b.logger.Warn().Msg(msg)
}

// dedupe collapses targets and records the unique count
func (b *branch) dedupe(targets []string, strategy dedupe.Strategy, richer bool) []string {
	var opts []dedupe.Option
	if richer {
		opts = append(opts, dedupe.WithRicher())
	}
	d := dedupe.NewDeduplicator(strategy, b.logger, opts...)
	unique := d.Dedupe(targets)
	b.summary.UniqueTargets = len(unique)
	return unique
}

// emit stamps, classifies and writes one finding. Safe for concurrent use.
func (b *branch) emit(f models.Finding) error {
	p := b.pipeline
	if f.Timestamp.IsZero() {
		f.Timestamp = p.now().UTC()
	}
	f = p.classifier.Classify(f)
	f.RecordType = models.RecordTypeFinding

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := p.deps.Sink.Write(f); err != nil {
		return fmt.Errorf("failed to write finding: %w", err)
	}
	b.summary.Record(f)
	if p.deps.Metrics != nil {
		p.deps.Metrics.ObserveFinding(b.summary.Action, f.Severity)
	}
	if p.deps.Archive != nil {
		b.archived = append(b.archived, f)
	}
	return nil
}

// emitMatch writes one extractor match. Safe for concurrent use.
func (b *branch) emitMatch(m models.RegexMatch) error {
	m.RecordType = models.RecordTypeMatch
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.pipeline.deps.Sink.Write(m); err != nil {
		return fmt.Errorf("failed to write match: %w", err)
	}
	b.summary.RecordMatch(m)
	return nil
}

func (b *branch) archive(ctx context.Context, scanTime time.Time) error {
	archive := b.pipeline.deps.Archive
	if archive == nil || len(b.archived) == 0 {
		return nil
	}
	_, err := archive.Store(ctx, b.runID, b.summary.Action, scanTime, b.archived)
	return err
}

// matchSink adapts a branch to the extractor's Sink
type matchSink struct {
	b *branch
}

func (s matchSink) Write(v any) error {
	if m, ok := v.(models.RegexMatch); ok {
		return s.b.emitMatch(m)
	}
	return s.b.pipeline.deps.Sink.Write(v)
}
