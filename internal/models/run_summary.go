package models

import "time"

// RunStatus defines the possible states of a run or one of its action branches.
type RunStatus string

const (
	RunStatusStarted             RunStatus = "STARTED"
	RunStatusCompleted           RunStatus = "COMPLETED"
	RunStatusCompletedWithIssues RunStatus = "COMPLETED_WITH_ISSUES"
	RunStatusFailed              RunStatus = "FAILED"
	RunStatusInterrupted         RunStatus = "INTERRUPTED"
	RunStatusNoTargets           RunStatus = "NO_TARGETS"
)

// ActionSummary holds counts for one action branch (xss, params, links, ...)
type ActionSummary struct {
	Action        string
	Tool          string
	RawTargets    int
	UniqueTargets int
	Findings      int
	BySeverity    map[Severity]int
	ByKind        map[string]int
	Status        RunStatus
	Warnings      []string
	Error         string
	Duration      time.Duration
}

// NewActionSummary returns an empty summary for action
func NewActionSummary(action string) *ActionSummary {
	return &ActionSummary{
		Action:     action,
		BySeverity: make(map[Severity]int),
		ByKind:     make(map[string]int),
		Status:     RunStatusStarted,
	}
}

// Record counts one emitted finding
func (a *ActionSummary) Record(f Finding) {
	a.Findings++
	a.BySeverity[f.Severity]++
	a.ByKind[f.Kind]++
}

// RecordMatch counts one extracted match; error markers are counted under their own kind
func (a *ActionSummary) RecordMatch(m RegexMatch) {
	a.Findings++
	a.ByKind[m.Pattern]++
}

// RunSummary is the operator-facing result of a whole invocation
type RunSummary struct {
	RunID      string
	Input      string
	OutputPath string
	StartedAt  time.Time
	Duration   time.Duration
	Actions    []ActionSummary
	Status     RunStatus
}

// TotalFindings sums findings across all branches
func (s RunSummary) TotalFindings() int {
	total := 0
	for _, a := range s.Actions {
		total += a.Findings
	}
	return total
}

// RunSummaryBuilder helps in constructing RunSummary objects.
type RunSummaryBuilder struct {
	summary     RunSummary
	interrupted bool
}

// NewRunSummaryBuilder creates a new builder with a STARTED status
func NewRunSummaryBuilder() *RunSummaryBuilder {
	return &RunSummaryBuilder{
		summary: RunSummary{Status: RunStatusStarted},
	}
}

// WithRunID sets the run identifier.
func (b *RunSummaryBuilder) WithRunID(runID string) *RunSummaryBuilder {
	b.summary.RunID = runID
	return b
}

// WithInput sets the input descriptor (file path or literal target).
func (b *RunSummaryBuilder) WithInput(input string) *RunSummaryBuilder {
	b.summary.Input = input
	return b
}

// WithOutputPath sets the JSONL result path.
func (b *RunSummaryBuilder) WithOutputPath(path string) *RunSummaryBuilder {
	b.summary.OutputPath = path
	return b
}

// WithStartedAt sets the start time.
func (b *RunSummaryBuilder) WithStartedAt(t time.Time) *RunSummaryBuilder {
	b.summary.StartedAt = t
	return b
}

// WithDuration sets the total duration.
func (b *RunSummaryBuilder) WithDuration(d time.Duration) *RunSummaryBuilder {
	b.summary.Duration = d
	return b
}

// WithInterrupted marks the run as cancelled by the operator.
func (b *RunSummaryBuilder) WithInterrupted(interrupted bool) *RunSummaryBuilder {
	b.interrupted = interrupted
	return b
}

// AddAction appends a finished branch.
func (b *RunSummaryBuilder) AddAction(a ActionSummary) *RunSummaryBuilder {
	b.summary.Actions = append(b.summary.Actions, a)
	return b
}

// Build derives the overall status from the branches and returns the summary.
func (b *RunSummaryBuilder) Build() RunSummary {
	s := b.summary
	s.Status = overallStatus(s.Actions, b.interrupted)
	return s
}

func overallStatus(actions []ActionSummary, interrupted bool) RunStatus {
	if interrupted {
		return RunStatusInterrupted
	}
	if len(actions) == 0 {
		return RunStatusNoTargets
	}

	failed, issues, empty := 0, 0, 0
	for _, a := range actions {
		switch a.Status {
		case RunStatusFailed:
			failed++
		case RunStatusCompletedWithIssues:
			issues++
		case RunStatusNoTargets:
			empty++
		}
	}

	switch {
	case failed == len(actions):
		return RunStatusFailed
	case empty == len(actions):
		return RunStatusNoTargets
	case failed > 0 || issues > 0:
		return RunStatusCompletedWithIssues
	default:
		return RunStatusCompleted
	}
}
