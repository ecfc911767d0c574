package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverity_Rank(t *testing.T) {
	assert.Less(t, SeverityInfo.Rank(), SeverityLow.Rank())
	assert.Less(t, SeverityLow.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityHigh.Rank())
	assert.False(t, Severity("urgent").IsValid())
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		raw  string
		want Severity
		ok   bool
	}{
		{"High", SeverityHigh, true},
		{"critical", SeverityHigh, true},
		{" medium ", SeverityMedium, true},
		{"INFO", SeverityInfo, true},
		{"V", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseSeverity(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestFamilyForTool(t *testing.T) {
	assert.Equal(t, FamilyXSS, FamilyForTool("dalfox"))
	assert.Equal(t, FamilyParams, FamilyForTool("x8"))
	assert.Equal(t, FamilyCRLF, FamilyForTool("crlfuzz"))
	assert.Equal(t, FamilyUnknown, FamilyForTool("mystery"))
}

func TestNewErrorMatch(t *testing.T) {
	m := NewErrorMatch("https://a.com", errors.New("timeout"))

	assert.True(t, m.IsError())
	assert.Equal(t, "timeout", m.Error)
	assert.Equal(t, "https://a.com", m.Target)
}

func TestFinding_ToParquet(t *testing.T) {
	f := Finding{Target: "https://a.com", Kind: "PUT", Severity: SeverityHigh, StatusCode: 201}
	row := f.ToParquet("run-1", "methods", 42)

	assert.Equal(t, "run-1", row.RunID)
	assert.Equal(t, "high", row.Severity)
	if assert.NotNil(t, row.StatusCode) {
		assert.Equal(t, int32(201), *row.StatusCode)
	}
	assert.Nil(t, row.Evidence)
	assert.Equal(t, int64(42), row.ScanTimestamp)
}

func TestRunSummaryBuilder_Status(t *testing.T) {
	ok := *NewActionSummary("xss")
	ok.Status = RunStatusCompleted
	failed := *NewActionSummary("params")
	failed.Status = RunStatusFailed

	assert.Equal(t, RunStatusCompleted, NewRunSummaryBuilder().AddAction(ok).Build().Status)
	assert.Equal(t, RunStatusCompletedWithIssues, NewRunSummaryBuilder().AddAction(ok).AddAction(failed).Build().Status)
	assert.Equal(t, RunStatusFailed, NewRunSummaryBuilder().AddAction(failed).Build().Status)
	assert.Equal(t, RunStatusInterrupted, NewRunSummaryBuilder().AddAction(ok).WithInterrupted(true).Build().Status)
	assert.Equal(t, RunStatusNoTargets, NewRunSummaryBuilder().Build().Status)
}

func TestActionSummary_Record(t *testing.T) {
	a := NewActionSummary("xss")
	a.Record(Finding{Kind: "verified", Severity: SeverityHigh})
	a.Record(Finding{Kind: "reflected", Severity: SeverityMedium})
	a.Record(Finding{Kind: "verified", Severity: SeverityHigh})

	assert.Equal(t, 3, a.Findings)
	assert.Equal(t, 2, a.BySeverity[SeverityHigh])
	assert.Equal(t, 1, a.ByKind["reflected"])

	s := NewRunSummaryBuilder().AddAction(*a).Build()
	assert.Equal(t, 3, s.TotalFindings())
}
