package models

import (
	"strings"
	"time"
)

// Severity is an ordered risk tier: info < low < medium < high
type Severity string

const (
	SeverityInfo   Severity = "info"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// AllSeverities lists tiers from highest to lowest, the order used in summaries
var AllSeverities = []Severity{SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}

// Rank returns the ordinal of the tier; unknown values rank 0
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityLow:
		return 2
	case SeverityMedium:
		return 3
	case SeverityHigh:
		return 4
	default:
		return 0
	}
}

// IsValid reports whether s is one of the four tiers
func (s Severity) IsValid() bool {
	return s.Rank() > 0
}

// ParseSeverity maps a case-insensitive tier name; "critical" folds into high.
func ParseSeverity(raw string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "info", "informational":
		return SeverityInfo, true
	case "low":
		return SeverityLow, true
	case "medium", "moderate":
		return SeverityMedium, true
	case "high", "critical":
		return SeverityHigh, true
	}
	return "", false
}

// Finding is the canonical record produced from any probe's output.
// It is written to the result stream once classified.
type Finding struct {
	RecordType string    `json:"record_type"`
	Target     string    `json:"target"`
	Kind       string    `json:"kind"`
	Severity   Severity  `json:"severity"`
	Evidence   string    `json:"evidence"`
	Parameter  string    `json:"parameter,omitempty"`
	Payload    string    `json:"payload,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
	Method     string    `json:"method,omitempty"`
	Parameters []string  `json:"parameters,omitempty"`
	Tool       string    `json:"tool,omitempty"`
	CWE        string    `json:"cwe,omitempty"`
	Timestamp  time.Time `json:"timestamp,omitzero"`
}

// Family returns the probe family of the finding, derived from Tool
func (f Finding) Family() string {
	return FamilyForTool(f.Tool)
}

// Probe families used by the severity classifier
const (
	FamilyXSS     = "xss"
	FamilyMethods = "methods"
	FamilyCORS    = "cors"
	FamilyParams  = "params"
	FamilyNuclei  = "nuclei"
	FamilyCRLF    = "crlf"
	FamilyUnknown = ""
)

// FamilyForTool maps a tool name to its probe family
func FamilyForTool(tool string) string {
	switch strings.ToLower(tool) {
	case "dalfox", FamilyXSS:
		return FamilyXSS
	case "x8", FamilyParams:
		return FamilyParams
	case FamilyMethods, "http-methods":
		return FamilyMethods
	case FamilyCORS:
		return FamilyCORS
	case FamilyNuclei:
		return FamilyNuclei
	case "crlfuzz", FamilyCRLF:
		return FamilyCRLF
	default:
		return FamilyUnknown
	}
}
