package severity

import (
	"net/http"
	"strings"

	"github.com/aleister1102/ayumi/internal/models"
	"github.com/rs/zerolog"
)

// Level is the ordered severity tier: info < low < medium < high
type Level = models.Severity

// Classifier assigns a severity to each finding from its family and signals.
// It is stateless and safe for concurrent use.
type Classifier struct {
	logger zerolog.Logger
}

// NewClassifier creates a Classifier
func NewClassifier(logger zerolog.Logger) *Classifier {
	return &Classifier{
		logger: logger.With().Str("component", "SeverityClassifier").Logger(),
	}
}

// Classify returns f with Severity set. Findings of unknown family keep a
// valid severity reported by the tool, otherwise they fall back to medium.
func (c *Classifier) Classify(f models.Finding) models.Finding {
	family := familyOf(f)
	switch family {
	case models.FamilyXSS:
		f.Severity = xssSeverity(f.Kind, f.Severity)
	case models.FamilyMethods:
		f.Severity = MethodSeverity(methodOf(f), f.StatusCode)
	case models.FamilyCORS:
		f.Severity = CORSSeverity(f.Kind)
	case models.FamilyParams:
		f.Severity = models.SeverityLow
	default:
		f.Severity = keepOr(f.Severity, models.SeverityMedium)
	}

	c.logger.Trace().
		Str("target", f.Target).
		Str("family", family).
		Str("kind", f.Kind).
		Str("severity", string(f.Severity)).
		Msg("Classified finding")
	return f
}

// ClassifyAll classifies findings in place and returns the slice
func (c *Classifier) ClassifyAll(findings []models.Finding) []models.Finding {
	for i := range findings {
		findings[i] = c.Classify(findings[i])
	}
	return findings
}

// familyOf prefers the tool name and falls back to the kind
func familyOf(f models.Finding) string {
	if family := f.Family(); family != models.FamilyUnknown {
		return family
	}
	kind := strings.ToLower(f.Kind)
	switch {
	case kind == models.KindVerified || kind == models.KindReflected || kind == models.KindGrep:
		return models.FamilyXSS
	case kind == models.KindParameter:
		return models.FamilyParams
	case kind == models.KindCRLF:
		return models.FamilyCRLF
	case strings.HasPrefix(kind, models.KindCORSOriginReflected) || strings.HasPrefix(kind, models.KindCORSWildcard):
		return models.FamilyCORS
	case isDangerousMethod(kind):
		return models.FamilyMethods
	}
	return models.FamilyUnknown
}

// xssSeverity ranks the dalfox kinds; other kinds keep a valid reported severity
func xssSeverity(kind string, reported Level) Level {
	switch strings.ToLower(kind) {
	case models.KindVerified:
		return models.SeverityHigh
	case models.KindReflected:
		return models.SeverityMedium
	case models.KindGrep:
		return models.SeverityInfo
	default:
		return keepOr(reported, models.SeverityMedium)
	}
}

// MethodBlocked reports a status meaning the server refused the method
func MethodBlocked(status int) bool {
	return status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented
}

// MethodSeverity grades a dangerous-method probe by method and response status
func MethodSeverity(method string, status int) Level {
	method = strings.ToUpper(method)
	switch {
	case method == http.MethodDelete && (status == http.StatusOK || status == http.StatusNoContent):
		return models.SeverityHigh
	case (method == http.MethodPut || method == http.MethodPatch) &&
		(status == http.StatusOK || status == http.StatusCreated || status == http.StatusNoContent):
		return models.SeverityHigh
	case status == http.StatusOK || status == http.StatusCreated || status == http.StatusAccepted || status == http.StatusNoContent:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// CORSSeverity grades a CORS misconfiguration kind
func CORSSeverity(kind string) Level {
	if models.HasCredentials(kind) {
		return models.SeverityHigh
	}
	return models.SeverityMedium
}

func methodOf(f models.Finding) string {
	if f.Method != "" {
		return f.Method
	}
	return f.Kind
}

func isDangerousMethod(m string) bool {
	switch strings.ToUpper(m) {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func keepOr(current, fallback Level) Level {
	if current.IsValid() {
		return current
	}
	return fallback
}
