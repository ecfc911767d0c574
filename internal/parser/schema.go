package parser

import (
	"strings"

	"github.com/aleister1102/ayumi/internal/models"
)

// Aliases is an ordered list of accepted keys for one logical field.
// The first key present with a non-empty value wins. Dotted keys such as
// "info.severity" walk nested objects.
type Aliases []string

// Schema maps a probe's record fields onto models.Finding
type Schema struct {
	Tool        string
	Target      Aliases
	Kind        Aliases
	Severity    Aliases
	Evidence    Aliases
	Parameter   Aliases
	Payload     Aliases
	StatusCode  Aliases
	Method      Aliases
	Parameters  Aliases
	CWE         Aliases
	ToolField   Aliases
	Timestamp   Aliases
	DefaultKind string
	// KindMap rewrites raw kind values (compared case-insensitively)
	KindMap map[string]string
	// KindHint names fields searched for one of HintKinds. A kind found
	// there overrides a weaker resolved kind; HintKinds is strongest first.
	KindHint  Aliases
	HintKinds []string
	// RequireParameters drops records whose parameter list is empty
	RequireParameters bool
}

var xssKindMap = map[string]string{
	"v":         models.KindVerified,
	"verified":  models.KindVerified,
	"r":         models.KindReflected,
	"reflected": models.KindReflected,
	"g":         models.KindGrep,
	"grep":      models.KindGrep,
}

// DefaultSchema accepts the canonical output of this tool plus the common
// aliases seen across probes.
func DefaultSchema() Schema {
	return Schema{
		Target:      Aliases{"target", "data", "poc", "url", "matched-at", "host"},
		Kind:        Aliases{"kind", "type", "severity"},
		Severity:    Aliases{"severity", "info.severity"},
		Evidence:    Aliases{"evidence", "message_str", "message", "matcher-name", "info.name"},
		Parameter:   Aliases{"parameter", "param"},
		Payload:     Aliases{"payload"},
		StatusCode:  Aliases{"status_code", "statusCode", "status-code", "status"},
		Method:      Aliases{"method"},
		Parameters:  Aliases{"parameters", "found_params", "params"},
		CWE:         Aliases{"cwe"},
		ToolField:   Aliases{"tool"},
		Timestamp:   Aliases{"timestamp"},
		DefaultKind: models.KindFinding,
	}
}

// DalfoxSchema reads dalfox JSON, where "type" carries V/R/G and
// "inject_type" may carry "verified" or "reflected"
func DalfoxSchema() Schema {
	s := DefaultSchema()
	s.Tool = "dalfox"
	s.Kind = Aliases{"type", "kind"}
	s.Evidence = Aliases{"evidence", "message_str", "message", "inject_type"}
	s.KindMap = xssKindMap
	s.KindHint = Aliases{"inject_type"}
	s.HintKinds = []string{models.KindVerified, models.KindReflected}
	s.DefaultKind = models.KindUnknown
	return s
}

// X8Schema reads x8 JSON: {"url","method","parameters"} or "found_params" objects
func X8Schema() Schema {
	s := DefaultSchema()
	s.Tool = "x8"
	s.Target = Aliases{"url", "target"}
	s.Kind = Aliases{"kind"}
	s.DefaultKind = models.KindParameter
	s.RequireParameters = true
	return s
}

// NucleiSchema reads nuclei JSON-lines
func NucleiSchema() Schema {
	s := DefaultSchema()
	s.Tool = "nuclei"
	s.Target = Aliases{"matched-at", "url", "host", "target"}
	s.Kind = Aliases{"template-id", "templateID", "kind", "type"}
	s.Severity = Aliases{"info.severity", "severity"}
	s.Evidence = Aliases{"matcher-name", "info.name", "extracted-results", "evidence"}
	s.DefaultKind = models.KindFinding
	return s
}

// CRLFuzzSchema reads crlfuzz output
func CRLFuzzSchema() Schema {
	s := DefaultSchema()
	s.Tool = "crlfuzz"
	s.DefaultKind = models.KindCRLF
	s.KindMap = map[string]string{"vln": models.KindCRLF, "vuln": models.KindCRLF}
	return s
}

// SchemaFor returns the schema registered for tool, or DefaultSchema
func SchemaFor(tool string) Schema {
	switch strings.ToLower(tool) {
	case "dalfox":
		return DalfoxSchema()
	case "x8":
		return X8Schema()
	case "nuclei":
		return NucleiSchema()
	case "crlfuzz":
		return CRLFuzzSchema()
	default:
		s := DefaultSchema()
		s.Tool = tool
		return s
	}
}

// normalizeKind applies KindMap and the default kind
func (s Schema) normalizeKind(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.DefaultKind
	}
	if mapped, ok := s.KindMap[strings.ToLower(raw)]; ok {
		return mapped
	}
	return raw
}

// resolveKind normalizes raw, then lets the first of HintKinds that either
// matches it or appears in hint win
func (s Schema) resolveKind(raw, hint string) string {
	kind := s.normalizeKind(raw)
	hint = strings.ToLower(hint)
	for _, k := range s.HintKinds {
		if strings.EqualFold(kind, k) || (hint != "" && strings.Contains(hint, k)) {
			return k
		}
	}
	return kind
}
