package parser

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/aleister1102/ayumi/internal/models"
)

// record is one decoded JSON object with alias resolution
type record map[string]any

func (r record) lookup(aliases Aliases) (any, bool) {
	for _, alias := range aliases {
		v, ok := r.path(alias)
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func (r record) path(key string) (any, bool) {
	if v, ok := r[key]; ok {
		return v, true
	}
	if !strings.Contains(key, ".") {
		return nil, false
	}

	var cur any = map[string]any(r)
	for _, part := range strings.Split(key, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func (r record) str(aliases Aliases) string {
	v, ok := r.lookup(aliases)
	if !ok {
		return ""
	}
	return stringify(v)
}

func (r record) integer(aliases Aliases) int {
	v, ok := r.lookup(aliases)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	}
	return 0
}

func (r record) list(aliases Aliases) []string {
	v, ok := r.lookup(aliases)
	if !ok {
		return nil
	}
	var out []string
	switch items := v.(type) {
	case []any:
		for _, item := range items {
			var name string
			if obj, isObj := item.(map[string]any); isObj {
				name = stringify(obj["name"])
			} else {
				name = stringify(item)
			}
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	case string:
		for _, part := range strings.Split(items, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

var (
	errNoTarget = errors.New("record has no target field")
	// errNoParameters marks records a schema skips silently
	errNoParameters = errors.New("record has no parameters")
)

// toFinding maps the record through schema
func (r record) toFinding(schema Schema) (models.Finding, error) {
	target := strings.TrimSpace(r.str(schema.Target))
	if target == "" {
		return models.Finding{}, errNoTarget
	}

	f := models.Finding{
		Target:     target,
		Kind:       schema.resolveKind(r.str(schema.Kind), r.str(schema.KindHint)),
		Evidence:   r.str(schema.Evidence),
		Parameter:  r.str(schema.Parameter),
		Payload:    r.str(schema.Payload),
		StatusCode: r.integer(schema.StatusCode),
		Method:     strings.ToUpper(r.str(schema.Method)),
		Parameters: r.list(schema.Parameters),
		CWE:        r.str(schema.CWE),
		Tool:       r.str(schema.ToolField),
	}
	if f.Tool == "" {
		f.Tool = schema.Tool
	}
	if sev, ok := models.ParseSeverity(r.str(schema.Severity)); ok {
		f.Severity = sev
	}
	if ts := r.str(schema.Timestamp); ts != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			f.Timestamp = parsed
		}
	}

	if schema.RequireParameters && len(f.Parameters) == 0 {
		return models.Finding{}, errNoParameters
	}
	if f.Evidence == "" && len(f.Parameters) > 0 {
		f.Evidence = parametersEvidence(f.Parameters)
	}
	return f, nil
}

func parametersEvidence(params []string) string {
	return "discovered parameters: " + strings.Join(params, ", ")
}
