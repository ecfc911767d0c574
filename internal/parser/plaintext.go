package parser

import (
	"net/http"
	"strings"

	"github.com/aleister1102/ayumi/internal/models"
)

// plainRule synthesises a finding from one unstructured line
type plainRule struct {
	name  string
	parse func(line string, schema Schema) (models.Finding, bool)
}

// plainRules are tried in order; the first match wins
var plainRules = []plainRule{
	{name: "poc-marker", parse: parsePOCLine},
	{name: "param-list", parse: parseParamListLine},
	{name: "bracketed", parse: parseBracketedLine},
	{name: "bare-url", parse: parseBareURLLine},
}

func parsePlainLine(line string, schema Schema) (models.Finding, string, bool) {
	for _, rule := range plainRules {
		if f, ok := rule.parse(line, schema); ok {
			return f, rule.name, true
		}
	}
	return models.Finding{}, "", false
}

func looksLikeURL(token string) bool {
	return strings.HasPrefix(strings.ToLower(token), "http")
}

// lastURLToken returns the last whitespace-delimited token starting with "http"
func lastURLToken(line string) string {
	fields := strings.Fields(line)
	for i := len(fields) - 1; i >= 0; i-- {
		if looksLikeURL(fields[i]) {
			return fields[i]
		}
	}
	return ""
}

func toolOr(schema Schema, fallback string) string {
	if schema.Tool != "" {
		return schema.Tool
	}
	return fallback
}

// parsePOCLine handles "[POC][V][GET][inHTML-URL] https://..." lines
func parsePOCLine(line string, schema Schema) (models.Finding, bool) {
	if !strings.Contains(line, "[POC]") {
		return models.Finding{}, false
	}
	target := lastURLToken(line)
	if target == "" {
		return models.Finding{}, false
	}

	kind := models.KindReflected
	for _, tag := range bracketTags(line) {
		if mapped, ok := xssKindMap[strings.ToLower(tag)]; ok {
			kind = mapped
			break
		}
	}

	f := models.Finding{
		Target:   target,
		Kind:     kind,
		Evidence: line,
		Tool:     toolOr(schema, "dalfox"),
	}
	for _, tag := range bracketTags(line) {
		if isHTTPMethod(tag) {
			f.Method = strings.ToUpper(tag)
			break
		}
	}
	return f, true
}

// parseParamListLine handles "URL | p1, p2" lines
func parseParamListLine(line string, schema Schema) (models.Finding, bool) {
	target, rest, ok := strings.Cut(line, " | ")
	if !ok {
		return models.Finding{}, false
	}
	target = strings.TrimSpace(target)
	if !looksLikeURL(target) || strings.ContainsAny(target, " \t") {
		return models.Finding{}, false
	}

	var params []string
	for _, p := range strings.Split(rest, ",") {
		if p = strings.TrimSpace(p); p != "" {
			params = append(params, p)
		}
	}
	if len(params) == 0 {
		return models.Finding{}, false
	}

	return models.Finding{
		Target:     target,
		Kind:       models.KindParameter,
		Evidence:   parametersEvidence(params),
		Method:     http.MethodGet,
		Parameters: params,
		Tool:       toolOr(schema, "x8"),
	}, true
}

// parseBracketedLine handles "[tag] [tag] URL ..." lines from nuclei and crlfuzz
func parseBracketedLine(line string, schema Schema) (models.Finding, bool) {
	if !strings.HasPrefix(line, "[") {
		return models.Finding{}, false
	}
	tags, rest := leadingBracketTags(line)
	if len(tags) == 0 {
		return models.Finding{}, false
	}

	var target string
	for _, tok := range strings.Fields(rest) {
		if looksLikeURL(tok) {
			target = tok
			break
		}
	}
	if target == "" {
		return models.Finding{}, false
	}

	f := models.Finding{
		Target:   target,
		Kind:     schema.normalizeKind(tags[0]),
		Evidence: line,
		Tool:     schema.Tool,
	}
	for _, tag := range tags[1:] {
		if sev, ok := models.ParseSeverity(tag); ok {
			f.Severity = sev
			break
		}
	}
	return f, true
}

// parseBareURLLine accepts a line that is a single URL
func parseBareURLLine(line string, schema Schema) (models.Finding, bool) {
	fields := strings.Fields(line)
	if len(fields) != 1 || !looksLikeURL(fields[0]) || !strings.Contains(fields[0], "://") {
		return models.Finding{}, false
	}
	return models.Finding{
		Target:   fields[0],
		Kind:     schema.DefaultKind,
		Evidence: line,
		Tool:     schema.Tool,
	}, true
}

// leadingBracketTags splits "[a] [b][c] rest" into [a b c] and "rest"
func leadingBracketTags(line string) ([]string, string) {
	var tags []string
	rest := strings.TrimSpace(line)
	for strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		tags = append(tags, strings.TrimSpace(rest[1:end]))
		rest = strings.TrimSpace(rest[end+1:])
	}
	return tags, rest
}

// bracketTags returns every [tag] in the line
func bracketTags(line string) []string {
	var tags []string
	for {
		start := strings.IndexByte(line, '[')
		if start < 0 {
			return tags
		}
		end := strings.IndexByte(line[start:], ']')
		if end < 0 {
			return tags
		}
		tags = append(tags, line[start+1:start+end])
		line = line[start+end+1:]
	}
}

func isHTTPMethod(tag string) bool {
	switch strings.ToUpper(tag) {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
