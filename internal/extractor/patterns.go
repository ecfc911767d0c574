package extractor

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/aleister1102/ayumi/internal/common/errorwrapper"
	"github.com/aleister1102/ayumi/internal/common/filemanager"
	"github.com/rs/zerolog"
)

// Built-in pattern set names
const (
	SetLinks   = "links"
	SetSecrets = "secrets"
)

// LinkRegex captures quoted absolute http(s) URLs and quoted root-relative paths
const LinkRegex = `(?:"|')((?:http|https)://[^\s"']+|/[^"']+)(?:"|')`

// Pattern is one compiled rule. When the regex has a capture group the
// first group is reported as the match, otherwise the whole match is.
type Pattern struct {
	Name  string
	Regex *regexp.Regexp
}

// PatternSet is compiled once and shared read-only by every worker
type PatternSet struct {
	patterns []Pattern
}

// Len returns the number of compiled patterns
func (ps *PatternSet) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.patterns)
}

// Patterns returns a copy of the compiled patterns
func (ps *PatternSet) Patterns() []Pattern {
	out := make([]Pattern, ps.Len())
	if ps != nil {
		copy(out, ps.patterns)
	}
	return out
}

// Merge returns a new set holding the patterns of ps followed by other
func (ps *PatternSet) Merge(other *PatternSet) *PatternSet {
	merged := &PatternSet{}
	merged.patterns = append(merged.patterns, ps.Patterns()...)
	merged.patterns = append(merged.patterns, other.Patterns()...)
	return merged
}

var secretRules = []struct {
	name string
	expr string
}{
	{"aws-access-key-id", `\b(AKIA[0-9A-Z]{16})\b`},
	{"aws-secret-access-key", `(?i)(?:aws_secret_access_key|aws_secret_key)\s*[:=]\s*['"]([A-Za-z0-9/+=]{40})['"]`},
	{"github-token", `\b((?:ghp|gho|ghu|ghs|ghr)_[A-Za-z0-9]{36})\b`},
	{"generic-api-key", `\b(sk-[a-zA-Z0-9]{32,50})\b`},
	{"jwt", `\b(eyJ[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_/+=]*)`},
	{"slack-token", `(xox[baprs]-[0-9a-zA-Z-]{10,72})`},
	{"slack-webhook", `(https://hooks\.slack\.com/services/T[a-zA-Z0-9]{8,}/B[a-zA-Z0-9]{8,}/[a-zA-Z0-9]{24})`},
	{"private-key", `(-----BEGIN(?: [A-Z]+)? PRIVATE KEY-----)`},
	{"google-api-key", `\b(AIza[0-9A-Za-z\-_]{35})\b`},
}

// BuiltinSet returns the named built-in set
func BuiltinSet(name string) (*PatternSet, error) {
	switch strings.ToLower(name) {
	case SetLinks:
		return &PatternSet{patterns: []Pattern{{Name: SetLinks, Regex: regexp.MustCompile(LinkRegex)}}}, nil
	case SetSecrets:
		ps := &PatternSet{}
		for _, rule := range secretRules {
			ps.patterns = append(ps.patterns, Pattern{Name: rule.name, Regex: regexp.MustCompile(rule.expr)})
		}
		return ps, nil
	default:
		return nil, errorwrapper.NewValidationError("pattern_set", name, "unknown built-in pattern set")
	}
}

// CompilePatterns compiles each expression, skipping blanks and "#" comments.
// Malformed expressions are logged and skipped.
func CompilePatterns(exprs []string, logger zerolog.Logger) *PatternSet {
	ps := &PatternSet{}
	for i, expr := range exprs {
		expr = strings.TrimSpace(expr)
		if expr == "" || strings.HasPrefix(expr, "#") {
			continue
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			logger.Warn().
				Int("line", i+1).
				Str("pattern", expr).
				Err(err).
				Msg("Failed to compile regex, skipping")
			continue
		}
		ps.patterns = append(ps.patterns, Pattern{Name: expr, Regex: re})
	}
	return ps
}

// LoadPatternFile reads one regex per line from path
func LoadPatternFile(path string, logger zerolog.Logger) (*PatternSet, error) {
	fm := filemanager.NewFileManager(logger)
	data, err := fm.ReadFile(path, filemanager.DefaultFileReadOptions())
	if err != nil {
		return nil, errorwrapper.NewInputError(path, err)
	}

	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, errorwrapper.WrapError(err, fmt.Sprintf("failed to read pattern file %s", path))
	}

	ps := CompilePatterns(lines, logger)
	logger.Info().Str("path", path).Int("patterns", ps.Len()).Msg("Loaded pattern file")
	return ps, nil
}

// span is one match location in content
type span struct {
	text       string
	start, end int
}

// find returns every match of p in content
func (p Pattern) find(content string) []span {
	locs := p.Regex.FindAllStringSubmatchIndex(content, -1)
	out := make([]span, 0, len(locs))
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if len(loc) >= 4 && loc[2] >= 0 {
			start, end = loc[2], loc[3]
		}
		if start == end {
			continue
		}
		out = append(out, span{text: content[start:end], start: start, end: end})
	}
	return out
}
