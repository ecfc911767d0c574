package extractor

import (
	"bytes"
	"net/url"

	"github.com/BishopFox/jsluice"
	"github.com/aleister1102/ayumi/internal/models"
	"github.com/rs/zerolog"
)

// JSluiceAnalyzer extracts URLs from JavaScript with jsluice
type JSluiceAnalyzer struct {
	logger    zerolog.Logger
	validator *URLValidator
}

// NewJSluiceAnalyzer creates a new jsluice analyzer
func NewJSluiceAnalyzer(validator *URLValidator, logger zerolog.Logger) *JSluiceAnalyzer {
	return &JSluiceAnalyzer{
		logger:    logger.With().Str("component", "JSluiceAnalyzer").Logger(),
		validator: validator,
	}
}

// Analyze returns one match per distinct resolved URL. Pattern is "jsluice:<type>".
func (jsa *JSluiceAnalyzer) Analyze(sourceURL string, content []byte, base *url.URL, seen map[string]struct{}) []models.RegexMatch {
	results := jsluice.NewAnalyzer(content).GetURLs()
	jsa.logger.Debug().Str("source_url", sourceURL).Int("jsluice_url_count", len(results)).Msg("Jsluice analysis completed")

	var matches []models.RegexMatch
	for _, res := range results {
		absolute, ok := jsa.validator.Resolve(res.URL, base)
		if !ok {
			continue
		}
		if _, dup := seen[absolute]; dup {
			continue
		}
		seen[absolute] = struct{}{}

		kind := res.Type
		if kind == "" {
			kind = "unknown"
		}
		start, end := locate(content, res.URL)
		matches = append(matches, models.RegexMatch{
			Target:  sourceURL,
			Pattern: "jsluice:" + kind,
			Match:   absolute,
			Start:   start,
			End:     end,
		})
	}
	return matches
}

// locate returns the byte span of the first occurrence of raw, or -1,-1
func locate(content []byte, raw string) (int, int) {
	if raw == "" {
		return -1, -1
	}
	idx := bytes.Index(content, []byte(raw))
	if idx < 0 {
		return -1, -1
	}
	return idx, idx + len(raw)
}
