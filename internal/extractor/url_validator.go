package extractor

import (
	"net/url"
	"strings"

	"github.com/aleister1102/ayumi/internal/urlhandler"
	"github.com/rs/zerolog"
)

// URLValidator resolves links found in a page against the page URL
type URLValidator struct {
	logger zerolog.Logger
}

// NewURLValidator creates a new URL validator
func NewURLValidator(logger zerolog.Logger) *URLValidator {
	return &URLValidator{
		logger: logger.With().Str("component", "URLValidator").Logger(),
	}
}

// Resolve returns the absolute http(s) form of rawPath. Fragments-only
// links, script pseudo-URLs and hosts without a dot are rejected.
func (uv *URLValidator) Resolve(rawPath string, base *url.URL) (string, bool) {
	rawPath = strings.TrimSpace(rawPath)
	if rawPath == "" || strings.HasPrefix(rawPath, "#") {
		return "", false
	}
	lower := strings.ToLower(rawPath)
	for _, scheme := range []string{"javascript:", "mailto:", "data:", "tel:"} {
		if strings.HasPrefix(lower, scheme) {
			return "", false
		}
	}

	resolved, err := urlhandler.ResolveURL(rawPath, base)
	if err != nil {
		uv.logger.Debug().Err(err).Str("raw_path", rawPath).Msg("Failed to resolve path")
		return "", false
	}

	parsed, err := url.Parse(resolved)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", false
	}
	if !strings.Contains(parsed.Hostname(), ".") && parsed.Hostname() != "localhost" {
		uv.logger.Debug().Str("url", resolved).Msg("URL host seems invalid")
		return "", false
	}
	return resolved, true
}
