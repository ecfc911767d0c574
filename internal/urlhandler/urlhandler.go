package urlhandler

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/aleister1102/ayumi/internal/common/filemanager"
	"github.com/rs/zerolog"
)

// FuzzPlaceholder is the value given to parameters added by discovery
const FuzzPlaceholder = "FUZZ"

// Regex for cleaning filenames
var (
	unsafeFilenameCharsRegex = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)
	multipleUnderscoresRegex = regexp.MustCompile(`_+`)
)

// NormalizeURL ensures a scheme, drops the fragment and rejects host-less URLs.
func NormalizeURL(rawURL string) (string, error) {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return "", errors.New("URL is empty or only whitespace")
	}

	parsedURL, err := url.Parse(EnsureScheme(trimmedURL))
	if err != nil {
		return "", fmt.Errorf("could not parse URL '%s': %w", trimmedURL, err)
	}
	if parsedURL.Host == "" {
		return "", errors.New("URL lacks a valid hostname")
	}

	parsedURL.Fragment = ""
	parsedURL.RawFragment = ""
	return parsedURL.String(), nil
}

// ResolveURL resolves a (possibly relative) URL string against a base URL.
// The returned URL is also normalized.
func ResolveURL(href string, base *url.URL) (string, error) {
	trimmedHref := strings.TrimSpace(href)
	if trimmedHref == "" {
		return "", fmt.Errorf("href is empty")
	}

	if base == nil {
		parsedHref, parseErr := url.Parse(trimmedHref)
		if parseErr != nil {
			return "", fmt.Errorf("error parsing base-less href '%s': %w", trimmedHref, parseErr)
		}
		if !parsedHref.IsAbs() {
			return "", fmt.Errorf("cannot process relative URL '%s' without a base URL", trimmedHref)
		}
		return NormalizeURL(parsedHref.String())
	}

	resolved, resolveErr := base.Parse(trimmedHref)
	if resolveErr != nil {
		return "", fmt.Errorf("error resolving href '%s' with base '%s': %w", trimmedHref, base.String(), resolveErr)
	}
	return NormalizeURL(resolved.String())
}

// HasQuery reports whether target parses and carries a query string
func HasQuery(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return u.RawQuery != ""
}

// FilterWithQuery keeps only targets that have a query string, in order.
// Targets without parameters cannot carry reflected input.
func FilterWithQuery(targets []string) []string {
	filtered := make([]string, 0, len(targets))
	for _, t := range targets {
		if HasQuery(t) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// AddFuzzParams appends each name not already present as name=FUZZ,
// keeping the existing query untouched and dropping the fragment.
func AddFuzzParams(target string, names []string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("could not parse URL '%s': %w", target, err)
	}

	existing := u.Query()
	added := make(map[string]bool, len(names))
	var extra []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || added[name] {
			continue
		}
		if _, ok := existing[name]; ok {
			continue
		}
		added[name] = true
		extra = append(extra, url.QueryEscape(name)+"="+FuzzPlaceholder)
	}

	if len(extra) > 0 {
		if u.RawQuery == "" {
			u.RawQuery = strings.Join(extra, "&")
		} else {
			u.RawQuery = u.RawQuery + "&" + strings.Join(extra, "&")
		}
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

// WriteTargetsFile materialises targets one per line for tools that read a list file
func WriteTargetsFile(path string, targets []string, logger zerolog.Logger) error {
	return filemanager.NewFileManager(logger).WriteLines(path, targets)
}

// SanitizeFilename creates a safe filename string from a URL or any input string.
func SanitizeFilename(input string) string {
	name := input
	if i := strings.Index(name, "://"); i != -1 {
		name = name[i+3:]
	}

	name = unsafeFilenameCharsRegex.ReplaceAllString(name, "_")
	name = multipleUnderscoresRegex.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		return "sanitized_empty_input"
	}
	return name
}
