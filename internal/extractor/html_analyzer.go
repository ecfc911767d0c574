package extractor

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/ayumi/internal/models"
	"github.com/rs/zerolog"
)

const linkSelector = "a[href], link[href], script[src], img[src], iframe[src], form[action], object[data], embed[src]"

// HTMLAnalyzer extracts link-bearing attributes from HTML documents
type HTMLAnalyzer struct {
	logger    zerolog.Logger
	validator *URLValidator
}

// NewHTMLAnalyzer creates a new HTML analyzer
func NewHTMLAnalyzer(validator *URLValidator, logger zerolog.Logger) *HTMLAnalyzer {
	return &HTMLAnalyzer{
		logger:    logger.With().Str("component", "HTMLAnalyzer").Logger(),
		validator: validator,
	}
}

// Analyze returns one match per distinct resolved URL. Pattern is "html:<tag>".
// A <base href> in the document overrides base.
func (ha *HTMLAnalyzer) Analyze(sourceURL string, content []byte, base *url.URL, seen map[string]struct{}) []models.RegexMatch {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		ha.logger.Debug().Err(err).Str("source_url", sourceURL).Msg("Failed to parse HTML content")
		return nil
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok && base != nil {
		if override, err := base.Parse(strings.TrimSpace(href)); err == nil {
			base = override
		}
	}

	var matches []models.RegexMatch
	doc.Find(linkSelector).Each(func(_ int, s *goquery.Selection) {
		tag := goquery.NodeName(s)
		raw, ok := s.Attr(attributeFor(tag))
		if !ok {
			return
		}
		absolute, ok := ha.validator.Resolve(raw, base)
		if !ok {
			return
		}
		if _, dup := seen[absolute]; dup {
			return
		}
		seen[absolute] = struct{}{}

		start, end := locate(content, raw)
		matches = append(matches, models.RegexMatch{
			Target:  sourceURL,
			Pattern: "html:" + tag,
			Match:   absolute,
			Start:   start,
			End:     end,
		})
	})

	ha.logger.Debug().Str("source_url", sourceURL).Int("links", len(matches)).Msg("HTML analysis completed")
	return matches
}

func attributeFor(tag string) string {
	switch tag {
	case "a", "link":
		return "href"
	case "form":
		return "action"
	case "object":
		return "data"
	default:
		return "src"
	}
}
