package extractor

import (
	"net/url"
	"path"
	"strings"
)

var jsExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"}

// isJavaScript decides from the content type, falling back to the URL path extension
func isJavaScript(sourceURL, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "javascript") {
		return true
	}
	ext := strings.ToLower(path.Ext(urlPath(sourceURL)))
	for _, candidate := range jsExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// isHTML decides from the content type, falling back to sniffing the body
func isHTML(contentType string, content []byte) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml") {
		return true
	}
	if ct != "" {
		return false
	}
	head := strings.ToLower(strings.TrimSpace(string(content[:min(len(content), 512)])))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

func urlPath(raw string) string {
	if u, err := url.Parse(raw); err == nil {
		return u.Path
	}
	return raw
}
