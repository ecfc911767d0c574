package config

import (
	"strings"
)

// RequestConfig carries operator-supplied request decoration shared by the
// external probes and the native scanners.
type RequestConfig struct {
	Headers    []string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Cookies    string   `json:"cookies,omitempty" yaml:"cookies,omitempty"`
	UserAgent  string   `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	UserAgents []string `json:"user_agents,omitempty" yaml:"user_agents,omitempty"`
}

// NewDefaultRequestConfig creates default request configuration
func NewDefaultRequestConfig() RequestConfig {
	return RequestConfig{
		UserAgent:  DefaultUserAgent,
		UserAgents: append([]string(nil), DefaultUserAgents...),
	}
}

// HeaderMap parses "Key: Value" entries. Entries without a colon are ignored.
func (rc RequestConfig) HeaderMap() map[string]string {
	return ParseHeaders(rc.Headers)
}

// CookieMap parses the "a=b; c=d" cookie string
func (rc RequestConfig) CookieMap() map[string]string {
	return ParseCookies(rc.Cookies)
}

// ParseHeaders parses "Key: Value" strings into a map
func ParseHeaders(headers []string) map[string]string {
	parsed := make(map[string]string, len(headers))
	for _, h := range headers {
		key, value, ok := strings.Cut(h, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		parsed[key] = strings.TrimSpace(value)
	}
	return parsed
}

// ParseCookies parses a "a=b; c=d" cookie header into a map
func ParseCookies(cookies string) map[string]string {
	parsed := make(map[string]string)
	for _, part := range strings.Split(cookies, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		parsed[key] = strings.TrimSpace(value)
	}
	return parsed
}
