package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/ayumi/internal/httpclient"
	"github.com/aleister1102/ayumi/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu      sync.Mutex
	matches []models.RegexMatch
}

func (s *memorySink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := v.(models.RegexMatch)
	if !ok {
		return fmt.Errorf("unexpected record %T", v)
	}
	s.matches = append(s.matches, m)
	return nil
}

func (s *memorySink) byTarget() map[string][]models.RegexMatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]models.RegexMatch)
	for _, m := range s.matches {
		out[m.Target] = append(out[m.Target], m)
	}
	return out
}

func newTestClient(t *testing.T, timeout time.Duration) *httpclient.HTTPClient {
	t.Helper()
	client, err := httpclient.NewHTTPClientBuilder(zerolog.Nop()).
		WithTimeout(timeout).
		WithHTTP2(false).
		Build()
	require.NoError(t, err)
	return client
}

func TestExtract_TimeoutYieldsOneErrorMatch(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/slow":
			select {
			case <-release:
			case <-r.Context().Done():
			}
		case "/missing":
			http.NotFound(w, r)
		default:
			fmt.Fprintf(w, `<script>var a = "/api/%s/one"; var b = "/api/%s/two";</script>`, r.URL.Path[1:], r.URL.Path[1:])
		}
	}))
	defer server.Close()
	defer close(release)

	ps, err := BuiltinSet(SetLinks)
	require.NoError(t, err)
	ex, err := NewExtractor(newTestClient(t, 300*time.Millisecond), ps, zerolog.Nop(), WithWorkers(2))
	require.NoError(t, err)

	targets := []string{
		server.URL + "/a",
		server.URL + "/slow",
		server.URL + "/b",
		server.URL + "/missing",
		server.URL + "/c",
	}
	sink := &memorySink{}
	require.NoError(t, ex.Extract(context.Background(), targets, sink))

	got := sink.byTarget()
	require.Len(t, got, len(targets))

	for _, path := range []string{"/slow", "/missing"} {
		matches := got[server.URL+path]
		require.Len(t, matches, 1, path)
		assert.True(t, matches[0].IsError(), path)
		assert.NotEmpty(t, matches[0].Error, path)
	}
	assert.Contains(t, got[server.URL+"/missing"][0].Error, "404")

	for _, path := range []string{"a", "b", "c"} {
		matches := got[server.URL+"/"+path]
		require.Len(t, matches, 2, path)
		assert.Equal(t, "/api/"+path+"/one", matches[0].Match)
		assert.Equal(t, SetLinks, matches[0].Pattern)
		assert.False(t, matches[0].IsError())
	}
}

func TestExtract_CancelledContextSchedulesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))
	defer server.Close()

	ps := CompilePatterns([]string{"x"}, zerolog.Nop())
	ex, err := NewExtractor(newTestClient(t, time.Second), ps, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &memorySink{}
	err = ex.Extract(ctx, []string{server.URL + "/1", server.URL + "/2"}, sink)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, sink.matches)
}

func TestMatch_LinkAnalysis(t *testing.T) {
	ex, err := NewExtractor(newTestClient(t, time.Second), nil, zerolog.Nop(), WithLinkAnalysis(true))
	require.NoError(t, err)

	html := []byte(`<html><head><script src="/static/app.js"></script></head>
<body><a href="/login">Login</a><a href="#top">top</a><a href="https://other.example.org/x">x</a>
<form action="submit.php"></form></body></html>`)

	matches := ex.Match("https://site.example.com/dir/index.html", html, "text/html")

	byMatch := map[string]string{}
	for _, m := range matches {
		byMatch[m.Match] = m.Pattern
	}
	assert.Equal(t, "html:script", byMatch["https://site.example.com/static/app.js"])
	assert.Equal(t, "html:a", byMatch["https://site.example.com/login"])
	assert.Equal(t, "html:a", byMatch["https://other.example.org/x"])
	assert.Equal(t, "html:form", byMatch["https://site.example.com/dir/submit.php"])
	assert.Len(t, matches, 4)
}

func TestMatch_JSluice(t *testing.T) {
	ex, err := NewExtractor(newTestClient(t, time.Second), nil, zerolog.Nop(), WithLinkAnalysis(true))
	require.NoError(t, err)

	js := []byte(`fetch("/api/v2/orders").then(r => r.json());`)
	matches := ex.Match("https://site.example.com/assets/main.js", js, "application/javascript")

	found := map[string]bool{}
	for _, m := range matches {
		assert.Contains(t, m.Pattern, "jsluice:")
		found[m.Match] = true
	}
	assert.True(t, found["https://site.example.com/api/v2/orders"])
}

func TestMatch_DuplicatesReportedOnce(t *testing.T) {
	ps := CompilePatterns([]string{`token-[0-9]+`}, zerolog.Nop())
	ex, err := NewExtractor(newTestClient(t, time.Second), ps, zerolog.Nop())
	require.NoError(t, err)

	matches := ex.Match("https://a.example.com", []byte("token-1 token-2 token-1"), "text/plain")
	require.Len(t, matches, 2)
	assert.Equal(t, "token-1", matches[0].Match)
	assert.Equal(t, 0, matches[0].Start)
	assert.Equal(t, 7, matches[0].End)
	assert.Equal(t, "token-2", matches[1].Match)
}

func TestNewExtractor_RequiresPatterns(t *testing.T) {
	_, err := NewExtractor(newTestClient(t, time.Second), &PatternSet{}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewExtractor(nil, &PatternSet{}, zerolog.Nop(), WithLinkAnalysis(true))
	assert.Error(t, err)
}
