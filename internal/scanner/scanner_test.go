package scanner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/ayumi/internal/httpclient"
	"github.com/aleister1102/ayumi/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *httpclient.HTTPClient {
	t.Helper()
	c, err := httpclient.NewHTTPClientBuilder(zerolog.Nop()).
		WithTimeout(2 * time.Second).
		WithHTTP2(false).
		Build()
	require.NoError(t, err)
	return c
}

func TestMethodScanner_UsesAllowHeader(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method)
		mu.Unlock()
		switch r.Method {
		case http.MethodOptions:
			w.Header().Set("Allow", "GET, HEAD, put, DELETE")
		case http.MethodPut:
			w.WriteHeader(http.StatusCreated)
		case http.MethodDelete:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer server.Close()

	findings := NewMethodScanner(newClient(t), zerolog.Nop()).Scan(context.Background(), server.URL+"/res")

	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, http.MethodPut, f.Method)
	assert.Equal(t, http.MethodPut, f.Kind)
	assert.Equal(t, http.StatusCreated, f.StatusCode)
	assert.Equal(t, "PUT "+server.URL+"/res -> HTTP 201", f.Evidence)
	assert.Equal(t, models.FamilyMethods, f.Family())

	assert.Equal(t, []string{http.MethodOptions, http.MethodPut, http.MethodDelete}, seen)
}

func TestMethodScanner_FallsBackToAllMethods(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusNoContent)
		case http.MethodPatch:
			w.WriteHeader(http.StatusNotImplemented)
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer server.Close()

	findings := NewMethodScanner(newClient(t), zerolog.Nop()).Scan(context.Background(), server.URL)

	var methods []string
	for _, f := range findings {
		methods = append(methods, f.Method)
		assert.Equal(t, http.StatusForbidden, f.StatusCode)
	}
	assert.Equal(t, []string{http.MethodPut, http.MethodDelete}, methods)
}

func TestMethodScanner_CORSAllowMethodsHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET,DELETE")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	findings := NewMethodScanner(newClient(t), zerolog.Nop()).Scan(context.Background(), server.URL)
	require.Len(t, findings, 1)
	assert.Equal(t, http.MethodDelete, findings[0].Method)
}

func corsServer(t *testing.T, handler func(origin string, h http.Header)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(r.Header.Get("Origin"), w.Header())
	}))
}

func TestCORSScanner(t *testing.T) {
	tests := []struct {
		name         string
		handler      func(origin string, h http.Header)
		wantKind     string
		wantPayload  string
		wantEvidence string
	}{
		{
			name:     "no header",
			handler:  func(string, http.Header) {},
			wantKind: "",
		},
		{
			name: "reflects first origin",
			handler: func(origin string, h http.Header) {
				h.Set("Access-Control-Allow-Origin", origin)
			},
			wantKind:     models.KindCORSOriginReflected,
			wantPayload:  "https://evil.com",
			wantEvidence: "| Origin: https://evil.com | Reflected: https://evil.com",
		},
		{
			name: "only null accepted with credentials",
			handler: func(origin string, h http.Header) {
				if origin == "null" {
					h.Set("Access-Control-Allow-Origin", "null")
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			},
			wantKind:     models.WithCredentials(models.KindCORSOriginReflected),
			wantPayload:  "null",
			wantEvidence: "[CREDENTIALS ENABLED]",
		},
		{
			name: "wildcard",
			handler: func(_ string, h http.Header) {
				h.Set("Access-Control-Allow-Origin", "*")
			},
			wantKind:     models.KindCORSWildcard,
			wantPayload:  "https://evil.com",
			wantEvidence: "Reflected: *",
		},
		{
			name: "fixed foreign origin is not a finding",
			handler: func(_ string, h http.Header) {
				h.Set("Access-Control-Allow-Origin", "https://trusted.example.com")
			},
			wantKind: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := corsServer(t, tt.handler)
			defer server.Close()

			findings := NewCORSScanner(newClient(t), zerolog.Nop()).Scan(context.Background(), server.URL)
			if tt.wantKind == "" {
				assert.Empty(t, findings)
				return
			}
			require.Len(t, findings, 1)
			assert.Equal(t, tt.wantKind, findings[0].Kind)
			assert.Equal(t, tt.wantPayload, findings[0].Payload)
			assert.Contains(t, findings[0].Evidence, tt.wantEvidence)
			assert.Equal(t, models.FamilyCORS, findings[0].Family())
		})
	}
}

type fakeCheck struct {
	calls atomic.Int32
}

func (f *fakeCheck) Name() string { return "fake" }

func (f *fakeCheck) Scan(_ context.Context, target string) []models.Finding {
	f.calls.Add(1)
	return []models.Finding{{Target: target, Kind: "k"}}
}

func TestRunner_EmitsEveryFinding(t *testing.T) {
	targets := []string{"https://a.com", "https://b.com", "https://c.com", "https://d.com"}
	check := &fakeCheck{}

	var got []string
	err := NewRunner(3, zerolog.Nop()).Run(context.Background(), targets, check, func(f models.Finding) error {
		got = append(got, f.Target)
		return nil
	})

	require.NoError(t, err)
	sort.Strings(got)
	assert.Equal(t, targets, got)
	assert.EqualValues(t, 4, check.calls.Load())
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	check := &fakeCheck{}

	err := NewRunner(2, zerolog.Nop()).Run(ctx, []string{"https://a.com"}, check, func(models.Finding) error { return nil })

	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 0, check.calls.Load())
}

func TestRunner_EmitErrorIsReturned(t *testing.T) {
	boom := errors.New("disk full")
	err := NewRunner(1, zerolog.Nop()).Run(context.Background(), []string{"https://a.com", "https://b.com"}, &fakeCheck{},
		func(models.Finding) error { return boom })
	assert.ErrorIs(t, err, boom)
}
