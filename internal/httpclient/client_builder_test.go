package httpclient

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientBuilder_Defaults(t *testing.T) {
	b := NewHTTPClientBuilder(zerolog.Nop())

	assert.Equal(t, 12*time.Second, b.config.Timeout)
	assert.True(t, b.config.InsecureSkipVerify)
	assert.True(t, b.config.EnableHTTP2)
}

func TestHTTPClientBuilder_Chain(t *testing.T) {
	client, err := NewHTTPClientBuilder(zerolog.Nop()).
		WithTimeout(3*time.Second).
		WithMaxRedirects(2).
		WithUserAgents([]string{"ua-1", ""}).
		WithHeaders(map[string]string{"X-A": "1"}).
		WithMaxContentSize(1024).
		WithRateLimit(5).
		WithHTTP2(false).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, client.config.Timeout)
	assert.Equal(t, 2, client.config.MaxRedirects)
	assert.Equal(t, "1", client.config.CustomHeaders["X-A"])
	// defaults are merged, not replaced
	assert.Equal(t, "*/*", client.config.CustomHeaders["Accept"])
	assert.NotNil(t, client.limiter)
	assert.Equal(t, "ua-1", client.userAgents.Pick())
}

func TestUserAgentPool_Fallback(t *testing.T) {
	assert.Equal(t, "fallback", NewUserAgentPool(nil, "fallback").Pick())
	assert.Equal(t, "", NewUserAgentPool(nil, "").Pick())
}
