package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	headers := ParseHeaders([]string{
		"X-Api-Key: abc",
		"Authorization:Bearer t:o:k",
		"no-colon-here",
		": empty-key",
	})

	assert.Equal(t, map[string]string{
		"X-Api-Key":     "abc",
		"Authorization": "Bearer t:o:k",
	}, headers)
}

func TestParseCookies(t *testing.T) {
	assert.Equal(t, map[string]string{"a": "b", "c": "d=e"}, ParseCookies("a=b; c=d=e; broken"))
	assert.Empty(t, ParseCookies(""))
}

func TestResolveWordlist_Priority(t *testing.T) {
	dir := t.TempDir()
	explicit := filepath.Join(dir, "explicit.txt")
	fromEnv := filepath.Join(dir, "env.txt")
	searched := filepath.Join(dir, "lists", "params.txt")
	for _, p := range []string{explicit, fromEnv, searched} {
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("id\n"), 0644))
	}

	pc := ParamConfig{Wordlist: explicit, WordlistSearchPaths: []string{filepath.Join(dir, "lists", "*.txt")}}
	t.Setenv(ParamWordlistEnv, fromEnv)

	got, err := pc.ResolveWordlist()
	require.NoError(t, err)
	assert.Equal(t, explicit, got)

	pc.Wordlist = ""
	got, err = pc.ResolveWordlist()
	require.NoError(t, err)
	assert.Equal(t, fromEnv, got)

	t.Setenv(ParamWordlistEnv, "")
	got, err = pc.ResolveWordlist()
	require.NoError(t, err)
	assert.Equal(t, searched, got)

	pc.WordlistSearchPaths = []string{filepath.Join(dir, "missing.txt")}
	_, err = pc.ResolveWordlist()
	assert.ErrorIs(t, err, ErrWordlistNotFound)
}
