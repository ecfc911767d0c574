package urlhandler

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/aleister1102/ayumi/internal/common/errorwrapper"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTargets_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.txt")
	content := "  https://a.com/x?id=1  \n\nexample.org\n\t\nhttps://a.com/x?id=1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	targets, err := LoadTargets(path, zerolog.Nop())
	require.NoError(t, err)

	// order and duplicates are preserved; file lines are not canonicalised
	assert.Equal(t, []string{"https://a.com/x?id=1", "example.org", "https://a.com/x?id=1"}, targets)
}

func TestLoadTargets_Literal(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "https://example.com"},
		{"http://example.com/a", "http://example.com/a"},
		{"  https://example.com  ", "https://example.com"},
	}
	for _, tt := range tests {
		targets, err := LoadTargets(tt.in, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, []string{tt.want}, targets)
	}
}

func TestLoadTargets_Errors(t *testing.T) {
	_, err := LoadTargets("", zerolog.Nop())
	assert.ErrorIs(t, err, errorwrapper.ErrInput)

	_, err = LoadTargets(t.TempDir(), zerolog.Nop())
	require.Error(t, err)
	var inputErr *errorwrapper.InputError
	assert.True(t, errors.As(err, &inputErr))
}

func TestLoadTargets_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	targets, err := LoadTargets(path, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestEnsureScheme(t *testing.T) {
	assert.Equal(t, "https://a.com", EnsureScheme("a.com"))
	assert.Equal(t, "https://a.com", EnsureScheme("//a.com"))
	assert.Equal(t, "ftp://a.com", EnsureScheme("ftp://a.com"))
	assert.Equal(t, "", EnsureScheme("  "))
}

func TestFilterWithQuery(t *testing.T) {
	in := []string{"https://a.com/x?id=1", "https://a.com/y", "https://a.com/z?", "https://b.com/?q=1&r=2"}
	assert.Equal(t, []string{"https://a.com/x?id=1", "https://b.com/?q=1&r=2"}, FilterWithQuery(in))
}

func TestAddFuzzParams(t *testing.T) {
	got, err := AddFuzzParams("https://example.com/search?q=test#frag", []string{"admin", "q", "debug", "admin"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/search?q=test&admin=FUZZ&debug=FUZZ", got)

	got, err = AddFuzzParams("https://example.com/", []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/?id=FUZZ", got)
}

func TestNormalizeAndResolveURL(t *testing.T) {
	got, err := NormalizeURL("example.com/a#top")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", got)

	base, _ := url.Parse("https://example.com/dir/page.html")
	got, err = ResolveURL("../js/app.js", base)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/js/app.js", got)

	_, err = ResolveURL("/relative", nil)
	assert.Error(t, err)
}

func TestWriteTargetsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "targets.txt")
	require.NoError(t, WriteTargetsFile(path, []string{"https://a.com", "https://b.com"}, zerolog.Nop()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://a.com\nhttps://b.com\n", string(data))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "example.com_a_b", SanitizeFilename("https://example.com/a?b"))
	assert.Equal(t, "sanitized_empty_input", SanitizeFilename("https://"))
}
