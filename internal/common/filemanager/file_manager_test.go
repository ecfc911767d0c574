package filemanager

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileManager_WriteLinesCreatesParents(t *testing.T) {
	fm := NewFileManager(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "nested", "targets.txt")

	require.NoError(t, fm.WriteLines(path, []string{"https://a.com", "https://b.com"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://a.com\nhttps://b.com\n", string(data))
	assert.True(t, fm.IsRegularFile(path))
}

func TestFileManager_ReadFileLimits(t *testing.T) {
	fm := NewFileManager(zerolog.Nop())
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0644))

	_, err := fm.ReadFile(path, FileReadOptions{MaxSize: 5})
	assert.Error(t, err)

	_, err = fm.ReadFile(dir, DefaultFileReadOptions())
	assert.Error(t, err)

	data, err := fm.ReadFile(path, DefaultFileReadOptions())
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))
}
