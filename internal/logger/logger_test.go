package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aleister1102/ayumi/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultLogger(t *testing.T) {
	cfg := config.NewDefaultLogConfig()
	_, err := New(cfg)
	require.NoError(t, err)
}

func TestBuild_JSONConsoleCarriesRunID(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.LogConfig{LogLevel: "debug", LogFormat: "json"}

	l, err := NewLoggerBuilder().WithConfig(cfg).WithRunID("run-1").WithConsoleOutput(&buf).Build()
	require.NoError(t, err)

	l.GetZerolog().Debug().Str("component", "Test").Msg("hello")

	out := buf.String()
	assert.Contains(t, out, `"run_id":"run-1"`)
	assert.Contains(t, out, `"message":"hello"`)
	assert.Equal(t, zerolog.DebugLevel, l.Config().Level)
}

func TestBuild_FileWriterUsesRunSubdir(t *testing.T) {
	dir := t.TempDir()
	cfg := config.LogConfig{LogFile: filepath.Join(dir, "ayumi.log"), LogFormat: "json", LogLevel: "info"}

	l, err := NewLoggerBuilder().WithConfig(cfg).WithRunID("abc").WithConsoleOutput(&bytes.Buffer{}).Build()
	require.NoError(t, err)
	l.GetZerolog().Info().Msg("to file")

	data, err := os.ReadFile(filepath.Join(dir, "runs", "abc", "ayumi.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestWithConfigKeepsRunIDSetEarlier(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLoggerBuilder().WithRunID("early").WithConfig(config.LogConfig{LogFormat: "json"}).WithConsoleOutput(&buf).Build()
	require.NoError(t, err)

	l.GetZerolog().Info().Msg("x")
	assert.Contains(t, buf.String(), `"run_id":"early"`)
}

func TestParseLevelAndFormat(t *testing.T) {
	level, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, level)

	level, err = ParseLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	assert.Equal(t, FormatJSON, ParseFormat(" JSON"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatConsole, ParseFormat("xml"))
}
