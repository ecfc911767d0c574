package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/ayumi/internal/common/errorwrapper"
	"github.com/aleister1102/ayumi/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTool drops an executable shell script named name into dir
func writeTool(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func newTestInvoker(toolDirs ...string) *ExecInvoker {
	cfg := config.NewDefaultProbeConfig()
	cfg.ToolDirs = toolDirs
	return NewExecInvoker(cfg, zerolog.Nop())
}

func TestExecInvoker_Success(t *testing.T) {
	binDir := t.TempDir()
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	writeTool(t, binDir, "fakeprobe", `printf '%s' "$2" > "$1"; echo done`)

	out := filepath.Join(t.TempDir(), "out.json")
	res, err := newTestInvoker().Invoke(context.Background(), Invocation{
		Tool:       "fakeprobe",
		Args:       []string{out, `[{"url":"https://a.com"}]`},
		OutputPath: out,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExitCode)
	assert.False(t, res.TimedOut)
	assert.Equal(t, out, res.OutputPath)
	assert.Equal(t, "done\n", string(res.Stdout))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, `[{"url":"https://a.com"}]`, string(data))
}

func TestExecInvoker_NotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := newTestInvoker().Invoke(context.Background(), Invocation{Tool: "definitely-missing-probe"})

	require.Error(t, err)
	assert.ErrorIs(t, err, errorwrapper.ErrProbeNotFound)
	var probeErr *errorwrapper.ProbeError
	require.True(t, errors.As(err, &probeErr))
	assert.Equal(t, "definitely-missing-probe", probeErr.Tool)
}

func TestExecInvoker_ToolDirFallback(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	toolDir := t.TempDir()
	writeTool(t, toolDir, "gobinprobe", "exit 0")

	_, err := newTestInvoker(toolDir).Invoke(context.Background(), Invocation{Tool: "gobinprobe"})
	assert.NoError(t, err)
}

func TestExecInvoker_NonZeroExitKeepsOutput(t *testing.T) {
	binDir := t.TempDir()
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	writeTool(t, binDir, "flaky", `echo partial > "$1"; echo "rate limited" >&2; exit 3`)

	out := filepath.Join(t.TempDir(), "out.txt")
	res, err := newTestInvoker().Invoke(context.Background(), Invocation{Tool: "flaky", Args: []string{out}, OutputPath: out})

	require.Error(t, err)
	assert.ErrorIs(t, err, errorwrapper.ErrProbeNonZeroExit)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Stderr, "rate limited")
	assert.FileExists(t, out)
}

func TestExecInvoker_TimeoutKeepsPartialOutput(t *testing.T) {
	binDir := t.TempDir()
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	writeTool(t, binDir, "slow", `echo first > "$1"; exec sleep 10`)

	out := filepath.Join(t.TempDir(), "out.txt")
	start := time.Now()
	res, err := newTestInvoker().Invoke(context.Background(), Invocation{
		Tool:       "slow",
		Args:       []string{out},
		OutputPath: out,
		Timeout:    300 * time.Millisecond,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errorwrapper.ErrProbeTimeout)
	assert.True(t, res.TimedOut)
	assert.Less(t, time.Since(start), 8*time.Second)

	data, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Equal(t, "first\n", string(data))
}

func TestExecInvoker_ParentCancel(t *testing.T) {
	binDir := t.TempDir()
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	writeTool(t, binDir, "slow", "exec sleep 10")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	res, err := newTestInvoker().Invoke(ctx, Invocation{Tool: "slow"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, res.TimedOut)
}

func TestInvokerFunc(t *testing.T) {
	var got Invocation
	inv := InvokerFunc(func(ctx context.Context, i Invocation) (Result, error) {
		got = i
		return Result{OutputPath: i.OutputPath, ExitCode: 0}, nil
	})

	res, err := inv.Invoke(context.Background(), Invocation{Tool: "dalfox", OutputPath: "/tmp/x.json"})
	require.NoError(t, err)
	assert.Equal(t, "dalfox", got.Tool)
	assert.Equal(t, "/tmp/x.json", res.OutputPath)
}

func TestLookPath(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	dir := t.TempDir()
	exe := writeTool(t, dir, "tool", "exit 0")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notexec"), []byte("x"), 0644))

	got, err := LookPath("tool", []string{"", dir})
	require.NoError(t, err)
	assert.Equal(t, exe, got)

	got, err = LookPath(exe, nil)
	require.NoError(t, err)
	assert.Equal(t, exe, got)

	assert.False(t, Available("notexec", []string{dir}))
	assert.False(t, Available("tool", nil))
}

func TestTailBuffer(t *testing.T) {
	b := &tailBuffer{limit: 4}
	_, _ = b.Write([]byte("abc"))
	_, _ = b.Write([]byte("defg"))
	assert.Equal(t, "defg", b.String())
}
