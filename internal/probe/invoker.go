package probe

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/aleister1102/ayumi/internal/common/errorwrapper"
	"github.com/aleister1102/ayumi/internal/config"
	"github.com/rs/zerolog"
)

// Invocation is one run of an external tool
type Invocation struct {
	Tool       string
	Args       []string
	OutputPath string        // file the tool was told to write, if any
	Timeout    time.Duration // zero uses the invoker default
}

// Result is the handle to a finished run's raw output. It is returned even
// when the run failed so partial output can still be parsed.
type Result struct {
	OutputPath string
	Stdout     []byte
	Stderr     string
	ExitCode   int
	TimedOut   bool
	Duration   time.Duration
}

// Invoker runs an external probe and never looks at its output
type Invoker interface {
	Invoke(ctx context.Context, inv Invocation) (Result, error)
}

// InvokerFunc adapts a function to the Invoker interface
type InvokerFunc func(ctx context.Context, inv Invocation) (Result, error)

// Invoke calls f(ctx, inv)
func (f InvokerFunc) Invoke(ctx context.Context, inv Invocation) (Result, error) {
	return f(ctx, inv)
}

const (
	maxStderrBytes = 64 * 1024
	killWaitDelay  = 5 * time.Second
)

// ExecInvoker runs probes as child processes
type ExecInvoker struct {
	logger         zerolog.Logger
	toolDirs       []string
	defaultTimeout time.Duration
}

// NewExecInvoker creates an invoker that resolves binaries through $PATH
// and the configured tool directories.
func NewExecInvoker(cfg config.ProbeConfig, logger zerolog.Logger) *ExecInvoker {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultProbeTimeoutMinutes) * time.Minute
	}
	return &ExecInvoker{
		logger:         logger.With().Str("component", "ProbeInvoker").Logger(),
		toolDirs:       cfg.ToolDirs,
		defaultTimeout: timeout,
	}
}

// Invoke runs inv.Tool with a hard deadline. Errors are *errorwrapper.ProbeError
// for the not-found, timeout and non-zero-exit cases; the Result is valid in
// the latter two.
func (e *ExecInvoker) Invoke(ctx context.Context, inv Invocation) (Result, error) {
	result := Result{OutputPath: inv.OutputPath, ExitCode: -1}

	path, err := LookPath(inv.Tool, e.toolDirs)
	if err != nil {
		e.logger.Error().Str("tool", inv.Tool).Msg("Probe binary not found")
		return result, &errorwrapper.ProbeError{Tool: inv.Tool, Kind: errorwrapper.ErrProbeNotFound, Wrapped: err}
	}

	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout bytes.Buffer
	stderr := &tailBuffer{limit: maxStderrBytes}

	cmd := exec.CommandContext(runCtx, path, inv.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = killWaitDelay

	e.logger.Info().
		Str("tool", inv.Tool).
		Str("path", path).
		Str("args", strings.Join(inv.Args, " ")).
		Dur("timeout", timeout).
		Msg("Running probe")

	start := time.Now()
	runErr := cmd.Run()
	result.Duration = time.Since(start)
	result.Stdout = stdout.Bytes()
	result.Stderr = stderr.String()
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if runErr == nil {
		e.logger.Info().Str("tool", inv.Tool).Dur("duration", result.Duration).Msg("Probe finished")
		return result, nil
	}

	// operator abort wins over the probe deadline
	if ctx.Err() != nil {
		e.logger.Warn().Str("tool", inv.Tool).Msg("Probe cancelled")
		return result, errorwrapper.WrapError(ctx.Err(), "probe '"+inv.Tool+"' cancelled")
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		e.logger.Warn().Str("tool", inv.Tool).Dur("timeout", timeout).Msg("Probe killed at deadline, keeping partial output")
		return result, &errorwrapper.ProbeError{Tool: inv.Tool, Kind: errorwrapper.ErrProbeTimeout, Timeout: timeout, Wrapped: runErr}
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		e.logger.Warn().
			Str("tool", inv.Tool).
			Int("exit_code", result.ExitCode).
			Str("stderr", lastLine(result.Stderr)).
			Msg("Probe exited with non-zero status")
		return result, &errorwrapper.ProbeError{Tool: inv.Tool, Kind: errorwrapper.ErrProbeNonZeroExit, ExitCode: result.ExitCode, Wrapped: runErr}
	}

	if errors.Is(runErr, exec.ErrNotFound) {
		return result, &errorwrapper.ProbeError{Tool: inv.Tool, Kind: errorwrapper.ErrProbeNotFound, Wrapped: runErr}
	}

	return result, errorwrapper.WrapError(runErr, "failed to run probe '"+inv.Tool+"'")
}

// tailBuffer keeps the last limit bytes written to it
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}

func lastLine(s string) string {
	s = strings.TrimRight(s, "\n")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
