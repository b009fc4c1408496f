package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// stderrTail bounds how much tool diagnostics an ExecError keeps.
const stderrTail = 4 << 10

// Runner executes external commands. Tests substitute it to avoid real binaries.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// LookPathFunc resolves a binary name the way exec.LookPath does.
type LookPathFunc func(file string) (string, error)

// ExecError reports a failed poppler or tesseract invocation.
type ExecError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

type execRunner struct {
	logger *slog.Logger
	env    []string
}

// NewExecRunner returns a Runner backed by os/exec. Tesseract is limited to one
// OpenMP thread per process since pages are already recognized concurrently.
func NewExecRunner(logger *slog.Logger) Runner {
	return &execRunner{
		logger: logger,
		env:    append(os.Environ(), "OMP_THREAD_LIMIT=1"),
	}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = r.env
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	attrs := []any{
		"tool", name,
		"args", strings.Join(args, " "),
		"duration_ms", time.Since(start).Milliseconds(),
	}

	if err != nil {
		execErr := &ExecError{
			Tool:     name,
			ExitCode: -1,
			Stderr:   tail(strings.TrimSpace(stderr.String()), stderrTail),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			execErr.ExitCode = exitErr.ExitCode()
		}
		r.logger.Warn("external tool failed", append(attrs, "error", execErr)...)
		return stdout.Bytes(), stderr.Bytes(), execErr
	}

	r.logger.Debug("external tool finished", append(attrs, "stdout_bytes", stdout.Len())...)
	return stdout.Bytes(), stderr.Bytes(), nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
