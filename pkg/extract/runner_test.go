package extract_test

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/JaimeStill/concall/pkg/extract"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunnerSuccess(t *testing.T) {
	requireShell(t)
	runner := extract.NewExecRunner(discard())

	stdout, _, err := runner.Run(context.Background(), "sh", "-c", "printf '%s' \"$OMP_THREAD_LIMIT\"")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if string(stdout) != "1" {
		t.Errorf("OMP_THREAD_LIMIT = %q, want 1", stdout)
	}
}

func TestExecRunnerFailure(t *testing.T) {
	requireShell(t)
	runner := extract.NewExecRunner(discard())

	_, stderr, err := runner.Run(context.Background(), "sh", "-c", "echo 'Syntax Warning: bad xref' >&2; exit 3")
	if err == nil {
		t.Fatal("expected error")
	}

	var execErr *extract.ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("error type = %T, want *ExecError", err)
	}
	if execErr.Tool != "sh" || execErr.ExitCode != 3 {
		t.Errorf("exec error = %+v", execErr)
	}
	if execErr.Stderr != "Syntax Warning: bad xref" {
		t.Errorf("stderr = %q", execErr.Stderr)
	}
	if !strings.Contains(string(stderr), "bad xref") {
		t.Errorf("raw stderr = %q", stderr)
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Error("ExecError should unwrap to *exec.ExitError")
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	runner := extract.NewExecRunner(discard())

	_, _, err := runner.Run(context.Background(), "concall-no-such-tool")

	var execErr *extract.ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("error type = %T, want *ExecError", err)
	}
	if execErr.ExitCode != -1 {
		t.Errorf("exit code = %d, want -1", execErr.ExitCode)
	}
}
