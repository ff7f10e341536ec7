package runner

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
)

// CommandRunner runs an external command to completion and reports its
// combined output and exit code. The returned error is only set when the
// command could not be started at all; a command that ran and failed is
// reported through its exit code.
type CommandRunner interface {
	Run(ctx context.Context, dir string, extraEnv []string, name string, args ...string) (output []byte, exitCode int, err error)
}

// ExecRunner is the os/exec implementation of CommandRunner.
type ExecRunner struct {
	Log *slog.Logger
}

// Run executes name with args in dir. extraEnv entries are appended to the
// current process environment.
func (r *ExecRunner) Run(ctx context.Context, dir string, extraEnv []string, name string, args ...string) ([]byte, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}

	r.Log.Debug("Running external command", "name", name, "args", args, "dir", dir)

	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output, exitErr.ExitCode(), nil
		}
		return output, -1, err
	}

	return output, 0, nil
}
