package runner

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestExecRunner_Success(t *testing.T) {
	r := &ExecRunner{Log: testLogger()}

	output, code, err := r.Run(context.Background(), t.TempDir(), nil, "sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello\n", string(output))
}

func TestExecRunner_ExitCode(t *testing.T) {
	r := &ExecRunner{Log: testLogger()}

	output, code, err := r.Run(context.Background(), t.TempDir(), nil, "sh", "-c", "echo oops; exit 7")
	require.NoError(t, err)
	assert.Equal(t, 7, code)
	assert.Equal(t, "oops\n", string(output))
}

func TestExecRunner_ExtraEnv(t *testing.T) {
	r := &ExecRunner{Log: testLogger()}

	output, code, err := r.Run(context.Background(), t.TempDir(), []string{"RECOVERY_TEST_VAR=42"}, "sh", "-c", "echo $RECOVERY_TEST_VAR")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "42\n", string(output))
}

func TestExecRunner_StartFailure(t *testing.T) {
	r := &ExecRunner{Log: testLogger()}

	_, code, err := r.Run(context.Background(), t.TempDir(), nil, "definitely-not-a-binary")
	assert.Error(t, err)
	assert.Equal(t, -1, code)
}
