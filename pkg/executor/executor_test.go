package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found")
	}
}

func TestExecute_Stdout(t *testing.T) {
	requireShell(t)

	out, err := New().Execute(context.Background(), "sh", "-c", "printf 'こんにちは'")
	require.NoError(t, err)
	assert.Equal(t, "こんにちは", out)
}

func TestExecute_FailureCarriesStderr(t *testing.T) {
	requireShell(t)

	_, err := New().Execute(context.Background(), "sh", "-c", "echo broken >&2; exit 3")
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, "sh", cmdErr.Name)
	assert.Equal(t, "broken", cmdErr.Stderr)
	assert.Contains(t, err.Error(), "stderr: broken")

	var exitErr *exec.ExitError
	assert.True(t, errors.As(err, &exitErr))
}

func TestExecuteInDir(t *testing.T) {
	requireShell(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), nil, 0o644))

	out, err := New().ExecuteInDir(context.Background(), dir, "sh", "-c", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "marker.txt")
}
