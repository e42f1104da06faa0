package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecFromArgv(t *testing.T) {
	t.Parallel()

	spec, err := SpecFromArgv([]string{"go", "test", "./..."})
	require.NoError(t, err)
	assert.Equal(t, "go", spec.Program)
	assert.Equal(t, []string{"test", "./..."}, spec.Args)

	_, err = SpecFromArgv(nil)
	require.Error(t, err)
}

func TestCommandsFromArgv_RejectsEmptyCommand(t *testing.T) {
	t.Parallel()

	_, err := CommandsFromArgv([]string{"gofmt"}, nil, []string{"go", "test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check")
}

func shellCommands(script string) Commands {
	spec := Spec{Program: "sh", Args: []string{"-c", script}}
	return Commands{Fmt: spec, Check: spec, Test: spec}
}

func TestCommandRunner_CapturesStdout(t *testing.T) {
	t.Parallel()

	r := NewCommandRunner(t.TempDir(), shellCommands("echo hello"))
	out, err := r.Fmt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, out.Code)
	assert.Equal(t, "hello\n", out.Stdout)
	assert.Empty(t, out.Stderr)
}

func TestCommandRunner_NonZeroExitIsCommandError(t *testing.T) {
	t.Parallel()

	r := NewCommandRunner(t.TempDir(), shellCommands("echo oops >&2; exit 3"))
	out, err := r.Test(context.Background())

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 3, cmdErr.Outcome.Code)
	assert.Contains(t, cmdErr.Outcome.Stderr, "oops")
	assert.Equal(t, 3, out.Code)
}

func TestCommandRunner_MissingBinary(t *testing.T) {
	t.Parallel()

	commands := Commands{
		Fmt:   Spec{Program: "definitely-not-a-real-binary-xyz"},
		Check: Spec{Program: "true"},
		Test:  Spec{Program: "true"},
	}
	r := NewCommandRunner(t.TempDir(), commands)
	_, err := r.Fmt(context.Background())
	require.Error(t, err)

	var cmdErr *CommandError
	assert.False(t, errors.As(err, &cmdErr), "a missing binary is an environment error, not a gate failure")
}

func TestCommandRunner_RunsInWorkspaceDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "marker.txt"), []byte("x"), 0o644))

	r := NewCommandRunner(root, shellCommands("ls"))
	out, err := r.Check(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.Stdout, "marker.txt")
}
