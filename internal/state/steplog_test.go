package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdxlabs/tdx/internal/runner"
	"github.com/tdxlabs/tdx/internal/step"
)

func sampleEntry(stepIndex int, role step.Role) LogEntry {
	return LogEntry{
		StepIndex:     stepIndex,
		Role:          role,
		RunID:         "run-123",
		PlanPath:      ".tdx/plan/step-001-tester.md",
		FilesChanged:  []string{"tests/calc_test.go"},
		CommitID:      "abc123",
		CommitMessage: "test: add failing case",
		Notes:         "covers empty string",
		Runner: RunnerLog{
			Fmt:   runner.Outcome{Code: 0},
			Check: runner.Outcome{Code: 0},
			Test:  runner.Outcome{Code: 0, Stdout: "ok"},
		},
	}
}

func TestLogStore_WriteAndLatestEntry(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "logs")
	store := NewLogStore(dir)

	path, err := store.Write(sampleEntry(1, step.RoleTester))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "step-001-tester.json"), path)

	_, err = store.Write(sampleEntry(2, step.RoleImplementor))
	require.NoError(t, err)

	entry, ok, err := store.LatestEntry()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, entry.StepIndex)
	assert.Equal(t, step.RoleImplementor, entry.Role)
	assert.Equal(t, "run-123", entry.RunID)
	assert.Equal(t, "ok", entry.Runner.Test.Stdout)
}

func TestLogStore_LatestEntry_NoLogs(t *testing.T) {
	t.Parallel()

	store := NewLogStore(filepath.Join(t.TempDir(), "missing"))
	_, ok, err := store.LatestEntry()
	require.NoError(t, err)
	assert.False(t, ok)
}
