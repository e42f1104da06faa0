// Package testutil provides shared fixtures for tests that need a real
// workspace: a temp directory with a kata file and an initialized git
// repository.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tdxlabs/tdx/internal/vcs"
)

// SampleKata is the kata description used by workspace fixtures.
const SampleKata = `# String Calculator

Implement a string calculator that sums comma-separated numbers.
Return 0 for an empty string.
`

// TestAuthor is the commit signature used by fixtures and tests.
var TestAuthor = vcs.Author{Name: "Test Bot", Email: "bot@example.com"}

// Workspace is a throwaway kata workspace backed by t.TempDir.
type Workspace struct {
	Root string
	Repo *vcs.Git
}

// NewWorkspace creates a temp workspace with kata.md and an initialized,
// empty git repository.
func NewWorkspace(t *testing.T) *Workspace {
	t.Helper()

	root := t.TempDir()
	WriteFile(t, root, "kata.md", SampleKata)

	repo, err := vcs.OpenOrInit(root)
	require.NoError(t, err)
	require.NoError(t, repo.EnsureInitialized())

	return &Workspace{Root: root, Repo: repo}
}

// CommitAll stages and commits everything in the workspace, returning the
// commit id.
func (w *Workspace) CommitAll(t *testing.T, message string) string {
	t.Helper()
	require.NoError(t, w.Repo.StageAll())
	id, err := w.Repo.Commit(message, TestAuthor)
	require.NoError(t, err)
	return id
}

// WriteFile writes content at a workspace-relative path, creating parent
// directories as needed.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
