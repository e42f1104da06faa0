package step

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdxlabs/tdx/internal/vcs"
)

func newRepoWorkspace(t *testing.T) (string, *vcs.Git) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "kata.md"), []byte("Practice strings"), 0o644))
	repo, err := vcs.OpenOrInit(root)
	require.NoError(t, err)
	require.NoError(t, repo.EnsureInitialized())
	return root, repo
}

func TestContextBuilder_EmptyRepo(t *testing.T) {
	t.Parallel()

	root, repo := newRepoWorkspace(t)
	builder := NewContextBuilder(root, "kata.md", repo)

	ctx, err := builder.Build(RoleTester, 1)
	require.NoError(t, err)

	assert.Equal(t, RoleTester, ctx.Role)
	assert.Equal(t, 1, ctx.StepIndex)
	assert.Contains(t, ctx.KataDescription, "Practice")
	assert.Empty(t, ctx.LastCommitMessage)
	assert.Empty(t, ctx.LastCommitDiff)
	assert.Contains(t, ctx.Files, "kata.md")
}

func TestContextBuilder_WithLastCommit(t *testing.T) {
	t.Parallel()

	root, repo := newRepoWorkspace(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "internal"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "internal", "calc.go"),
		[]byte("package calc\n\nfunc MeaningOfLife() int { return 42 }\n"), 0o644))
	require.NoError(t, repo.StageAll())
	_, err := repo.Commit("feat: add meaning of life", vcs.Author{Name: "Bot", Email: "bot@example.com"})
	require.NoError(t, err)

	builder := NewContextBuilder(root, "kata.md", repo)
	ctx, err := builder.Build(RoleImplementor, 2)
	require.NoError(t, err)

	assert.Equal(t, RoleImplementor, ctx.Role)
	assert.Equal(t, 2, ctx.StepIndex)
	assert.Contains(t, ctx.LastCommitMessage, "meaning of life")
	assert.Contains(t, ctx.LastCommitDiff, "MeaningOfLife")
	assert.Contains(t, ctx.Files, "internal/calc.go")
}

func TestContextBuilder_MissingKataFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	repo, err := vcs.OpenOrInit(root)
	require.NoError(t, err)

	builder := NewContextBuilder(root, "kata.md", repo)
	_, err = builder.Build(RoleTester, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kata")
}
