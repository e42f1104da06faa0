package vcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFiles_SortedRelativePaths(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "kata.md", "desc")
	writeFile(t, root, "src/lib.go", "package lib")
	writeFile(t, root, "tests/lib_test.go", "package lib")

	files, err := ListFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"kata.md", "src/lib.go", "tests/lib_test.go"}, files)
}

func TestListFiles_ExcludesDotDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, err := OpenOrInit(root)
	require.NoError(t, err)
	writeFile(t, root, "a.txt", "x")
	writeFile(t, root, ".tdx/plan/step-001-tester.md", "plan")
	writeFile(t, root, ".hidden", "x")

	files, err := ListFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, files)
}

func TestListFiles_HonorsGitignore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, ".gitignore", "target/\n*.log\n")
	writeFile(t, root, "keep.go", "package keep")
	writeFile(t, root, "target/out.bin", "binary")
	writeFile(t, root, "debug.log", "noise")

	files, err := ListFiles(root)
	require.NoError(t, err)
	assert.Contains(t, files, "keep.go")
	assert.NotContains(t, files, "target/out.bin")
	assert.NotContains(t, files, "debug.log")
}

func TestListFiles_EmptyWorkspace(t *testing.T) {
	t.Parallel()

	files, err := ListFiles(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}
