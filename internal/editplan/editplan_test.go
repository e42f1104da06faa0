package editplan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPlanJSON = `{
  "commit_message": "feat: add calculator",
  "notes": "Initial skeleton",
  "files": [
    {"path": "internal/calc.go", "contents": "package calc\n"}
  ]
}`

func TestParse_ValidPlan(t *testing.T) {
	t.Parallel()

	plan, err := Parse(validPlanJSON)
	require.NoError(t, err)

	assert.Equal(t, "feat: add calculator", plan.CommitMessage)
	assert.Equal(t, "Initial skeleton", plan.Notes)
	require.Len(t, plan.Files, 1)
	assert.Equal(t, "internal/calc.go", plan.Files[0].Path)
	assert.Equal(t, "package calc\n", plan.Files[0].Contents)
}

func TestParse_FencedEqualsUnfenced(t *testing.T) {
	t.Parallel()

	fences := []string{
		"```json\n" + validPlanJSON + "\n```",
		"```\n" + validPlanJSON + "\n```",
		"  ```json\n" + validPlanJSON + "\n```  ",
	}

	want, err := Parse(validPlanJSON)
	require.NoError(t, err)

	for _, fenced := range fences {
		got, err := Parse(fenced)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := Parse("not json at all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestParse_MissingCommitMessage(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		`{"notes": "", "files": [{"path": "a.go", "contents": ""}]}`,
		`{"commit_message": "   ", "files": [{"path": "a.go", "contents": ""}]}`,
	} {
		_, err := Parse(raw)
		require.ErrorIs(t, err, ErrMissingCommitMessage)
	}
}

func TestParse_EmptyFiles(t *testing.T) {
	t.Parallel()

	_, err := Parse(`{"commit_message": "feat: x", "files": []}`)
	require.ErrorIs(t, err, ErrEmptyFiles)
}

func TestParse_InvalidPaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
	}{
		{name: "empty", path: ""},
		{name: "absolute", path: "/etc/passwd"},
		{name: "parent traversal", path: "../outside.go"},
		{name: "nested traversal", path: "src/../../outside.go"},
		{name: "windows drive", path: `C:\temp\x.go`},
		{name: "backslash absolute", path: `\etc\passwd`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			raw := `{"commit_message": "feat: x", "files": [{"path": "` + escapeJSON(tt.path) + `", "contents": ""}]}`
			_, err := Parse(raw)
			var pathErr *InvalidPathError
			require.ErrorAs(t, err, &pathErr)
		})
	}
}

func TestParse_CleanRelativePathSucceeds(t *testing.T) {
	t.Parallel()

	plan, err := Parse(`{"commit_message": "feat: x", "files": [{"path": "src/lib.go", "contents": ""}]}`)
	require.NoError(t, err)
	assert.Equal(t, "src/lib.go", plan.Files[0].Path)
}

func TestParse_NormalizesBackslashes(t *testing.T) {
	t.Parallel()

	plan, err := Parse(`{"commit_message": "feat: x", "files": [{"path": "src\\lib.go", "contents": ""}]}`)
	require.NoError(t, err)
	assert.Equal(t, "src/lib.go", plan.Files[0].Path)
}

func TestParse_DuplicatePath(t *testing.T) {
	t.Parallel()

	raw := `{
  "commit_message": "feat: x",
  "files": [
    {"path": "src/lib.go", "contents": "a"},
    {"path": "src\\lib.go", "contents": "b"}
  ]
}`
	_, err := Parse(raw)
	var dupErr *DuplicatePathError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "src/lib.go", dupErr.Path)
}

func TestApply_WritesFilesInOrder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	plan := &Plan{
		CommitMessage: "feat: x",
		Files: []FileEdit{
			{Path: "internal/a.go", Contents: "package a\n"},
			{Path: "tests/a_test.go", Contents: "package a\n"},
		},
	}

	changed, err := plan.Apply(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"internal/a.go", "tests/a_test.go"}, changed)

	data, err := os.ReadFile(filepath.Join(root, "internal", "a.go"))
	require.NoError(t, err)
	assert.Equal(t, "package a\n", string(data))
}

func TestApply_OverwritesExistingFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("old"), 0o644))

	plan := &Plan{CommitMessage: "feat: x", Files: []FileEdit{{Path: "a.go", Contents: "new"}}}
	_, err := plan.Apply(root)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "a.go"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func escapeJSON(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == '"' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

func TestErrorsDistinguishable(t *testing.T) {
	t.Parallel()

	_, err := Parse(`{"commit_message": "x", "files": [{"path": "../x", "contents": ""}]}`)
	assert.False(t, errors.Is(err, ErrMissingCommitMessage))
	assert.False(t, errors.Is(err, ErrEmptyFiles))
	var pathErr *InvalidPathError
	assert.True(t, errors.As(err, &pathErr))
}
