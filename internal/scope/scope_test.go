package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdxlabs/tdx/internal/editplan"
	"github.com/tdxlabs/tdx/internal/step"
)

func planOf(paths ...string) *editplan.Plan {
	files := make([]editplan.FileEdit, len(paths))
	for i, p := range paths {
		files[i] = editplan.FileEdit{Path: p}
	}
	return &editplan.Plan{CommitMessage: "msg", Files: files}
}

func TestIsTestPath(t *testing.T) {
	t.Parallel()

	assert.True(t, IsTestPath("tests/calc_test.go"))
	assert.True(t, IsTestPath("pkg/tests/helpers.go"))
	assert.True(t, IsTestPath("internal/calc_test.go"))
	assert.True(t, IsTestPath("tests/foo_test.x"))
	assert.False(t, IsTestPath("internal/calc.go"))
	assert.False(t, IsTestPath("src/lib.x"))
}

func TestIsSourcePath(t *testing.T) {
	t.Parallel()

	assert.True(t, IsSourcePath("src/lib.x"))
	assert.True(t, IsSourcePath("internal/calc.go"))
	assert.True(t, IsSourcePath("cmd/tool/main.go"))
	assert.True(t, IsSourcePath("go.mod"))
	assert.False(t, IsSourcePath("internal/calc_test.go"))
	assert.False(t, IsSourcePath("README.md"))
}

func TestCheck_Tester(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		plan    *editplan.Plan
		wantErr bool
	}{
		{name: "test file accepted", plan: planOf("tests/foo_test.x")},
		{name: "go test file accepted", plan: planOf("internal/calc_test.go")},
		{name: "source file rejected", plan: planOf("src/lib.x"), wantErr: true},
		{name: "mixed rejected", plan: planOf("tests/foo_test.x", "src/lib.x"), wantErr: true},
		{name: "empty rejected", plan: planOf(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Check(step.RoleTester, tt.plan)
			if tt.wantErr {
				var violation *ViolationError
				require.ErrorAs(t, err, &violation)
				assert.Equal(t, step.RoleTester, violation.Role)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCheck_Implementor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		plan    *editplan.Plan
		wantErr bool
	}{
		{name: "single source file accepted", plan: planOf("src/lib.x")},
		{name: "source plus test accepted", plan: planOf("src/lib.x", "tests/foo.x")},
		{name: "tests only rejected", plan: planOf("tests/foo.x"), wantErr: true},
		{name: "six files rejected regardless of content", plan: planOf("src/a.x", "src/b.x", "src/c.x", "src/d.x", "src/e.x", "src/f.x"), wantErr: true},
		{name: "five source files accepted", plan: planOf("src/a.x", "src/b.x", "src/c.x", "src/d.x", "src/e.x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Check(step.RoleImplementor, tt.plan)
			if tt.wantErr {
				var violation *ViolationError
				require.ErrorAs(t, err, &violation)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCheck_Refactorer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		plan    *editplan.Plan
		wantErr bool
	}{
		{name: "source files accepted", plan: planOf("src/a.x", "internal/b.go")},
		{name: "any test path rejected", plan: planOf("src/a.x", "tests/foo.x"), wantErr: true},
		{name: "non-source rejected", plan: planOf("README.md"), wantErr: true},
		{name: "empty rejected", plan: planOf(), wantErr: true},
		{name: "six files rejected", plan: planOf("src/a.x", "src/b.x", "src/c.x", "src/d.x", "src/e.x", "src/f.x"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Check(step.RoleRefactorer, tt.plan)
			if tt.wantErr {
				var violation *ViolationError
				require.ErrorAs(t, err, &violation)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestViolationError_NamesOffendingPath(t *testing.T) {
	t.Parallel()

	err := Check(step.RoleTester, planOf("src/lib.x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "src/lib.x")
}
