package step

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleNext_FixedCycle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, RoleImplementor, RoleTester.Next())
	assert.Equal(t, RoleRefactorer, RoleImplementor.Next())
	assert.Equal(t, RoleTester, RoleRefactorer.Next())
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{input: "tester", want: RoleTester},
		{input: "implementor", want: RoleImplementor},
		{input: "refactorer", want: RoleRefactorer},
		{input: "manager", wantErr: true},
		{input: "", wantErr: true},
		{input: "Tester", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			role, err := ParseRole(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}

func TestRoleCycle_AdvancesInOrder(t *testing.T) {
	t.Parallel()

	cycle := NewCycle(RoleTester)
	assert.Equal(t, RoleTester, cycle.Current())
	assert.Equal(t, RoleImplementor, cycle.Advance())
	assert.Equal(t, RoleRefactorer, cycle.Advance())
	assert.Equal(t, RoleTester, cycle.Advance())
}

func TestCycleFromHistory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		lastRole       Role
		workspaceEmpty bool
		want           Role
	}{
		{name: "empty workspace always starts with tester", lastRole: RoleRefactorer, workspaceEmpty: true, want: RoleTester},
		{name: "no history starts with tester", lastRole: "", workspaceEmpty: true, want: RoleTester},
		{name: "resumes after last role", lastRole: RoleTester, workspaceEmpty: false, want: RoleImplementor},
		{name: "resumes after refactorer wraps to tester", lastRole: RoleRefactorer, workspaceEmpty: false, want: RoleTester},
		{name: "unknown last role defaults to tester", lastRole: "", workspaceEmpty: false, want: RoleTester},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cycle := CycleFromHistory(tt.lastRole, tt.workspaceEmpty)
			assert.Equal(t, tt.want, cycle.Current())
		})
	}
}
