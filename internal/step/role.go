// Package step defines the roles, rotation rules, and per-step context
// shared by the orchestrator and the agents.
package step

import "fmt"

// Role identifies which agent acts during a step of the red-green-refactor
// loop. The rotation is fixed: Tester -> Implementor -> Refactorer -> Tester.
type Role string

const (
	RoleTester      Role = "tester"
	RoleImplementor Role = "implementor"
	RoleRefactorer  Role = "refactorer"
)

// ParseRole converts a string (as found in plan/log file names) into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleTester, RoleImplementor, RoleRefactorer:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTester, RoleImplementor, RoleRefactorer:
		return true
	}
	return false
}

// Next returns the successor role in the fixed cycle.
func (r Role) Next() Role {
	switch r {
	case RoleTester:
		return RoleImplementor
	case RoleImplementor:
		return RoleRefactorer
	default:
		return RoleTester
	}
}

// String returns the role identifier used in logs, file names, and prompts.
func (r Role) String() string {
	return string(r)
}

// RoleCycle tracks the current role and encodes the rotation rules.
// It is owned by a single orchestrator instance and mutated only by Advance.
type RoleCycle struct {
	current Role
}

// NewCycle starts a cycle from a specific role.
func NewCycle(initial Role) *RoleCycle {
	return &RoleCycle{current: initial}
}

// CycleFromHistory determines the starting role from repository history.
//
// A workspace with no commits always starts with Tester, regardless of any
// recorded last role: a fresh workspace must begin with a failing test.
// Otherwise the cycle resumes with the successor of the last known role,
// defaulting to Tester when the last role is unknown (empty).
func CycleFromHistory(lastRole Role, workspaceEmpty bool) *RoleCycle {
	if workspaceEmpty {
		return NewCycle(RoleTester)
	}
	if lastRole == "" {
		return NewCycle(RoleTester)
	}
	return NewCycle(lastRole.Next())
}

// Current returns the role whose turn it is.
func (c *RoleCycle) Current() Role {
	return c.current
}

// Advance moves to the next role and returns it.
func (c *RoleCycle) Advance() Role {
	c.current = c.current.Next()
	return c.current
}
