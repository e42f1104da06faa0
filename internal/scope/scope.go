// Package scope enforces the per-role rules restricting which files an
// edit plan may touch.
package scope

import (
	"fmt"
	"strings"

	"github.com/tdxlabs/tdx/internal/editplan"
	"github.com/tdxlabs/tdx/internal/step"
)

// MaxFiles is the ceiling on plan size for the Implementor and Refactorer
// roles. The Tester has no maximum.
const MaxFiles = 5

// ViolationError describes why a plan was rejected for a role. The reason
// always names the offending path or count.
type ViolationError struct {
	Role   step.Role
	Reason string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%s scope violation: %s", e.Role, e.Reason)
}

// IsTestPath reports whether path targets test code: anything under a tests
// directory (top-level or nested) or a Go test file.
func IsTestPath(p string) bool {
	normalized := strings.ReplaceAll(p, `\`, "/")
	return strings.HasPrefix(normalized, "tests/") ||
		strings.Contains(normalized, "/tests/") ||
		strings.Contains(normalized, "/test/") ||
		strings.HasSuffix(normalized, "_test.go")
}

// IsSourcePath reports whether path targets production code: files under a
// source directory, the module manifest, or any Go file not classified as a
// test.
func IsSourcePath(p string) bool {
	normalized := strings.ReplaceAll(p, `\`, "/")
	if IsTestPath(normalized) {
		return false
	}
	return strings.HasPrefix(normalized, "src/") ||
		strings.HasPrefix(normalized, "internal/") ||
		strings.HasPrefix(normalized, "cmd/") ||
		strings.HasPrefix(normalized, "examples/") ||
		normalized == "go.mod" ||
		strings.HasSuffix(normalized, ".go")
}

// Check validates a parsed plan against the rules for role.
//
//   - Tester: at least one file, every file a test path.
//   - Implementor: at least one source file, at most MaxFiles total.
//   - Refactorer: at least one file, no test files, every file a source
//     file, at most MaxFiles total.
func Check(role step.Role, plan *editplan.Plan) error {
	switch role {
	case step.RoleTester:
		return checkTester(plan)
	case step.RoleImplementor:
		return checkImplementor(plan)
	case step.RoleRefactorer:
		return checkRefactorer(plan)
	default:
		return fmt.Errorf("no scope policy for role %q", role)
	}
}

func checkTester(plan *editplan.Plan) error {
	if len(plan.Files) == 0 {
		return &ViolationError{Role: step.RoleTester, Reason: "plan must edit at least one test file"}
	}
	for _, f := range plan.Files {
		if !IsTestPath(f.Path) {
			return &ViolationError{
				Role:   step.RoleTester,
				Reason: fmt.Sprintf("may only touch test files, got %q", f.Path),
			}
		}
	}
	return nil
}

func checkImplementor(plan *editplan.Plan) error {
	if len(plan.Files) > MaxFiles {
		return &ViolationError{
			Role:   step.RoleImplementor,
			Reason: fmt.Sprintf("plan touches %d files, limit is %d", len(plan.Files), MaxFiles),
		}
	}
	for _, f := range plan.Files {
		if IsSourcePath(f.Path) {
			return nil
		}
	}
	return &ViolationError{
		Role:   step.RoleImplementor,
		Reason: "plan must modify at least one source file",
	}
}

func checkRefactorer(plan *editplan.Plan) error {
	if len(plan.Files) == 0 {
		return &ViolationError{Role: step.RoleRefactorer, Reason: "plan must edit at least one source file"}
	}
	if len(plan.Files) > MaxFiles {
		return &ViolationError{
			Role:   step.RoleRefactorer,
			Reason: fmt.Sprintf("plan touches %d files, limit is %d", len(plan.Files), MaxFiles),
		}
	}
	for _, f := range plan.Files {
		if IsTestPath(f.Path) {
			return &ViolationError{
				Role:   step.RoleRefactorer,
				Reason: fmt.Sprintf("may not modify test files, got %q", f.Path),
			}
		}
		if !IsSourcePath(f.Path) {
			return &ViolationError{
				Role:   step.RoleRefactorer,
				Reason: fmt.Sprintf("may only modify source files, got %q", f.Path),
			}
		}
	}
	return nil
}
