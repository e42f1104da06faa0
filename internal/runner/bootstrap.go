package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// BootstrapSpec configures the optional provisioning command executed
// before the first step of a run.
type BootstrapSpec struct {
	Command   []string
	SkipFiles []string
}

// BootstrapResult describes one bootstrap attempt, including the skip case.
// It is persisted as JSON so doctor can inspect the last provisioning run.
type BootstrapResult struct {
	Command    []string      `json:"command"`
	Skipped    bool          `json:"skipped"`
	SkipReason string        `json:"skip_reason,omitempty"`
	ExitCode   int           `json:"exit_code"`
	Stdout     string        `json:"stdout,omitempty"`
	Stderr     string        `json:"stderr,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}

// Bootstrap runs a provisioning command, honoring skip-marker files.
type Bootstrap struct {
	root string
	spec BootstrapSpec
}

// NewBootstrap creates a bootstrap runner rooted at the workspace.
func NewBootstrap(root string, spec BootstrapSpec) *Bootstrap {
	return &Bootstrap{root: root, spec: spec}
}

// Run executes the bootstrap command unless a skip marker exists. When
// force is true, skip markers are ignored.
func (b *Bootstrap) Run(ctx context.Context, force bool) (BootstrapResult, error) {
	if len(b.spec.Command) == 0 {
		return BootstrapResult{}, errors.New("bootstrap command cannot be empty")
	}

	if !force {
		if reason := b.skipReason(); reason != "" {
			return BootstrapResult{
				Command:    b.spec.Command,
				Skipped:    true,
				SkipReason: reason,
			}, nil
		}
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, b.spec.Command[0], b.spec.Command[1:]...)
	cmd.Dir = b.root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := BootstrapResult{
		Command:  b.spec.Command,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, fmt.Errorf("bootstrap command failed with exit code %d", result.ExitCode)
	default:
		return result, fmt.Errorf("failed to run bootstrap command %s: %w", b.spec.Command[0], err)
	}
}

// skipReason returns a description of the first present skip marker, or ""
// when none exist.
func (b *Bootstrap) skipReason() string {
	for _, marker := range b.spec.SkipFiles {
		path := marker
		if !filepath.IsAbs(path) {
			path = filepath.Join(b.root, marker)
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Sprintf("skip marker present at %s", path)
		}
	}
	return ""
}
