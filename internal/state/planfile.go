// Package state persists the per-step artifacts that outlive a process:
// plan files (the audit trail of agent strategy text) and step logs (the
// structured record of what each step did). Plan files double as the resume
// point: on restart, the highest-numbered plan determines the last role and
// the next step index.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tdxlabs/tdx/internal/step"
)

// PlanStore writes and inspects plan files under a single directory.
type PlanStore struct {
	dir string
}

// NewPlanStore creates a store rooted at dir. The directory is created on
// first write, not here.
func NewPlanStore(dir string) *PlanStore {
	return &PlanStore{dir: dir}
}

// Dir returns the plan directory.
func (s *PlanStore) Dir() string {
	return s.dir
}

// PlanFileName returns the artifact name for a step and role, e.g.
// "step-001-tester.md".
func PlanFileName(stepIndex int, role step.Role) string {
	return fmt.Sprintf("step-%03d-%s.md", stepIndex, role)
}

// Write persists raw plan text with a fixed header, returning the path of
// the written file. Plans are written before any edit attempt so a failed
// step still leaves its strategy on disk.
func (s *PlanStore) Write(stepIndex int, role step.Role, planText string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create plan directory: %w", err)
	}
	path := filepath.Join(s.dir, PlanFileName(stepIndex, role))
	content := fmt.Sprintf("# Plan — step %03d (%s)\n\n%s\n", stepIndex, role, planText)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write plan file %s: %w", path, err)
	}
	return path, nil
}

// Progress is the resume point derived from plan history.
type Progress struct {
	// LastRole is the role of the highest-numbered plan artifact; empty
	// when no plans exist.
	LastRole step.Role
	// NextStep is the 1-based index the next step should use.
	NextStep int
}

// DetectProgress scans the plan directory for step artifacts. A missing
// directory means a fresh workspace.
func (s *PlanStore) DetectProgress() (Progress, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Progress{NextStep: 1}, nil
		}
		return Progress{}, fmt.Errorf("failed to read plan directory %s: %w", s.dir, err)
	}

	progress := Progress{NextStep: 1}
	maxStep := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stepIndex, role, ok := parsePlanFileName(entry.Name())
		if !ok {
			continue
		}
		if stepIndex > maxStep {
			maxStep = stepIndex
			progress.LastRole = role
		}
	}
	if maxStep > 0 {
		progress.NextStep = maxStep + 1
	}
	return progress, nil
}

// parsePlanFileName extracts the step index and role from an artifact name.
// Files that do not match the step-NNN-<role>.md shape are ignored.
func parsePlanFileName(name string) (int, step.Role, bool) {
	if !strings.HasSuffix(name, ".md") {
		return 0, "", false
	}
	return parseStepArtifactName(strings.TrimSuffix(name, ".md"))
}

// parseStepArtifactName parses an extensionless "step-NNN-<role>" name,
// shared by plan files and step logs.
func parseStepArtifactName(base string) (int, step.Role, bool) {
	if !strings.HasPrefix(base, "step-") {
		return 0, "", false
	}
	inner := strings.TrimPrefix(base, "step-")
	numPart, rolePart, found := strings.Cut(inner, "-")
	if !found {
		return 0, "", false
	}
	stepIndex, err := strconv.Atoi(numPart)
	if err != nil || stepIndex <= 0 {
		return 0, "", false
	}
	role, err := step.ParseRole(rolePart)
	if err != nil {
		return 0, "", false
	}
	return stepIndex, role, true
}
