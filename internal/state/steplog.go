package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tdxlabs/tdx/internal/runner"
	"github.com/tdxlabs/tdx/internal/step"
)

// RunnerLog captures the three verification outcomes for one step.
type RunnerLog struct {
	Fmt   runner.Outcome `json:"fmt"`
	Check runner.Outcome `json:"check"`
	Test  runner.Outcome `json:"test"`
}

// LogEntry is the structured record of one accepted step.
type LogEntry struct {
	StepIndex     int       `json:"step_index"`
	Role          step.Role `json:"role"`
	RunID         string    `json:"run_id"`
	PlanPath      string    `json:"plan_path"`
	FilesChanged  []string  `json:"files_changed"`
	CommitID      string    `json:"commit_id"`
	CommitMessage string    `json:"commit_message"`
	Notes         string    `json:"notes,omitempty"`
	Runner        RunnerLog `json:"runner"`
}

// LogStore writes and reads step logs under a single directory.
type LogStore struct {
	dir string
}

// NewLogStore creates a store rooted at dir.
func NewLogStore(dir string) *LogStore {
	return &LogStore{dir: dir}
}

// Dir returns the log directory.
func (s *LogStore) Dir() string {
	return s.dir
}

// Write persists entry as step-NNN-<role>.json, returning the written path.
func (s *LogStore) Write(entry LogEntry) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("step-%03d-%s.json", entry.StepIndex, entry.Role))
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode step log: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write step log %s: %w", path, err)
	}
	return path, nil
}

// LatestEntry returns the highest-numbered log entry, or ok=false when no
// logs exist.
func (s *LogStore) LatestEntry() (LogEntry, bool, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return LogEntry{}, false, nil
		}
		return LogEntry{}, false, fmt.Errorf("failed to read log directory %s: %w", s.dir, err)
	}

	latestStep := 0
	latestPath := ""
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		stepIndex, _, ok := parseLogFileName(name)
		if !ok {
			continue
		}
		if stepIndex > latestStep {
			latestStep = stepIndex
			latestPath = filepath.Join(s.dir, name)
		}
	}
	if latestPath == "" {
		return LogEntry{}, false, nil
	}

	data, err := os.ReadFile(latestPath)
	if err != nil {
		return LogEntry{}, false, fmt.Errorf("failed to read step log %s: %w", latestPath, err)
	}
	var logEntry LogEntry
	if err := json.Unmarshal(data, &logEntry); err != nil {
		return LogEntry{}, false, fmt.Errorf("failed to decode step log %s: %w", latestPath, err)
	}
	return logEntry, true, nil
}

func parseLogFileName(name string) (int, step.Role, bool) {
	if filepath.Ext(name) != ".json" {
		return 0, "", false
	}
	return parseStepArtifactName(name[:len(name)-len(".json")])
}
