// Package editplan parses model output into a validated set of file edits
// and applies them to the workspace.
//
// This is the system's trust boundary: arbitrary model-generated paths pass
// through here before anything touches the filesystem, so every structural
// and path check happens in Parse, never in Apply.
package editplan

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Plan is the validated representation of an agent's proposed edits.
type Plan struct {
	CommitMessage string
	Notes         string
	Files         []FileEdit
}

// FileEdit is a single full-file write. Contents always replace the file
// wholesale; agents never send patches.
type FileEdit struct {
	Path     string
	Contents string
}

// Validation failures, each distinguishable by errors.Is / errors.As.
var (
	ErrMissingCommitMessage = errors.New("edit plan: commit_message is required")
	ErrEmptyFiles           = errors.New("edit plan: must include at least one file")
)

// InvalidPathError reports a path that is empty, absolute, or escapes the
// workspace root.
type InvalidPathError struct {
	Path string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("edit plan: invalid file path %q", e.Path)
}

// DuplicatePathError reports a path that appears more than once in a plan.
type DuplicatePathError struct {
	Path string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("edit plan: duplicate entry for path %q", e.Path)
}

// rawPlan mirrors the JSON document agents are instructed to return.
type rawPlan struct {
	CommitMessage string        `json:"commit_message"`
	Notes         string        `json:"notes"`
	Files         []rawFileEdit `json:"files"`
}

type rawFileEdit struct {
	Path     string `json:"path"`
	Contents string `json:"contents"`
}

// Parse validates raw model output into a Plan.
//
// A surrounding markdown code fence is stripped before decoding; the fence
// markers and any language tag are discarded. The decoded document must
// carry a non-blank commit message, a non-empty file list, and only safe
// workspace-relative paths with no duplicates.
func Parse(raw string) (*Plan, error) {
	body := stripFence(raw)

	var doc rawPlan
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("edit plan: invalid JSON: %w", err)
	}

	message := strings.TrimSpace(doc.CommitMessage)
	if message == "" {
		return nil, ErrMissingCommitMessage
	}
	if len(doc.Files) == 0 {
		return nil, ErrEmptyFiles
	}

	seen := make(map[string]struct{}, len(doc.Files))
	files := make([]FileEdit, 0, len(doc.Files))
	for _, f := range doc.Files {
		normalized, err := normalizePath(f.Path)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[normalized]; dup {
			return nil, &DuplicatePathError{Path: normalized}
		}
		seen[normalized] = struct{}{}
		files = append(files, FileEdit{Path: normalized, Contents: f.Contents})
	}

	return &Plan{
		CommitMessage: message,
		Notes:         strings.TrimSpace(doc.Notes),
		Files:         files,
	}, nil
}

// Apply writes every edit under root in declared order, creating parent
// directories as needed, and returns the written paths in the same order.
//
// No rollback happens on failure: the orchestrator only commits after the
// verification gate passes, so a partial apply just fails the attempt.
func (p *Plan) Apply(root string) ([]string, error) {
	changed := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		target := filepath.Join(root, filepath.FromSlash(f.Path))
		if dir := filepath.Dir(target); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create directory for %s: %w", f.Path, err)
			}
		}
		if err := os.WriteFile(target, []byte(f.Contents), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
		changed = append(changed, f.Path)
	}
	return changed, nil
}

// stripFence removes a leading/trailing markdown code fence, if present.
// Models frequently wrap the JSON document in ```json ... ``` despite being
// told not to.
func stripFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	lines = lines[1:]
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// normalizePath converts backslashes, then rejects empty, absolute, and
// parent-traversing paths.
func normalizePath(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", &InvalidPathError{Path: input}
	}
	normalized := strings.ReplaceAll(trimmed, `\`, "/")
	if path.IsAbs(normalized) || filepath.IsAbs(normalized) {
		return "", &InvalidPathError{Path: normalized}
	}
	// Windows drive-letter paths survive the checks above.
	if len(normalized) >= 2 && normalized[1] == ':' {
		return "", &InvalidPathError{Path: normalized}
	}
	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return "", &InvalidPathError{Path: normalized}
		}
	}
	return normalized, nil
}
