package step

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tdxlabs/tdx/internal/vcs"
)

// Context is the immutable snapshot handed to an agent before each step.
// Last commit message and diff are empty strings (never absent) when the
// repository has no commits yet.
type Context struct {
	Role              Role
	StepIndex         int
	KataDescription   string
	LastCommitMessage string
	LastCommitDiff    string
	Files             []string
}

// Result is what the orchestrator derives from applying an agent's edit plan.
type Result struct {
	FilesChanged  []string
	CommitMessage string
	Notes         string
}

// RepoStater is the slice of the version-control contract the context
// builder depends on.
type RepoStater interface {
	State() (vcs.RepoState, error)
}

// ContextBuilder assembles Contexts from workspace metadata.
type ContextBuilder struct {
	root     string
	kataFile string
	repo     RepoStater

	// listFiles is swappable for tests; defaults to vcs.ListFiles.
	listFiles func(root string) ([]string, error)
}

// NewContextBuilder creates a builder rooted at root, reading the kata
// description from kataFile (relative to root).
func NewContextBuilder(root, kataFile string, repo RepoStater) *ContextBuilder {
	return &ContextBuilder{
		root:      root,
		kataFile:  kataFile,
		repo:      repo,
		listFiles: vcs.ListFiles,
	}
}

// Build assembles the context for the given role and step index.
//
// Failures here indicate environment misconfiguration (unreadable kata file,
// broken repository) and are propagated, never retried.
func (b *ContextBuilder) Build(role Role, stepIndex int) (*Context, error) {
	repoState, err := b.repo.State()
	if err != nil {
		return nil, fmt.Errorf("failed to read repository state: %w", err)
	}

	kataPath := filepath.Join(b.root, b.kataFile)
	kata, err := os.ReadFile(kataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read kata description %s: %w", kataPath, err)
	}

	files, err := b.listFiles(b.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace files: %w", err)
	}

	return &Context{
		Role:              role,
		StepIndex:         stepIndex,
		KataDescription:   string(kata),
		LastCommitMessage: repoState.LastCommitMessage,
		LastCommitDiff:    repoState.LastCommitDiff,
		Files:             files,
	}, nil
}
