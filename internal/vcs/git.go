// Package vcs wraps the git operations the orchestrator depends on:
// opening or initializing a repository, summarizing its state, staging,
// and committing. It uses go-git, so no git binary is required.
package vcs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// RepoState is a high-level summary of the repository.
// HeadCommit, LastCommitMessage, and LastCommitDiff are empty strings when
// the repository has no commits yet.
type RepoState struct {
	HeadCommit        string
	LastCommitMessage string
	LastCommitDiff    string
	IsClean           bool
}

// Author is the commit signature used for every automated commit.
type Author struct {
	Name  string
	Email string
}

// VersionControl is the contract the orchestrator consumes.
type VersionControl interface {
	EnsureInitialized() error
	State() (RepoState, error)
	StageAll() error
	Commit(message string, author Author) (string, error)
}

// Git implements VersionControl on top of go-git.
type Git struct {
	repo *git.Repository
}

// OpenOrInit opens the repository at root, initializing a fresh one if none
// exists.
func OpenOrInit(root string) (*Git, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		if !errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("failed to open git repository at %s: %w", root, err)
		}
		repo, err = git.PlainInit(root, false)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize git repository at %s: %w", root, err)
		}
	}
	return &Git{repo: repo}, nil
}

// EnsureInitialized verifies the repository has a usable worktree.
func (g *Git) EnsureInitialized() error {
	if _, err := g.repo.Worktree(); err != nil {
		return fmt.Errorf("repository has no worktree: %w", err)
	}
	return nil
}

// State summarizes the current repository: head commit id, last commit
// message and patch, and whether the worktree is clean.
func (g *Git) State() (RepoState, error) {
	wt, err := g.repo.Worktree()
	if err != nil {
		return RepoState{}, fmt.Errorf("failed to open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return RepoState{}, fmt.Errorf("failed to read worktree status: %w", err)
	}

	state := RepoState{IsClean: status.IsClean()}

	head, err := g.repo.Head()
	if err != nil {
		// Unborn HEAD: no commits yet.
		return state, nil
	}
	commit, err := g.repo.CommitObject(head.Hash())
	if err != nil {
		return RepoState{}, fmt.Errorf("failed to resolve head commit: %w", err)
	}

	diff, err := commitPatch(commit)
	if err != nil {
		return RepoState{}, err
	}

	state.HeadCommit = head.Hash().String()
	state.LastCommitMessage = strings.TrimSpace(commit.Message)
	state.LastCommitDiff = diff
	return state, nil
}

// commitPatch renders the patch between a commit and its first parent.
// The initial commit is diffed against the empty tree.
func commitPatch(commit *object.Commit) (string, error) {
	tree, err := commit.Tree()
	if err != nil {
		return "", fmt.Errorf("failed to read commit tree: %w", err)
	}

	var parentTree *object.Tree
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return "", fmt.Errorf("failed to resolve parent commit: %w", err)
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return "", fmt.Errorf("failed to read parent tree: %w", err)
		}
	}

	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return "", fmt.Errorf("failed to diff commit trees: %w", err)
	}
	patch, err := changes.Patch()
	if err != nil {
		return "", fmt.Errorf("failed to render patch: %w", err)
	}
	return patch.String(), nil
}

// StageAll stages every change in the worktree, including untracked files
// and deletions.
func (g *Git) StageAll() error {
	wt, err := g.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// Commit records the staged changes and returns the new commit id.
func (g *Git) Commit(message string, author Author) (string, error) {
	wt, err := g.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree: %w", err)
	}
	sig := &object.Signature{
		Name:  author.Name,
		Email: author.Email,
		When:  time.Now(),
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author:    sig,
		Committer: sig,
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return hash.String(), nil
}
