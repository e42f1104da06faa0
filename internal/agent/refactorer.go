package agent

import (
	"context"
	"strings"
	"sync"

	"github.com/tdxlabs/tdx/internal/llm"
	"github.com/tdxlabs/tdx/internal/step"
)

const refactorerPlanPrompt = `You are the Refactorer agent. Identify safe improvements that keep behavior and tests unchanged.
Focus on cleanup, deduplication, and clarity improvements after the green step.`

const refactorerEditPrompt = `Apply refactorings that do not modify any tests or change observable behavior.
Only touch production code files and keep the edit set small.
Return the JSON edit plan per schema.`

// Refactorer cleans up production code while the suite is green. It never
// touches tests.
type Refactorer struct {
	llm llm.Client

	mu       sync.Mutex
	lastPlan string
}

// NewRefactorer creates a Refactorer backed by the given model client.
func NewRefactorer(client llm.Client) *Refactorer {
	return &Refactorer{llm: client}
}

// Role implements orchestrator.Agent.
func (r *Refactorer) Role() step.Role {
	return step.RoleRefactorer
}

// Plan asks the model for a refactoring strategy and caches it for the edit
// phase.
func (r *Refactorer) Plan(ctx context.Context, sc *step.Context) (string, error) {
	response, err := r.llm.Chat(ctx, string(step.RoleRefactorer), planMessages(refactorerPlanPrompt, sc))
	if err != nil {
		return "", err
	}
	trimmed := strings.TrimSpace(response)
	r.mu.Lock()
	r.lastPlan = trimmed
	r.mu.Unlock()
	return trimmed, nil
}

// Edit asks the model for the raw edit-plan document.
func (r *Refactorer) Edit(ctx context.Context, sc *step.Context) (string, error) {
	r.mu.Lock()
	cached := r.lastPlan
	r.mu.Unlock()
	return r.llm.Chat(ctx, string(step.RoleRefactorer), editMessages(refactorerEditPrompt, sc, cached))
}
