package agent

import (
	"context"
	"strings"
	"sync"

	"github.com/tdxlabs/tdx/internal/llm"
	"github.com/tdxlabs/tdx/internal/step"
)

const implementorPlanPrompt = `You are the Implementor agent. Study the failing tests and outline the minimal code change needed to pass them.
Keep the plan focused on production code adjustments.`

const implementorEditPrompt = `You are applying the minimal code change required to make tests pass.
Only touch the files that are absolutely necessary, preferring small, surgical diffs.
Return a JSON edit plan according to the schema.`

// Implementor writes the minimal production change that turns the failing
// test green.
type Implementor struct {
	llm llm.Client

	mu       sync.Mutex
	lastPlan string
}

// NewImplementor creates an Implementor backed by the given model client.
func NewImplementor(client llm.Client) *Implementor {
	return &Implementor{llm: client}
}

// Role implements orchestrator.Agent.
func (i *Implementor) Role() step.Role {
	return step.RoleImplementor
}

// Plan asks the model for a change strategy and caches it for the edit
// phase.
func (i *Implementor) Plan(ctx context.Context, sc *step.Context) (string, error) {
	response, err := i.llm.Chat(ctx, string(step.RoleImplementor), planMessages(implementorPlanPrompt, sc))
	if err != nil {
		return "", err
	}
	trimmed := strings.TrimSpace(response)
	i.mu.Lock()
	i.lastPlan = trimmed
	i.mu.Unlock()
	return trimmed, nil
}

// Edit asks the model for the raw edit-plan document.
func (i *Implementor) Edit(ctx context.Context, sc *step.Context) (string, error) {
	i.mu.Lock()
	cached := i.lastPlan
	i.mu.Unlock()
	return i.llm.Chat(ctx, string(step.RoleImplementor), editMessages(implementorEditPrompt, sc, cached))
}
