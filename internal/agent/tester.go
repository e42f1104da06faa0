package agent

import (
	"context"
	"strings"
	"sync"

	"github.com/tdxlabs/tdx/internal/llm"
	"github.com/tdxlabs/tdx/internal/step"
)

const testerPlanPrompt = `You are the Tester agent in a strict red-green-refactor loop.
Focus on identifying the next failing test that reveals missing behavior.
Respond with a concise plan (bullets encouraged) describing what test you will add and why.
Do not describe implementation changes.`

const testerEditPrompt = `You are the Tester agent applying changes.
Only modify test files. Do not change production code.
Return a JSON edit plan that adds or updates tests according to the schema.
Ensure the resulting test fails for the current implementation.`

// Tester writes the next failing test. It is the only role that never gets
// a retry: a broken test proposal fails the step immediately.
type Tester struct {
	llm llm.Client

	mu       sync.Mutex
	lastPlan string
}

// NewTester creates a Tester backed by the given model client.
func NewTester(client llm.Client) *Tester {
	return &Tester{llm: client}
}

// Role implements orchestrator.Agent.
func (t *Tester) Role() step.Role {
	return step.RoleTester
}

// Plan asks the model for a test strategy and caches it for the edit phase.
func (t *Tester) Plan(ctx context.Context, sc *step.Context) (string, error) {
	response, err := t.llm.Chat(ctx, string(step.RoleTester), planMessages(testerPlanPrompt, sc))
	if err != nil {
		return "", err
	}
	trimmed := strings.TrimSpace(response)
	t.mu.Lock()
	t.lastPlan = trimmed
	t.mu.Unlock()
	return trimmed, nil
}

// Edit asks the model for the raw edit-plan document.
func (t *Tester) Edit(ctx context.Context, sc *step.Context) (string, error) {
	t.mu.Lock()
	cached := t.lastPlan
	t.mu.Unlock()
	return t.llm.Chat(ctx, string(step.RoleTester), editMessages(testerEditPrompt, sc, cached))
}
