// Package agent implements the three LLM-backed roles of the
// red-green-refactor cycle: Tester, Implementor, Refactorer.
//
// Agents only produce text. Planning returns free-form strategy text; the
// edit phase returns a raw JSON edit-plan document. Parsing, scope
// enforcement, and filesystem writes all happen in the orchestrator, which
// is the single gate every proposed change passes through.
package agent

import (
	"fmt"
	"strings"

	"github.com/tdxlabs/tdx/internal/llm"
	"github.com/tdxlabs/tdx/internal/step"
)

// EditPlanInstructions is the response-schema hint shared by every agent's
// edit prompt.
const EditPlanInstructions = `Return **only** JSON matching this schema:
{
  "commit_message": "conventional commit summary",
  "notes": "bullet list or paragraph summarizing edits",
  "files": [
    { "path": "relative/path.go", "contents": "entire file contents" }
  ]
}
Do not include prose outside of the JSON object.`

// Payload truncation limits. Context snapshots can be arbitrarily large;
// prompts must not be.
const (
	kataLimit    = 1200
	messageLimit = 600
	diffLimit    = 1200
	maxListed    = 30
)

// planMessages builds the chat exchange for the planning phase.
func planMessages(systemPrompt string, ctx *step.Context) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: formatContextPayload("Outline your next test strategy.", ctx)},
	}
}

// editMessages builds the chat exchange for the edit phase, replaying the
// cached plan when one exists.
func editMessages(systemPrompt string, ctx *step.Context, cachedPlan string) []llm.Message {
	var instructions strings.Builder
	if cachedPlan != "" {
		fmt.Fprintf(&instructions, "Previously proposed plan:\n%s\n\n", cachedPlan)
	}
	instructions.WriteString(EditPlanInstructions)
	instructions.WriteString("\n\nApply edits now using the repository context below.")

	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: formatContextPayload(instructions.String(), ctx)},
	}
}

// formatContextPayload renders the step context into the user message body.
// Empty sections are omitted entirely.
func formatContextPayload(instruction string, ctx *step.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Instruction:\n%s\n\n", instruction)
	fmt.Fprintf(&b, "Role: %s\n", ctx.Role)
	fmt.Fprintf(&b, "Step: %d\n", ctx.StepIndex)
	fmt.Fprintf(&b, "Kata description:\n%s\n\n", truncate(ctx.KataDescription, kataLimit))
	if strings.TrimSpace(ctx.LastCommitMessage) != "" {
		fmt.Fprintf(&b, "Last commit message:\n%s\n\n", truncate(ctx.LastCommitMessage, messageLimit))
	}
	if strings.TrimSpace(ctx.LastCommitDiff) != "" {
		fmt.Fprintf(&b, "Last diff snippet:\n%s\n\n", truncate(ctx.LastCommitDiff, diffLimit))
	}
	if len(ctx.Files) > 0 {
		listed := ctx.Files
		if len(listed) > maxListed {
			listed = listed[:maxListed]
		}
		fmt.Fprintf(&b, "Tracked files (first %d):\n", maxListed)
		for _, path := range listed {
			fmt.Fprintf(&b, "- %s\n", path)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(input string, limit int) string {
	if len(input) <= limit {
		return input
	}
	return input[:limit] + "…"
}
