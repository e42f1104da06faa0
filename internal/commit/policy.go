// Package commit formats the structured, audit-trail commit message
// recorded for every accepted step.
//
// Every commit message has five sections in fixed order: the agent summary
// (plus optional body), Context, Rationale, Diff summary, and Verification.
// The section headers are a contract: workspace history stays parsable by
// header.
package commit

import (
	"fmt"
	"strings"

	"github.com/tdxlabs/tdx/internal/runner"
	"github.com/tdxlabs/tdx/internal/step"
)

// stdoutPreviewLimit bounds the captured stdout shown per verification
// command, collapsed to a single line.
const stdoutPreviewLimit = 200

// OutcomeSummary carries the three verification results into the
// Verification section.
type OutcomeSummary struct {
	Fmt   runner.Outcome
	Check runner.Outcome
	Test  runner.Outcome
}

// Inputs is everything Format needs. It exists only for the duration of
// one call.
type Inputs struct {
	Role            step.Role
	StepIndex       int
	KataDescription string
	CommitMessage   string
	Notes           string
	FilesChanged    []string
	PlanPath        string
	Outcomes        OutcomeSummary
}

// Format assembles the commit message. Pure string work: no I/O, fully
// deterministic for a given set of inputs.
func Format(in Inputs) string {
	summary, body := splitMessage(in.CommitMessage)
	goal := extractGoal(in.KataDescription)

	var b strings.Builder
	b.WriteString(summary)
	if body != "" {
		b.WriteString("\n")
		b.WriteString(body)
	}

	fmt.Fprintf(&b, "\n\nContext:\n- Role: %s\n- Step: %d\n- Kata goal: %s\n- Plan: %s\n",
		in.Role, in.StepIndex, goal, in.PlanPath)

	b.WriteString("\nRationale:\n")
	b.WriteString(formatNotes(in.Notes))

	b.WriteString("\nDiff summary:\n")
	b.WriteString(formatFiles(in.FilesChanged))

	b.WriteString("\nVerification:\n")
	b.WriteString(formatVerification(in.Outcomes))

	return b.String()
}

// splitMessage separates the agent message into a one-line summary and an
// optional body.
func splitMessage(message string) (summary, body string) {
	lines := strings.Split(message, "\n")
	summary = strings.TrimSpace(lines[0])
	if summary == "" {
		summary = "chore: update"
	}
	if len(lines) > 1 {
		rest := strings.Join(lines[1:], "\n")
		body = strings.TrimSpace(rest)
	}
	return summary, body
}

// extractGoal returns the first non-blank line of the kata description.
func extractGoal(description string) string {
	for _, line := range strings.Split(description, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return "See kata description for details"
}

func formatNotes(notes string) string {
	if strings.TrimSpace(notes) == "" {
		return "- Agent did not provide additional notes.\n"
	}
	var b strings.Builder
	for _, line := range strings.Split(notes, "\n") {
		fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(line))
	}
	return b.String()
}

func formatFiles(files []string) string {
	if len(files) == 0 {
		return "- No files reported\n"
	}
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	return b.String()
}

func formatVerification(outcomes OutcomeSummary) string {
	var b strings.Builder
	for _, entry := range []struct {
		label   string
		outcome runner.Outcome
	}{
		{"fmt", outcomes.Fmt},
		{"check", outcomes.Check},
		{"test", outcomes.Test},
	} {
		fmt.Fprintf(&b, "- %s: exit %d", entry.label, entry.outcome.Code)
		if preview := previewStdout(entry.outcome.Stdout); preview != "" {
			fmt.Fprintf(&b, " (%s)", preview)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// previewStdout collapses captured stdout to a single truncated line.
func previewStdout(stdout string) string {
	collapsed := strings.Join(strings.Fields(stdout), " ")
	if collapsed == "" {
		return ""
	}
	if len(collapsed) > stdoutPreviewLimit {
		collapsed = collapsed[:stdoutPreviewLimit] + "…"
	}
	return collapsed
}
