// Package runner executes the format/lint/test commands that gate every
// commit, plus the optional workspace bootstrap command.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Outcome captures one command execution for the verification section of
// the commit message.
type Outcome struct {
	Code   int    `json:"code"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// CommandError is returned when a verification command exits non-zero.
// The outcome is still fully populated so the failure can be reported.
type CommandError struct {
	Program string
	Outcome Outcome
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed with exit code %d: %s", e.Program, e.Outcome.Code, e.Outcome.Stderr)
}

// Runner is the verification-gate contract the orchestrator consumes.
type Runner interface {
	Fmt(ctx context.Context) (Outcome, error)
	Check(ctx context.Context) (Outcome, error)
	Test(ctx context.Context) (Outcome, error)
}

// Spec is a command as program plus arguments.
type Spec struct {
	Program string
	Args    []string
}

// SpecFromArgv builds a Spec from a configured argv list. An empty list is
// a configuration error.
func SpecFromArgv(argv []string) (Spec, error) {
	if len(argv) == 0 {
		return Spec{}, errors.New("command cannot be empty")
	}
	return Spec{Program: argv[0], Args: argv[1:]}, nil
}

// Commands holds the three gate commands.
type Commands struct {
	Fmt   Spec
	Check Spec
	Test  Spec
}

// CommandsFromArgv validates and assembles the three gate commands from
// raw config values.
func CommandsFromArgv(fmtArgv, checkArgv, testArgv []string) (Commands, error) {
	fmtSpec, err := SpecFromArgv(fmtArgv)
	if err != nil {
		return Commands{}, fmt.Errorf("invalid fmt command: %w", err)
	}
	checkSpec, err := SpecFromArgv(checkArgv)
	if err != nil {
		return Commands{}, fmt.Errorf("invalid check command: %w", err)
	}
	testSpec, err := SpecFromArgv(testArgv)
	if err != nil {
		return Commands{}, fmt.Errorf("invalid test command: %w", err)
	}
	return Commands{Fmt: fmtSpec, Check: checkSpec, Test: testSpec}, nil
}

// CommandRunner shells out to the configured commands with the workspace as
// working directory.
type CommandRunner struct {
	root     string
	commands Commands
}

// NewCommandRunner creates a runner rooted at the workspace directory.
func NewCommandRunner(root string, commands Commands) *CommandRunner {
	return &CommandRunner{root: root, commands: commands}
}

// Fmt runs the configured format command.
func (r *CommandRunner) Fmt(ctx context.Context) (Outcome, error) {
	return r.run(ctx, r.commands.Fmt)
}

// Check runs the configured lint/check command.
func (r *CommandRunner) Check(ctx context.Context) (Outcome, error) {
	return r.run(ctx, r.commands.Check)
}

// Test runs the configured test command.
func (r *CommandRunner) Test(ctx context.Context) (Outcome, error) {
	return r.run(ctx, r.commands.Test)
}

func (r *CommandRunner) run(ctx context.Context, spec Spec) (Outcome, error) {
	cmd := exec.CommandContext(ctx, spec.Program, spec.Args...)
	cmd.Dir = r.root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	outcome := Outcome{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return outcome, nil
	case errors.As(err, &exitErr):
		outcome.Code = exitErr.ExitCode()
		return outcome, &CommandError{Program: spec.Program, Outcome: outcome}
	default:
		return outcome, fmt.Errorf("failed to run %s: %w", spec.Program, err)
	}
}
