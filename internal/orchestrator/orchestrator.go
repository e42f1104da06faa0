// Package orchestrator drives the red-green-refactor loop: one role per
// step, bounded retries, and exactly one commit per accepted step.
//
// The orchestrator is the single enforcement point for agent output. Agents
// return raw text; parsing, scope checking, filesystem application, and the
// verification gate all happen here, so no agent can bypass a rule by
// construction.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tdxlabs/tdx/internal/commit"
	"github.com/tdxlabs/tdx/internal/editplan"
	"github.com/tdxlabs/tdx/internal/runner"
	"github.com/tdxlabs/tdx/internal/scope"
	"github.com/tdxlabs/tdx/internal/state"
	"github.com/tdxlabs/tdx/internal/step"
	"github.com/tdxlabs/tdx/internal/vcs"
)

// Agent is the behavior required from every role implementation. Plan and
// Edit both return raw model text; Edit's response is expected to be an
// edit-plan JSON document but is validated by the orchestrator, not trusted.
type Agent interface {
	Role() step.Role
	Plan(ctx context.Context, sc *step.Context) (string, error)
	Edit(ctx context.Context, sc *step.Context) (string, error)
}

// Registry holds exactly one agent per role.
type Registry struct {
	agents map[step.Role]Agent
}

// NewRegistry builds a registry, failing if any of the three roles is
// missing or registered twice.
func NewRegistry(agents ...Agent) (*Registry, error) {
	byRole := make(map[step.Role]Agent, len(agents))
	for _, a := range agents {
		role := a.Role()
		if !role.Valid() {
			return nil, fmt.Errorf("agent declares unknown role %q", role)
		}
		if _, dup := byRole[role]; dup {
			return nil, fmt.Errorf("duplicate agent for role %s", role)
		}
		byRole[role] = a
	}
	for _, role := range []step.Role{step.RoleTester, step.RoleImplementor, step.RoleRefactorer} {
		if _, ok := byRole[role]; !ok {
			return nil, fmt.Errorf("no agent registered for role %s", role)
		}
	}
	return &Registry{agents: byRole}, nil
}

// Get returns the agent for a role. The registry is complete by
// construction, so a missing role is a programming error.
func (r *Registry) Get(role step.Role) Agent {
	return r.agents[role]
}

// StepError is the terminal failure of one step, carrying enough context to
// report where the loop stopped.
type StepError struct {
	Role      step.Role
	StepIndex int
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.StepIndex, e.Role, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Options configures an Orchestrator.
type Options struct {
	Root           string
	Agents         *Registry
	VCS            vcs.VersionControl
	Runner         runner.Runner
	Plans          *state.PlanStore
	Logs           *state.LogStore
	ContextBuilder *step.ContextBuilder
	CommitAuthor   vcs.Author

	// MaxAttemptsPerAgent bounds edit attempts for Implementor and
	// Refactorer. The Tester always gets exactly one attempt: a broken
	// test proposal must surface, not be papered over by retries.
	MaxAttemptsPerAgent int

	// LastRole and StartingStep come from plan-history detection; see
	// state.PlanStore.DetectProgress.
	LastRole     step.Role
	StartingStep int
	RunID        string
	Logger       *zap.Logger
}

// Orchestrator owns the role cycle and step counter for one workspace.
// A single instance must have exclusive use of its workspace; concurrent
// orchestrators against the same directory are unsupported.
type Orchestrator struct {
	root      string
	agents    *Registry
	vcs       vcs.VersionControl
	runner    runner.Runner
	plans     *state.PlanStore
	logs      *state.LogStore
	builder   *step.ContextBuilder
	author    vcs.Author
	attempts  int
	runID     string
	logger    *zap.Logger
	cycle     *step.RoleCycle
	stepIndex int
}

// New validates options and derives the starting role from repository
// history: an empty repository always starts with Tester.
func New(opts Options) (*Orchestrator, error) {
	if opts.Agents == nil {
		return nil, errors.New("agent registry is required")
	}
	if opts.VCS == nil {
		return nil, errors.New("version control backend is required")
	}
	if opts.Runner == nil {
		return nil, errors.New("verification runner is required")
	}
	if opts.Plans == nil || opts.Logs == nil {
		return nil, errors.New("plan and log stores are required")
	}
	if opts.ContextBuilder == nil {
		return nil, errors.New("context builder is required")
	}

	attempts := opts.MaxAttemptsPerAgent
	if attempts < 1 {
		attempts = 1
	}
	startingStep := opts.StartingStep
	if startingStep < 1 {
		startingStep = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	repoState, err := opts.VCS.State()
	if err != nil {
		return nil, fmt.Errorf("failed to read repository state: %w", err)
	}
	workspaceEmpty := repoState.HeadCommit == ""

	return &Orchestrator{
		root:      opts.Root,
		agents:    opts.Agents,
		vcs:       opts.VCS,
		runner:    opts.Runner,
		plans:     opts.Plans,
		logs:      opts.Logs,
		builder:   opts.ContextBuilder,
		author:    opts.CommitAuthor,
		attempts:  attempts,
		runID:     opts.RunID,
		logger:    logger,
		cycle:     step.CycleFromHistory(opts.LastRole, workspaceEmpty),
		stepIndex: startingStep,
	}, nil
}

// CurrentRole returns the role that will act on the next call to Next.
func (o *Orchestrator) CurrentRole() step.Role {
	return o.cycle.Current()
}

// StepIndex returns the 1-based index the next step will use.
func (o *Orchestrator) StepIndex() int {
	return o.stepIndex
}

// maxAttemptsFor returns the attempt ceiling for a role.
func (o *Orchestrator) maxAttemptsFor(role step.Role) int {
	if role == step.RoleTester {
		return 1
	}
	return o.attempts
}

// Next executes one full step for the current role: context, plan, bounded
// edit attempts, verification gate, commit, advance.
//
// A failed step leaves the plan file and any applied edits in place and
// produces no commit; the dirty worktree is the diagnostic signal.
func (o *Orchestrator) Next(ctx context.Context) error {
	role := o.cycle.Current()
	stepIndex := o.stepIndex
	o.logger.Info("starting step",
		zap.String("role", role.String()),
		zap.Int("step", stepIndex))

	sc, err := o.builder.Build(role, stepIndex)
	if err != nil {
		return &StepError{Role: role, StepIndex: stepIndex, Err: err}
	}

	agent := o.agents.Get(role)
	planText, err := agent.Plan(ctx, sc)
	if err != nil {
		return &StepError{Role: role, StepIndex: stepIndex, Err: fmt.Errorf("planning failed: %w", err)}
	}

	// The plan is recorded before any edit so a failed step still leaves
	// its strategy on disk.
	planPath, err := o.plans.Write(stepIndex, role, planText)
	if err != nil {
		return &StepError{Role: role, StepIndex: stepIndex, Err: err}
	}
	o.logger.Debug("plan persisted", zap.String("path", planPath))

	maxAttempts := o.maxAttemptsFor(role)
	var attemptErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := o.attemptEdit(ctx, agent, sc, planPath)
		if err == nil {
			return nil
		}
		var retryable *attemptError
		if !errors.As(err, &retryable) {
			// Environment failure: fatal regardless of budget.
			return &StepError{Role: role, StepIndex: stepIndex, Err: err}
		}
		attemptErr = retryable.err
		o.logger.Warn("attempt failed",
			zap.String("role", role.String()),
			zap.Int("step", stepIndex),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Error(retryable.err))
	}
	return &StepError{
		Role:      role,
		StepIndex: stepIndex,
		Err:       fmt.Errorf("all %d attempts exhausted: %w", maxAttempts, attemptErr),
	}
}

// attemptError marks a failure that consumes one attempt from the budget:
// edit-call failure, parse error, scope violation, or gate failure.
type attemptError struct {
	err error
}

func (e *attemptError) Error() string {
	return e.err.Error()
}

func (e *attemptError) Unwrap() error {
	return e.err
}

// attemptEdit runs one edit attempt end to end. A nil return means the
// step committed. Errors are either *attemptError (retryable) or
// environment failures (fatal).
func (o *Orchestrator) attemptEdit(ctx context.Context, agent Agent, sc *step.Context, planPath string) error {
	raw, err := agent.Edit(ctx, sc)
	if err != nil {
		return &attemptError{err: fmt.Errorf("edit call failed: %w", err)}
	}

	plan, err := editplan.Parse(raw)
	if err != nil {
		return &attemptError{err: err}
	}
	if err := scope.Check(sc.Role, plan); err != nil {
		return &attemptError{err: err}
	}

	changed, err := plan.Apply(o.root)
	if err != nil {
		return err
	}

	// All three commands run regardless of individual failures: their
	// outcomes are needed together for the commit message.
	outcomes, gateErr := o.runGate(ctx)
	if gateErr != nil {
		var cmdErr *runner.CommandError
		if errors.As(gateErr, &cmdErr) {
			return &attemptError{err: fmt.Errorf("verification gate failed: %w", gateErr)}
		}
		return gateErr
	}

	message := commit.Format(commit.Inputs{
		Role:            sc.Role,
		StepIndex:       sc.StepIndex,
		KataDescription: sc.KataDescription,
		CommitMessage:   plan.CommitMessage,
		Notes:           plan.Notes,
		FilesChanged:    changed,
		PlanPath:        planPath,
		Outcomes:        outcomes,
	})

	if err := o.vcs.StageAll(); err != nil {
		return err
	}
	commitID, err := o.vcs.Commit(message, o.author)
	if err != nil {
		return err
	}

	if _, err := o.logs.Write(state.LogEntry{
		StepIndex:     sc.StepIndex,
		Role:          sc.Role,
		RunID:         o.runID,
		PlanPath:      planPath,
		FilesChanged:  changed,
		CommitID:      commitID,
		CommitMessage: plan.CommitMessage,
		Notes:         plan.Notes,
		Runner: state.RunnerLog{
			Fmt:   outcomes.Fmt,
			Check: outcomes.Check,
			Test:  outcomes.Test,
		},
	}); err != nil {
		return err
	}

	o.logger.Info("step committed",
		zap.String("role", sc.Role.String()),
		zap.Int("step", sc.StepIndex),
		zap.String("commit", commitID),
		zap.Strings("files", changed))

	o.cycle.Advance()
	o.stepIndex++
	return nil
}

// runGate runs fmt, check, and test in order, capturing all three outcomes
// even when an earlier command fails. The returned error is the first
// failure in command order.
func (o *Orchestrator) runGate(ctx context.Context) (commit.OutcomeSummary, error) {
	var summary commit.OutcomeSummary
	var firstErr error

	record := func(outcome runner.Outcome, err error) runner.Outcome {
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return outcome
	}

	out, err := o.runner.Fmt(ctx)
	summary.Fmt = record(out, err)
	out, err = o.runner.Check(ctx)
	summary.Check = record(out, err)
	out, err = o.runner.Test(ctx)
	summary.Test = record(out, err)

	return summary, firstErr
}
