package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tdxlabs/tdx/internal/agent"
	"github.com/tdxlabs/tdx/internal/config"
	"github.com/tdxlabs/tdx/internal/llm"
	"github.com/tdxlabs/tdx/internal/logging"
	"github.com/tdxlabs/tdx/internal/orchestrator"
	"github.com/tdxlabs/tdx/internal/runner"
	"github.com/tdxlabs/tdx/internal/scope"
	"github.com/tdxlabs/tdx/internal/state"
	"github.com/tdxlabs/tdx/internal/step"
	"github.com/tdxlabs/tdx/internal/vcs"
)

// bootstrapStateFile records the last bootstrap outcome for doctor.
const bootstrapStateFile = ".tdx/bootstrap-state.json"

// runSummary reports how many steps a run invocation actually executed.
type runSummary struct {
	Requested int
	Executed  int
}

// runSteps executes up to requested steps against the workspace described
// by the global --config flag. A nil client builds the configured provider;
// tests inject a scripted one.
func runSteps(ctx context.Context, requested int, client llm.Client) (runSummary, error) {
	if requested < 1 {
		return runSummary{}, errors.New("requested steps must be at least 1")
	}

	cfgPath, err := absolutizePath(configPath)
	if err != nil {
		return runSummary{}, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return runSummary{}, err
	}
	root := filepath.Dir(cfgPath)

	logger, err := logging.Setup(verbose)
	if err != nil {
		return runSummary{}, err
	}
	defer func() { _ = logger.Sync() }()

	repo, err := vcs.OpenOrInit(root)
	if err != nil {
		return runSummary{}, err
	}
	if err := repo.EnsureInitialized(); err != nil {
		return runSummary{}, err
	}

	for _, dir := range []string{cfg.Workspace.PlanDir, cfg.Workspace.LogDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return runSummary{}, fmt.Errorf("failed to create workspace directory %s: %w", dir, err)
		}
	}

	commands, err := runner.CommandsFromArgv(cfg.CI.Fmt, cfg.CI.Check, cfg.CI.Test)
	if err != nil {
		return runSummary{}, err
	}
	gate := runner.NewCommandRunner(root, commands)

	plans := state.NewPlanStore(filepath.Join(root, cfg.Workspace.PlanDir))
	logs := state.NewLogStore(filepath.Join(root, cfg.Workspace.LogDir))

	progress, err := plans.DetectProgress()
	if err != nil {
		return runSummary{}, err
	}
	completed := progress.NextStep - 1
	remaining := cfg.Workspace.MaxSteps - completed
	if remaining <= 0 {
		return runSummary{}, fmt.Errorf("workspace already reached configured max_steps (%d)", cfg.Workspace.MaxSteps)
	}
	toRun := requested
	if toRun > remaining {
		toRun = remaining
	}

	if cfg.Bootstrap != nil {
		if err := runBootstrap(ctx, root, cfg.Bootstrap, logger); err != nil {
			return runSummary{}, err
		}
	}

	// On a fresh workspace with pre-existing tests, the suite must pass
	// before any autonomous step runs.
	if progress.NextStep == 1 {
		hasTests, err := hasExistingTests(root)
		if err != nil {
			return runSummary{}, err
		}
		if hasTests {
			logger.Info("existing tests detected, running baseline check")
			if _, err := gate.Test(ctx); err != nil {
				var cmdErr *runner.CommandError
				if errors.As(err, &cmdErr) {
					return runSummary{}, fmt.Errorf(
						"baseline test check failed (exit %d); existing tests must pass before autonomous steps can run:\n%s\n%s",
						cmdErr.Outcome.Code, cmdErr.Outcome.Stdout, cmdErr.Outcome.Stderr)
				}
				return runSummary{}, fmt.Errorf("failed to run baseline test command: %w", err)
			}
			logger.Info("baseline tests pass")
		}
	}

	if client == nil {
		client, err = llm.New(cfg.LLM.Provider, cfg.LLMSettings(), cfg.LLM.EffectiveAPIVersion())
		if err != nil {
			return runSummary{}, fmt.Errorf("failed to initialize llm client: %w", err)
		}
	}

	registry, err := orchestrator.NewRegistry(
		agent.NewTester(client),
		agent.NewImplementor(client),
		agent.NewRefactorer(client),
	)
	if err != nil {
		return runSummary{}, err
	}

	orch, err := orchestrator.New(orchestrator.Options{
		Root:                root,
		Agents:              registry,
		VCS:                 repo,
		Runner:              gate,
		Plans:               plans,
		Logs:                logs,
		ContextBuilder:      step.NewContextBuilder(root, cfg.Workspace.KataFile, repo),
		CommitAuthor:        vcs.Author{Name: cfg.CommitAuthor.Name, Email: cfg.CommitAuthor.Email},
		MaxAttemptsPerAgent: cfg.Workspace.MaxAttemptsPerAgent,
		LastRole:            progress.LastRole,
		StartingStep:        progress.NextStep,
		RunID:               uuid.NewString(),
		Logger:              logger,
	})
	if err != nil {
		return runSummary{}, err
	}

	for i := 0; i < toRun; i++ {
		role := orch.CurrentRole()
		if err := orch.Next(ctx); err != nil {
			return runSummary{Requested: requested, Executed: i},
				fmt.Errorf("failed to execute %s step: %w", role, err)
		}
	}

	return runSummary{Requested: requested, Executed: toRun}, nil
}

// runBootstrap runs the provisioning command and records its outcome for
// doctor. A present skip marker short-circuits without error.
func runBootstrap(ctx context.Context, root string, cfg *config.BootstrapConfig, logger *zap.Logger) error {
	bootstrap := runner.NewBootstrap(root, runner.BootstrapSpec{
		Command:   cfg.Command,
		SkipFiles: cfg.SkipFiles,
	})
	result, err := bootstrap.Run(ctx, false)
	if result.Skipped {
		logger.Info("bootstrap skipped", zap.String("reason", result.SkipReason))
	}
	if writeErr := writeBootstrapState(root, result); writeErr != nil {
		logger.Warn("failed to record bootstrap state", zap.Error(writeErr))
	}
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}
	return nil
}

func writeBootstrapState(root string, result runner.BootstrapResult) error {
	path := filepath.Join(root, filepath.FromSlash(bootstrapStateFile))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// hasExistingTests reports whether the workspace already contains test
// files, using the same classifier the scope policy applies to edit plans.
func hasExistingTests(root string) (bool, error) {
	files, err := vcs.ListFiles(root)
	if err != nil {
		return false, err
	}
	for _, f := range files {
		if scope.IsTestPath(f) {
			return true, nil
		}
	}
	return false, nil
}

func absolutizePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to determine current directory: %w", err)
	}
	return filepath.Join(cwd, path), nil
}
