package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tdxlabs/tdx/internal/config"
	"github.com/tdxlabs/tdx/internal/state"
	"github.com/tdxlabs/tdx/internal/step"
	"github.com/tdxlabs/tdx/internal/vcs"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current automation status (role, step, last commit)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printStatus(cmd)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func printStatus(cmd *cobra.Command) error {
	cfgPath, err := absolutizePath(configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	root := filepath.Dir(cfgPath)

	repo, err := vcs.OpenOrInit(root)
	if err != nil {
		return err
	}
	repoState, err := repo.State()
	if err != nil {
		return err
	}

	logs := state.NewLogStore(filepath.Join(root, cfg.Workspace.LogDir))
	lastLog, hasLog, err := logs.LatestEntry()
	if err != nil {
		return err
	}

	nextRole := step.RoleTester
	nextStep := 1
	if hasLog {
		nextRole = lastLog.Role.Next()
		nextStep = lastLog.StepIndex + 1
	}

	cmd.Printf("Next role: %s (step %d of %d)\n", nextRole, nextStep, cfg.Workspace.MaxSteps)
	cmd.Printf("Workspace clean: %s\n", yesNo(repoState.IsClean))

	switch {
	case hasLog:
		cmd.Printf("Last commit: %s (%s)\n", lastLog.CommitMessage, lastLog.CommitID)
		cmd.Printf("Last step: %s #%d, plan %s\n", lastLog.Role, lastLog.StepIndex, lastLog.PlanPath)
		cmd.Printf("CI exit codes: fmt=%d, check=%d, test=%d\n",
			lastLog.Runner.Fmt.Code, lastLog.Runner.Check.Code, lastLog.Runner.Test.Code)
	case repoState.HeadCommit != "":
		cmd.Printf("Last commit: %s (%s)\n", firstLine(repoState.LastCommitMessage), repoState.HeadCommit)
		cmd.Println("No step logs found.")
	default:
		cmd.Println("Last commit: none")
		cmd.Println("No step logs found.")
	}
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
