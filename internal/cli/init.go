package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tdxlabs/tdx/internal/config"
	"github.com/tdxlabs/tdx/internal/vcs"
)

const defaultKataContent = `# Kata Description

Write a clear description of the kata you want to practice here.
The autonomous loop will use this as context for generating tests and
implementations.

## Example

Implement a string calculator that:
- Takes a string of comma-separated numbers and returns their sum
- Returns 0 for an empty string
- Handles newlines between numbers
- Supports custom delimiters
`

const defaultConfigContent = `# tdx workspace configuration
workspace:
  kata_file: "kata.md"
  plan_dir: ".tdx/plan"
  log_dir: ".tdx/logs"
  max_steps: 10
  max_attempts_per_agent: 2
roles:
  tester:
    model: "gpt-4o-mini"
    temperature: 0.1
  implementor:
    model: "gpt-4o-mini"
    temperature: 0.2
  refactorer:
    model: "gpt-4o-mini"
    temperature: 0.15
llm:
  # Provider selection: openai or github_copilot (defaults to openai)
  provider: "openai"
  base_url: "https://api.openai.com/v1"
  api_key_env: "OPENAI_API_KEY"
  # Optional: API version (required for GitHub Copilot, defaults to 2023-12-01)
  # api_version: "2023-12-01"

# Example GitHub Copilot configuration (uncomment to use):
# llm:
#   provider: "github_copilot"
#   base_url: "https://api.githubcopilot.com/v1"
#   api_key_env: "GITHUB_COPILOT_TOKEN"
#   api_version: "2023-12-01"

ci:
  fmt: ["gofmt", "-l", "-w", "."]
  check: ["go", "vet", "./..."]
  test: ["go", "test", "./..."]
commit_author:
  name: "tdx"
  email: "tdx@example.com"
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a kata workspace",
	Long: `Scaffolds the workspace: a commented tdx.yaml, a default kata.md, the
plan and log directories, and a git repository with an initial commit when
the repository is fresh. Existing files are validated, never overwritten.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initializeWorkspace(cmd)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func initializeWorkspace(cmd *cobra.Command) error {
	cfgPath, err := absolutizePath(configPath)
	if err != nil {
		return err
	}
	root := filepath.Dir(cfgPath)

	repo, err := vcs.OpenOrInit(root)
	if err != nil {
		return err
	}
	if err := repo.EnsureInitialized(); err != nil {
		return err
	}
	repoState, err := repo.State()
	if err != nil {
		return err
	}
	freshRepo := repoState.HeadCommit == ""

	created := false
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := os.WriteFile(cfgPath, []byte(defaultConfigContent), 0o644); err != nil {
			return fmt.Errorf("failed to create config file %s: %w", cfgPath, err)
		}
		cmd.Printf("Created %s\n", configPath)
		created = true
	} else if err != nil {
		return fmt.Errorf("failed to inspect config file %s: %w", cfgPath, err)
	} else {
		cmd.Printf("Using existing %s\n", configPath)
	}

	// Load (and thereby validate) whichever config is now in place.
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	kataPath := filepath.Join(root, cfg.Workspace.KataFile)
	if _, err := os.Stat(kataPath); os.IsNotExist(err) {
		if err := os.WriteFile(kataPath, []byte(defaultKataContent), 0o644); err != nil {
			return fmt.Errorf("failed to create kata file %s: %w", kataPath, err)
		}
		cmd.Printf("Created %s\n", cfg.Workspace.KataFile)
		created = true
	} else if err != nil {
		return fmt.Errorf("failed to inspect kata file %s: %w", kataPath, err)
	} else {
		cmd.Printf("Using existing %s\n", cfg.Workspace.KataFile)
	}

	for _, dir := range []string{cfg.Workspace.PlanDir, cfg.Workspace.LogDir} {
		full := filepath.Join(root, dir)
		if _, err := os.Stat(full); os.IsNotExist(err) {
			if err := os.MkdirAll(full, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", full, err)
			}
			cmd.Printf("Created directory %s\n", dir)
			created = true
		}
	}

	if freshRepo && created {
		if err := repo.StageAll(); err != nil {
			return err
		}
		author := vcs.Author{Name: cfg.CommitAuthor.Name, Email: cfg.CommitAuthor.Email}
		if _, err := repo.Commit("chore: initialize tdx workspace", author); err != nil {
			return err
		}
		cmd.Println("Created initial commit")
	}

	return nil
}
