package cli

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tdxlabs/tdx/internal/config"
	"github.com/tdxlabs/tdx/internal/vcs"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose environment issues (tooling, config, git state)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report := runDoctor(cmd)
		if len(report) > 0 {
			cmd.Println("Issues detected:")
			for _, issue := range report {
				cmd.Printf("- %s\n", issue)
			}
			return fmt.Errorf("%d doctor check(s) failed", len(report))
		}
		cmd.Println("All doctor checks passed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// runDoctor runs every check, printing a line per check, and returns the
// collected issues.
func runDoctor(cmd *cobra.Command) []string {
	var issues []string

	cfgPath, err := absolutizePath(configPath)
	if err != nil {
		return []string{err.Error()}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		cmd.Printf("Config valid: no\n")
		return []string{fmt.Sprintf("invalid configuration: %v", err)}
	}
	cmd.Printf("Config valid: yes\n")
	root := filepath.Dir(cfgPath)

	kataPath := filepath.Join(root, cfg.Workspace.KataFile)
	if _, err := os.Stat(kataPath); err != nil {
		cmd.Printf("Kata file present: no\n")
		issues = append(issues, fmt.Sprintf("kata file %s not found; run `tdx init`", cfg.Workspace.KataFile))
	} else {
		cmd.Printf("Kata file present: yes\n")
	}

	issues = append(issues, checkGit(cmd, root)...)
	issues = append(issues, checkCI(cmd, cfg)...)
	issues = append(issues, checkLLM(cmd, cfg)...)

	return issues
}

func checkGit(cmd *cobra.Command, root string) []string {
	if _, err := os.Stat(filepath.Join(root, ".git")); err != nil {
		cmd.Printf("Git repository: no\n")
		return []string{"git repository not initialized; run `tdx init` first"}
	}
	repo, err := vcs.OpenOrInit(root)
	if err != nil {
		cmd.Printf("Git repository: error\n")
		return []string{fmt.Sprintf("failed to open git repository: %v", err)}
	}
	repoState, err := repo.State()
	if err != nil {
		cmd.Printf("Git repository: error\n")
		return []string{fmt.Sprintf("failed to read git state: %v", err)}
	}
	cmd.Printf("Git repository: yes\n")
	cmd.Printf("Git clean: %s\n", yesNo(repoState.IsClean))
	if !repoState.IsClean {
		return []string{"workspace has uncommitted changes; stash or commit before running `tdx run`"}
	}
	return nil
}

func checkCI(cmd *cobra.Command, cfg *config.Config) []string {
	var missing []string
	for _, command := range [][]string{cfg.CI.Fmt, cfg.CI.Check, cfg.CI.Test} {
		if len(command) == 0 {
			continue
		}
		if _, err := exec.LookPath(command[0]); err != nil {
			missing = append(missing, command[0])
		}
	}
	if len(missing) > 0 {
		cmd.Printf("CI binaries available: no (missing: %s)\n", strings.Join(missing, ", "))
		return []string{fmt.Sprintf("missing CI binaries: %s", strings.Join(missing, ", "))}
	}
	cmd.Printf("CI binaries available: yes\n")
	return nil
}

func checkLLM(cmd *cobra.Command, cfg *config.Config) []string {
	var issues []string

	tokenLoaded := strings.TrimSpace(os.Getenv(cfg.LLM.APIKeyEnv)) != ""
	cmd.Printf("LLM token (%s) loaded: %s\n", cfg.LLM.APIKeyEnv, yesNo(tokenLoaded))
	if !tokenLoaded {
		issues = append(issues, fmt.Sprintf("environment variable %s is not set", cfg.LLM.APIKeyEnv))
	}

	reachable := isBaseURLReachable(cfg.LLM.BaseURL)
	cmd.Printf("LLM base URL (%s) reachable: %s\n", cfg.LLM.BaseURL, yesNo(reachable))
	if !reachable {
		issues = append(issues, fmt.Sprintf("cannot reach configured LLM base URL %s", cfg.LLM.BaseURL))
	}

	return issues
}

// isBaseURLReachable checks TCP connectivity to the endpoint host. A full
// HTTP round trip would need credentials; connectivity is enough to catch
// typos and offline environments.
func isBaseURLReachable(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	host := parsed.Hostname()
	if host == "" {
		return false
	}
	port := parsed.Port()
	if port == "" {
		if parsed.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), 2*time.Second)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
