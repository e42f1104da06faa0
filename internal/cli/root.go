// Package cli implements the tdx command surface: init, run, step, status,
// and doctor.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "tdx",
	Short: "Autonomous multi-agent red-green-refactor machine",
	Long: `tdx automates a strict red-green-refactor loop over a single workspace.
Three LLM-backed agents (Tester, Implementor, Refactorer) take turns, each
step gated by the configured format/lint/test commands, every accepted step
captured as one git commit.`,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("tdx version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "tdx.yaml", "path to the workspace configuration file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
