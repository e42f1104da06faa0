package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runStepCount int

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run N autonomous red-green-refactor steps",
	Long: `Executes up to N steps of the Tester -> Implementor -> Refactorer cycle,
resuming from the workspace's plan history. The number of steps actually
executed is clamped so the workspace never exceeds its configured
max_steps.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := runSteps(cmd.Context(), runStepCount, nil)
		if err != nil {
			return err
		}
		fmt.Printf("Executed %d of %d requested steps\n", summary.Executed, summary.Requested)
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&runStepCount, "steps", 1, "number of steps to execute")
	rootCmd.AddCommand(runCmd)
}
