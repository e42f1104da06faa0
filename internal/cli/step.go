package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Execute a single step with the current role",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := runSteps(cmd.Context(), 1, nil)
		if err != nil {
			return err
		}
		fmt.Printf("Executed %d step\n", summary.Executed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stepCmd)
}
