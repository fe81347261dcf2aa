package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"glassbox/explainer/internal/explain"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Validate an explanation result file against the artifact schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := explain.ValidateFile(args[0]); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(),
			"%s is a valid explanation artifact\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
