package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"glassbox/explainer/internal/glue"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List the supported GLUE tasks",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		cyan := color.New(color.FgCyan)
		cyan.Fprintf(out, "%-10s %-8s %-6s %s\n", "TASK", "LABELS", "PAIR", "DEV FILE")
		for _, name := range glue.Names() {
			task, _ := glue.Lookup(name)
			kind := fmt.Sprintf("%d", task.NumLabels)
			if task.Regression {
				kind = "score"
			}
			pair := "no"
			if task.IsPair() {
				pair = "yes"
			}
			fmt.Fprintf(out, "%-10s %-8s %-6s %s\n", task.Name, kind, pair, task.DevFile)
		}
	},
}

func init() {
	rootCmd.AddCommand(tasksCmd)
}
