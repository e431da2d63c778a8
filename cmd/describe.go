package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvscope/internal/analysis"
	"github.com/KaramelBytes/csvscope/internal/utils"
)

var (
	descOutputPath string
	descInfo       bool
)

var describeCmd = &cobra.Command{
	Use:   "describe <file|url>",
	Short: "Summarize a CSV dataset (schema, statistics, correlations)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		rep := analysis.Summarize(t)
		out := rep.Markdown()
		if descInfo {
			out = rep.Info()
		}
		if descOutputPath != "" {
			if err := utils.SafeWriteFile(descOutputPath, []byte(out)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", descOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "optional path to write the summary")
	describeCmd.Flags().BoolVar(&descInfo, "info", false, "print the column information block instead of the Markdown summary")
}
