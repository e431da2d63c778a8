package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvscope/internal/analysis"
)

var columnsCmd = &cobra.Command{
	Use:   "columns <file|url>",
	Short: "List numeric and categorical columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		cs := analysis.Classify(t)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "numeric (%d): %s\n", len(cs.Numeric), strings.Join(cs.Numeric, ", "))
		fmt.Fprintf(out, "categorical (%d): %s\n", len(cs.Categorical), strings.Join(cs.Categorical, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}
