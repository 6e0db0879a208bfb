package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Abyblackmouth/XmlCreator40/internal/report"
	"github.com/Abyblackmouth/XmlCreator40/pkg/utils"
)

// inspectCmd prints the summary of a generated report, or of a batch
// summary written by process.
var inspectCmd = &cobra.Command{
	Use:   "inspect <report.xml | processing_summary.csv>",
	Short: "Summarize a generated XML report or batch summary",
	Long: `Inspect reads back a report written by convert or process and prints its
month, entity, operation counts and total amount.

Given a processing_summary_*.csv file, it lists the outcome of every workbook
in that batch.`,
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: skipConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.EqualFold(filepath.Ext(args[0]), ".csv") {
			return printBatchSummary(cmd.OutOrStdout(), args[0])
		}

		summary, err := report.Inspect(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), summary.String())
		return nil
	},
}

func printBatchSummary(out io.Writer, path string) error {
	entries, err := utils.ReadSummary(path)
	if err != nil {
		return err
	}

	failed, operations := 0, 0
	for _, e := range entries {
		if e.Status == utils.StatusSuccess {
			reportLine(out, "✓", e.InputFile, e.OutputFile)
			operations += e.Operations
			continue
		}
		failed++
		reportLine(out, "✗", e.InputFile, e.ErrorKind+": "+e.ErrorMessage)
	}

	fmt.Fprintf(out, "Total files:     %d\n", len(entries))
	fmt.Fprintf(out, "Successful:      %d\n", len(entries)-failed)
	fmt.Fprintf(out, "Errors:          %d\n", failed)
	fmt.Fprintf(out, "Operations:      %d\n", operations)
	return nil
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
