package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Abyblackmouth/XmlCreator40/internal/xlsxparser"
)

var templateOutput string

// templateCmd writes the blank submission workbook.
var templateCmd = &cobra.Command{
	Use:               "template",
	Short:             "Write a blank submission workbook",
	Args:              cobra.NoArgs,
	PersistentPreRunE: skipConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := xlsxparser.SaveTemplate(templateOutput); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", templateOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)

	templateCmd.Flags().StringVarP(&templateOutput, "output", "o", xlsxparser.TemplateFileName, "Path of the workbook to write")
}
