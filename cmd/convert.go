// =============================================================================
// XmlCreator40 - Convert Command
// =============================================================================
//
// COMMAND USAGE:
//   xmlcreator40 convert -i datos.xlsx [-o output]
//
// Converts a single workbook. The output path is printed on success; on
// failure the error is printed and the exit status is non-zero.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Abyblackmouth/XmlCreator40/internal/converter"
	"github.com/Abyblackmouth/XmlCreator40/internal/validation"
)

var (
	convertInput       string
	convertOutputDir   string
	convertWarningsLog bool
)

// convertCmd represents the 'convert' command.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert one workbook into an XML report",
	Long: `Convert reads the encabezado, persona_moral and operaciones sheets of the
input workbook and writes informe1.0_{entity}_{month}.xml to the output
directory (default: paths.output_dir).

Validation findings never block the report; they are printed and, with
--warnings-log, written next to it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir := convertOutputDir
		if outputDir == "" {
			outputDir = appConfig.Paths.OutputDir
		}

		conv := converter.New(converter.WithLogger(appLogger))
		result := conv.Convert(convertInput, outputDir)
		if result.Error != nil {
			return result.Error
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, result.OutputFile)

		if len(result.Warnings) > 0 {
			fmt.Fprint(out, validation.FormatErrors(result.Warnings))
			if convertWarningsLog {
				path := warningsLogPath(result.OutputFile)
				if err := validation.WriteErrorLog(result.Warnings, path); err != nil {
					return err
				}
				fmt.Fprintf(out, "Warnings written to %s\n", path)
			}
		}
		return nil
	},
}

// warningsLogPath returns the findings log path for a report:
// "informe1.0_X_3.xml" -> "informe1.0_X_3_warnings.txt".
func warningsLogPath(reportPath string) string {
	return strings.TrimSuffix(reportPath, filepath.Ext(reportPath)) + "_warnings.txt"
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertInput, "input", "i", "", "Workbook to convert (required)")
	convertCmd.Flags().StringVarP(&convertOutputDir, "output", "o", "", "Output directory (default: paths.output_dir)")
	convertCmd.Flags().BoolVar(&convertWarningsLog, "warnings-log", false, "Write validation findings next to the report")
	_ = convertCmd.MarkFlagRequired("input")
}
