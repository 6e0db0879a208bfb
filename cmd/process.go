// =============================================================================
// XmlCreator40 - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts every workbook in
// the input directory.
//
// COMMAND USAGE:
//   xmlcreator40 process [flags]
//
// FLAGS:
//   --input-dir   : Directory scanned for .xlsx files (default: paths.input_dir)
//   --output-dir  : Directory receiving the reports (default: paths.output_dir)
//   --dry-run     : List the files that would be converted and stop
//
// PROCESSING PIPELINE:
//   1. Discover workbooks in the input directory
//   2. Convert them concurrently (at most batch.max_concurrency at a time)
//   3. Archive converted inputs (batch.archive_inputs)
//   4. Write validation findings next to each report
//   5. Write the CSV summary (batch.write_summary)
//
// A failed file never stops the others. The command exits non-zero when at
// least one file failed.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Abyblackmouth/XmlCreator40/internal/config"
	"github.com/Abyblackmouth/XmlCreator40/internal/converter"
	"github.com/Abyblackmouth/XmlCreator40/internal/logging"
	"github.com/Abyblackmouth/XmlCreator40/internal/validation"
	"github.com/Abyblackmouth/XmlCreator40/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	processInputDir  string
	processOutputDir string
	dryRun           bool
)

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert every workbook in the input directory",
	Long: `The process command scans the input directory for .xlsx workbooks and
converts each of them into an XML report.

Files are converted concurrently. Each file is processed independently, and
errors in one file do not affect the others.

On success:
  - The report is placed in the output directory
  - The workbook is moved to the archive directory (batch.archive_inputs)

On error:
  - The workbook remains in the input directory
  - The error is listed in the summary`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd, appConfig, appLogger)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&processInputDir, "input-dir", "", "Directory scanned for workbooks (default: paths.input_dir)")
	processCmd.Flags().StringVar(&processOutputDir, "output-dir", "", "Directory receiving the reports (default: paths.output_dir)")
	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the workbooks that would be converted without converting them")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(cmd *cobra.Command, cfg *config.Config, logger logging.Logger) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	inputDir := firstNonEmpty(processInputDir, cfg.Paths.InputDir)
	outputDir := firstNonEmpty(processOutputDir, cfg.Paths.OutputDir)

	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	fm := utils.NewFileManager(inputDir, outputDir, "", cfg.Paths.ArchiveDir)
	fm.ArchiveOnSuccess = cfg.Batch.ArchiveInputs
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	inputFiles, err := fm.DiscoverInputFiles("")
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}

	if len(inputFiles) == 0 {
		fmt.Fprintln(out, "No workbooks found in the input directory.")
		return nil
	}

	fmt.Fprintf(out, "Found %d file(s) to process\n", len(inputFiles))
	if dryRun {
		for _, f := range inputFiles {
			fmt.Fprintf(out, "  %s\n", filepath.Base(f))
		}
		return nil
	}

	// =========================================================================
	// STEP 2: PROCESS FILES CONCURRENTLY
	// =========================================================================
	// Each goroutine writes only its own slot, so results keep the discovery
	// order. A cancelled context skips the files not yet started.

	conv := converter.New(converter.WithLogger(logger))
	results := make([]converter.Result, len(inputFiles))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.Batch.MaxConcurrency)

	for i, file := range inputFiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = conv.Convert(file, outputDir)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("processing interrupted: %w", err)
	}

	// =========================================================================
	// STEP 3: ARCHIVE, LOG FINDINGS, COLLECT SUMMARY
	// =========================================================================

	entries := make([]utils.SummaryEntry, 0, len(results))
	failed := 0

	for _, result := range results {
		entry := summaryEntry(result)
		if result.Success {
			reportLine(out, "✓", result.InputFile, result.OutputFile)
			finishSuccess(fm, result, logger)
		} else {
			failed++
			reportLine(out, "✗", result.InputFile, result.Error.Error())
		}
		entries = append(entries, entry)
	}

	// =========================================================================
	// STEP 4: SUMMARY
	// =========================================================================

	if cfg.Batch.WriteSummary {
		path, err := utils.WriteSummary(entries, outputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Summary written to %s\n", path)
	}

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", len(results))
	fmt.Fprintf(out, "Successful:      %d\n", len(results)-failed)
	fmt.Fprintf(out, "Errors:          %d\n", failed)
	fmt.Fprintf(out, "Time elapsed:    %s\n", time.Since(startTime).Round(time.Millisecond))

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(results))
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// finishSuccess archives the input and writes the findings log. Failures here
// are logged; the report itself is already written.
func finishSuccess(fm *utils.FileManager, result converter.Result, logger logging.Logger) {
	log := logger.WithField(logging.FieldInputFile, result.InputFile)

	if len(result.Warnings) > 0 {
		if err := validation.WriteErrorLog(result.Warnings, warningsLogPath(result.OutputFile)); err != nil {
			log.WithError(err).Warn("Failed to write validation log")
		}
	}

	if _, err := fm.ArchiveInputFile(result.InputFile); err != nil {
		log.WithError(err).Warn("Failed to archive input file")
	}
}

func summaryEntry(result converter.Result) utils.SummaryEntry {
	entry := utils.SummaryEntry{
		InputFile:         filepath.Base(result.InputFile),
		OutputFile:        result.OutputFile,
		Status:            utils.StatusSuccess,
		Operations:        result.Stats.Operations,
		CustodyOperations: result.Stats.CustodyOperations,
		Warnings:          result.Stats.Warnings,
		DurationMs:        result.Stats.ProcessingTime.Milliseconds(),
	}
	if !result.Success {
		entry.Status = utils.StatusFailed
		entry.ErrorKind = result.Kind.String()
		if result.Error != nil {
			entry.ErrorMessage = result.Error.Error()
		}
	}
	return entry
}

func reportLine(out io.Writer, mark, input, detail string) {
	fmt.Fprintf(out, "  %s %s: %s\n", mark, filepath.Base(input), detail)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
