// =============================================================================
// XmlCreator40 - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (xmlcreator40)
//   ├── convertCmd  (xmlcreator40 convert)
//   ├── processCmd  (xmlcreator40 process)
//   ├── serveCmd    (xmlcreator40 serve)
//   ├── templateCmd (xmlcreator40 template)
//   ├── inspectCmd  (xmlcreator40 inspect)
//   ├── initCmd     (xmlcreator40 init)
//   └── versionCmd  (xmlcreator40 version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration before any subcommand runs
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Abyblackmouth/XmlCreator40/internal/config"
	"github.com/Abyblackmouth/XmlCreator40/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file. Empty means search the
// default locations.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// appConfig and appLogger are set by loadConfig before a subcommand runs.
var (
	appConfig *config.Config
	appLogger logging.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "xmlcreator40",
	Short: "XmlCreator40 - Generate UIF tcv XML reports from Excel workbooks",
	Long: `XmlCreator40 converts a submission workbook (sheets encabezado,
persona_moral and operaciones) into the XML notice expected by the UIF for
the "tcv" activity.

Example Usage:
  xmlcreator40 convert -i datos.xlsx            # Convert one workbook
  xmlcreator40 process                          # Convert every workbook in the input directory
  xmlcreator40 serve                            # Start the web front end
  xmlcreator40 template -o plantilla_UIF.xlsx   # Write a blank workbook
  xmlcreator40 inspect output/informe1.0_X_3.xml`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},

	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main(). SIGINT and SIGTERM
// cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration and builds the application logger.
func loadConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	opts := cfg.LogOptions()
	if verbose {
		opts.Level = "debug"
	}

	appConfig = cfg
	appLogger = logging.New(opts)
	if cfgFile != "" {
		appLogger.Debug("Configuration loaded", logging.F("config_file", cfgFile))
	}
	return nil
}

// skipConfig replaces the root PersistentPreRunE for commands that must work
// without a valid configuration.
func skipConfig(cmd *cobra.Command, args []string) error {
	return nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (default: config.yaml in . or $HOME/.xmlcreator40)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
