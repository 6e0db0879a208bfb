// =============================================================================
// XmlCreator40 - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   xmlcreator40 version
//
// OUTPUT:
//   XmlCreator40
//   Version:    1.0.0
//   Build Date: 2024-01-01
//   Go Version: go1.24.0
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// These variables are set at build time using ldflags:
//   go build -ldflags "-X 'github.com/Abyblackmouth/XmlCreator40/cmd.Version=1.0.0'"
var (
	// Version is the application version.
	Version = "1.0.0"

	// BuildDate is the date the application was built.
	BuildDate = "unknown"
)

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Display the application version",
	Long:              `Display the application version, build date, and Go runtime version.`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: skipConfig,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "XmlCreator40")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
