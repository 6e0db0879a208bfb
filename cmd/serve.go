// =============================================================================
// XmlCreator40 - Serve Command
// =============================================================================
//
// COMMAND USAGE:
//   xmlcreator40 serve [--port 5000] [--no-browser]
//
// Starts the web front end and, unless disabled, opens it in the default
// browser. The server stops on SIGINT/SIGTERM or on POST /shutdown when
// server.shutdown_enabled is set.
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Abyblackmouth/XmlCreator40/internal/converter"
	"github.com/Abyblackmouth/XmlCreator40/internal/server"
)

var (
	servePort      int
	serveNoBrowser bool
)

// serveCmd represents the 'serve' command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web front end",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			appConfig.Server.Port = servePort
		}
		if serveNoBrowser {
			appConfig.Server.OpenBrowser = false
		}
		if err := appConfig.Validate(); err != nil {
			return err
		}

		conv := converter.New(converter.WithLogger(appLogger))
		return server.New(appConfig, appLogger, conv).Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default: server.port)")
	serveCmd.Flags().BoolVar(&serveNoBrowser, "no-browser", false, "Do not open the browser")
}
