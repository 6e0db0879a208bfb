package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Abyblackmouth/XmlCreator40/internal/config"
)

var initForce bool

// initCmd writes a configuration file holding the defaults.
var initCmd = &cobra.Command{
	Use:               "init [path]",
	Short:             "Write a default configuration file",
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: skipConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultFileName
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteDefault(path, initForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file")
}
