// =============================================================================
// XmlCreator40 - Main Entry Point
// =============================================================================
//
// This is the main entry point for the XmlCreator40 CLI. It delegates
// command execution to the cmd package.
//
// USAGE:
//   xmlcreator40 convert -i datos.xlsx  - Convert one workbook
//   xmlcreator40 process                - Convert every workbook in the input directory
//   xmlcreator40 serve                  - Start the web front end
//   xmlcreator40 version                - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Conversion pipeline, web front end, configuration
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/Abyblackmouth/XmlCreator40/cmd"
)

func main() {
	cmd.Execute()
}
