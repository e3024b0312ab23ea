package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "canopy",
	Short: "Canopy is a hierarchical tree-select engine",
	Long:  `Canopy lets you define searchable option trees in YAML and drive selections from a terminal, an HTTP API, or an MCP server.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("tree", "t", "options.yaml", "Path to the option tree document")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
}
