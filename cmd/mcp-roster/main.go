package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	verbose   bool
	ephemeral bool
)

var rootCmd = &cobra.Command{
	Use:   "mcp-roster",
	Short: "Keep a local collection of MCP servers in sync with a provider",
	Long: "mcp-roster manages an ordered collection of MCP server definitions and " +
		"pulls new ones from a remote sync provider using a stored bearer token.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: open the panel on a terminal, list otherwise.
		return runPanel(cmd, args)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mcp-roster %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep the sync token in memory for this run only")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(panelCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
