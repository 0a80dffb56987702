package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ruminaider/mcp-roster/internal/servers"
)

var listShowIDs bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List servers in collection order",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			entries := a.manager.Entries()
			if len(entries) == 0 {
				fmt.Println("No servers yet. Run 'mcp-roster add' or 'mcp-roster sync'.")
				return nil
			}
			for i, e := range entries {
				fmt.Println(formatEntry(i+1, e, listShowIDs))
			}
			return nil
		})
	},
}

// formatEntry renders one list row: position, name, transport and endpoint.
func formatEntry(pos int, e servers.Entry, showID bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%3d. %s  (%s)", pos, e.Name, e.TransportType())
	if e.IsRemote() {
		fmt.Fprintf(&b, "  %s", e.BaseURL)
	} else if e.Command != "" {
		fmt.Fprintf(&b, "  %s", strings.TrimSpace(e.Command+" "+strings.Join(e.Args, " ")))
	}
	if e.Provider != "" {
		fmt.Fprintf(&b, "  [%s]", e.Provider)
	}
	if showID {
		fmt.Fprintf(&b, "  %s", e.ID)
	}
	return b.String()
}

func init() {
	listCmd.Flags().BoolVar(&listShowIDs, "ids", false, "Show server ids")
}
