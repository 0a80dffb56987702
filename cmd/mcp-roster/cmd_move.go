package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ruminaider/mcp-roster/internal/servers"
)

var moveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Move a server to a new position",
	Long: "Move a server to position <to>. <from> is a 1-based position as shown by " +
		"'mcp-roster list', or a server id ('mcp-roster list --ids').",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := parsePosition(args[1])
		if err != nil {
			return err
		}

		return withApp(func(a *app) error {
			entries := a.manager.Entries()
			from, err := parsePosition(args[0])
			if err != nil {
				idx := servers.IndexOf(entries, args[0])
				if idx < 0 {
					return fmt.Errorf("no server at %q", args[0])
				}
				from = idx + 1
			}

			order, err := servers.Move(entries, from-1, to-1)
			if err != nil {
				return fmt.Errorf("positions must be between 1 and %d: %w", a.manager.Len(), err)
			}
			if err := a.manager.Reorder(order); err != nil {
				return err
			}
			if err := a.save(); err != nil {
				return err
			}
			fmt.Printf("Moved %s to position %d\n", order[to-1].Name, to)
			return nil
		})
	},
}

func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return n, nil
}
