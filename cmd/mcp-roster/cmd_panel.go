package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/ruminaider/mcp-roster/cmd/mcp-roster/tui"
)

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Open the interactive server panel",
	RunE:  runPanel,
}

func runPanel(cmd *cobra.Command, args []string) error {
	// TTY guard: fall back to list when stdin is not a terminal
	// (piping, CI, scripts, etc.)
	if !term.IsTerminal(os.Stdin.Fd()) {
		return listCmd.RunE(cmd, args)
	}

	return withApp(func(a *app) error {
		model := tui.NewModel(cmd.Context(), a.manager, a.orch, a.board, a.save)
		_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		return err
	})
}
