package tui

import "github.com/ruminaider/mcp-roster/internal/remote"

// OverlayCloseMsg is emitted when any overlay is dismissed.
type OverlayCloseMsg struct {
	Result    string // text result (token prompt) or empty
	Confirmed bool   // true = Submit/OK, false = Cancel/Esc
}

// SyncResultMsg carries a finished provider fetch back to the panel.
type SyncResultMsg struct {
	Result remote.Result
}
