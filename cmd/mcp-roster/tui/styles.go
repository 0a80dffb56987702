package tui

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// Catppuccin Mocha palette.
var flavor = catppuccin.Mocha

var (
	colorBase     = lipgloss.Color(flavor.Base().Hex)
	colorMantle   = lipgloss.Color(flavor.Mantle().Hex)
	colorSurface0 = lipgloss.Color(flavor.Surface0().Hex)
	colorSurface1 = lipgloss.Color(flavor.Surface1().Hex)
	colorText     = lipgloss.Color(flavor.Text().Hex)
	colorSubtext0 = lipgloss.Color(flavor.Subtext0().Hex)
	colorBlue     = lipgloss.Color(flavor.Blue().Hex)
	colorGreen    = lipgloss.Color(flavor.Green().Hex)
	colorRed      = lipgloss.Color(flavor.Red().Hex)
	colorYellow   = lipgloss.Color(flavor.Yellow().Hex)
	colorMauve    = lipgloss.Color(flavor.Mauve().Hex)
	colorPeach    = lipgloss.Color(flavor.Peach().Hex)
	colorOverlay0 = lipgloss.Color(flavor.Overlay0().Hex)
)

// List styles.
var (
	// HeaderStyle is used for the panel title.
	HeaderStyle = lipgloss.NewStyle().
			Foreground(colorMauve).
			Bold(true)

	// RowStyle is the default server row.
	RowStyle = lipgloss.NewStyle().
			Foreground(colorText).
			PaddingLeft(1)

	// CursorRowStyle highlights the row under the cursor.
	CursorRowStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Background(colorSurface1).
			Bold(true).
			PaddingLeft(1)

	// SelectedMarkStyle marks the selected server.
	SelectedMarkStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	// DetailStyle is used for transport and endpoint text.
	DetailStyle = lipgloss.NewStyle().
			Foreground(colorOverlay0)

	// ProviderTagStyle is used for the [provider] suffix on synced servers.
	ProviderTagStyle = lipgloss.NewStyle().
				Foreground(colorPeach).
				Italic(true)

	// MatchStyle highlights fuzzy-matched characters.
	MatchStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Underline(true)

	// FilterPromptStyle is the "/" prompt in front of the filter input.
	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true)

	// EmptyStyle is used for the empty-collection hint.
	EmptyStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Italic(true).
			PaddingLeft(2)
)

// Status bar styles.
var (
	// StatusBarStyle is the base style for the bottom status bar.
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Background(colorSurface0).
			Padding(0, 1)

	// StatusBarKeyStyle highlights keyboard shortcuts in the status bar.
	StatusBarKeyStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Background(colorSurface0).
				Bold(true)

	// StatusBarDisabledKeyStyle is used for shortcuts that cannot fire now.
	StatusBarDisabledKeyStyle = lipgloss.NewStyle().
					Foreground(colorOverlay0).
					Background(colorSurface0)

	noticeInfoStyle    = lipgloss.NewStyle().Foreground(colorBlue).Background(colorSurface0)
	noticeSuccessStyle = lipgloss.NewStyle().Foreground(colorGreen).Background(colorSurface0)
	noticeErrorStyle   = lipgloss.NewStyle().Foreground(colorRed).Background(colorSurface0).Bold(true)
	noticeLoadingStyle = lipgloss.NewStyle().Foreground(colorYellow).Background(colorSurface0)
)

// Overlay styles.
var (
	// OverlayStyle is the border and background for modal overlays.
	OverlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBlue).
			Background(colorMantle).
			Foreground(colorText).
			Padding(1, 2)

	// OverlayTitleStyle is used for the title text in overlays.
	OverlayTitleStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true)

	// OverlayHintStyle is used for the key hints under an overlay's body.
	OverlayHintStyle = lipgloss.NewStyle().
				Foreground(colorOverlay0)

	// OverlayButtonActiveStyle is used for the focused button in overlays.
	OverlayButtonActiveStyle = lipgloss.NewStyle().
					Foreground(colorBase).
					Background(colorBlue).
					Padding(0, 2)

	// OverlayButtonInactiveStyle is used for the unfocused button in overlays.
	OverlayButtonInactiveStyle = lipgloss.NewStyle().
					Foreground(colorText).
					Background(colorSurface1).
					Padding(0, 2)
)
