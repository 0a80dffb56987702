package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// Overlay is a centered modal asking for the sync token. Input is masked.
type Overlay struct {
	title   string
	message string // optional line above the input, e.g. why the prompt reopened
	input   textinput.Model
	width   int
	active  bool
}

// NewTokenOverlay creates a masked token prompt.
func NewTokenOverlay(title, message string) Overlay {
	ti := textinput.New()
	ti.Placeholder = "paste token"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 4096
	ti.Width = 30
	ti.Focus()
	return Overlay{
		title:   title,
		message: message,
		input:   ti,
		active:  true,
	}
}

// Active returns whether the overlay is currently shown.
func (o Overlay) Active() bool {
	return o.active
}

// Update handles key messages for the overlay. Enter on an empty field is
// ignored and the prompt stays open.
func (o Overlay) Update(msg tea.Msg) (Overlay, tea.Cmd) {
	if !o.active {
		return o, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "ctrl+c":
			o.active = false
			return o, func() tea.Msg {
				return OverlayCloseMsg{Confirmed: false}
			}
		case "enter":
			value := o.input.Value()
			if value == "" {
				return o, nil
			}
			o.active = false
			return o, func() tea.Msg {
				return OverlayCloseMsg{Result: value, Confirmed: true}
			}
		}
	}

	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	return o, cmd
}

// View renders the overlay box. Compositing over the background is the
// caller's job (see Composite).
func (o Overlay) View() string {
	if !o.active {
		return ""
	}
	var b strings.Builder
	b.WriteString(OverlayTitleStyle.Render(o.title))
	b.WriteString("\n\n")
	if o.message != "" {
		b.WriteString(o.message)
		b.WriteString("\n\n")
	}
	b.WriteString(o.input.View())
	b.WriteString("\n\n")
	b.WriteString(OverlayHintStyle.Render("Enter: submit  Esc: cancel"))

	style := OverlayStyle
	if o.width > 0 {
		style = style.Width(o.width)
	}
	return style.Render(b.String())
}

// SetWidth sets the overlay box width and sizes the input to fit.
func (o *Overlay) SetWidth(w int) {
	o.width = w
	inputWidth := w - 6 // overlay padding and border
	if inputWidth < 20 {
		inputWidth = 20
	}
	o.input.Width = inputWidth
}

// OverlayMaxWidth returns a reasonable overlay width for the terminal.
func OverlayMaxWidth(termWidth int) int {
	w := termWidth * 2 / 3
	if w < 40 {
		w = 40
	}
	if w > 60 {
		w = 60
	}
	return w
}

// Composite places the overlay box centered on top of the background string.
// The background is expected to be a fully rendered terminal frame.
func Composite(background, overlay string, totalWidth, totalHeight int) string {
	if overlay == "" {
		return background
	}

	bgLines := strings.Split(background, "\n")
	for len(bgLines) < totalHeight {
		bgLines = append(bgLines, "")
	}

	overlayLines := strings.Split(overlay, "\n")
	overlayWidth := 0
	for _, line := range overlayLines {
		overlayWidth = max(overlayWidth, ansi.StringWidth(line))
	}
	startRow := max((totalHeight-len(overlayLines))/2, 0)
	startCol := max((totalWidth-overlayWidth)/2, 0)

	for i, line := range overlayLines {
		row := startRow + i
		if row >= len(bgLines) {
			break
		}
		bg := bgLines[row]
		bgWidth := ansi.StringWidth(bg)

		left := ansi.Truncate(bg, startCol, "")
		if w := ansi.StringWidth(left); w < startCol {
			left += strings.Repeat(" ", startCol-w)
		}
		right := ""
		if end := startCol + ansi.StringWidth(line); end < bgWidth {
			right = ansi.TruncateLeft(bg, end, "")
		}
		bgLines[row] = left + line + right
	}

	return strings.Join(bgLines[:max(totalHeight, 1)], "\n")
}
