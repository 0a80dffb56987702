package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/ruminaider/mcp-roster/internal/servers"
)

// chromeHeight is the rows taken by the header, filter line and status bar.
const chromeHeight = 4

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s (%d)", m.title, len(m.entries))))
	b.WriteString("\n")
	if m.filtering || m.filterActive() {
		b.WriteString(m.filter.View())
	}
	b.WriteString("\n\n")

	visible := max(m.height-chromeHeight, 1)
	lines := 0
	switch {
	case len(m.entries) == 0:
		b.WriteString(EmptyStyle.Render("No servers yet. Press s to sync."))
		b.WriteString("\n")
		lines++
	case len(m.rows) == 0:
		b.WriteString(EmptyStyle.Render("No matches."))
		b.WriteString("\n")
		lines++
	default:
		offset := max(m.cursor-visible+1, 0)
		end := min(offset+visible, len(m.rows))
		selected, _ := m.manager.Selected()
		for i := offset; i < end; i++ {
			r := m.rows[i]
			b.WriteString(m.renderRow(m.entries[r.index], r.matched, i == m.cursor, m.entries[r.index].ID == selected.ID))
			b.WriteString("\n")
			lines++
		}
	}
	for ; lines < visible; lines++ {
		b.WriteString("\n")
	}
	b.WriteString(m.status.View())

	frame := b.String()
	if m.overlay.Active() {
		frame = Composite(frame, m.overlay.View(), m.width, m.height)
	}
	return frame
}

func (m Model) renderRow(e servers.Entry, matched []int, atCursor, isSelected bool) string {
	mark := "  "
	if isSelected {
		mark = SelectedMarkStyle.Render("● ")
	}

	name := e.Name
	if len(matched) > 0 {
		name = highlight(e.Name, matched)
	}

	detail := e.TransportType()
	if e.IsRemote() {
		detail += "  " + e.BaseURL
	} else if e.Command != "" {
		detail += "  " + strings.TrimSpace(e.Command+" "+strings.Join(e.Args, " "))
	}
	line := mark + name + "  " + DetailStyle.Render(detail)
	if e.Provider != "" {
		line += "  " + ProviderTagStyle.Render("["+e.Provider+"]")
	}
	line = ansi.Truncate(line, max(m.width-2, 10), "…")

	if atCursor {
		return CursorRowStyle.Render(line)
	}
	return RowStyle.Render(line)
}

// highlight styles the characters of s starting at the given byte offsets.
func highlight(s string, indexes []int) string {
	hit := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		hit[i] = true
	}
	var b strings.Builder
	for i, r := range s {
		if hit[i] {
			b.WriteString(MatchStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
