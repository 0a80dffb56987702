package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/ruminaider/mcp-roster/internal/notify"
)

// StatusBar renders the bottom row: the latest notice on the left and
// keyboard shortcuts on the right.
type StatusBar struct {
	notice    notify.Notice
	hasNotice bool
	total     int
	syncing   bool
	filtered  bool
	width     int
}

// NewStatusBar creates an empty status bar.
func NewStatusBar() StatusBar {
	return StatusBar{}
}

// SetWidth sets the available width for rendering.
func (s *StatusBar) SetWidth(w int) {
	s.width = w
}

// Update refreshes the bar from the notice board and panel state.
func (s *StatusBar) Update(board *notify.Board, total int, syncing, filtered bool) {
	s.notice, s.hasNotice = board.Latest()
	s.total = total
	s.syncing = syncing
	s.filtered = filtered
}

func (s StatusBar) left() string {
	if !s.hasNotice {
		return fmt.Sprintf("%d servers", s.total)
	}
	switch s.notice.Level {
	case notify.LevelSuccess:
		return noticeSuccessStyle.Render("✓ " + s.notice.Message)
	case notify.LevelError:
		return noticeErrorStyle.Render("✗ " + s.notice.Message)
	case notify.LevelLoading:
		return noticeLoadingStyle.Render("… " + s.notice.Message)
	default:
		return noticeInfoStyle.Render(s.notice.Message)
	}
}

func (s StatusBar) shortcuts() string {
	syncKey := StatusBarKeyStyle.Render("s")
	if s.syncing {
		syncKey = StatusBarDisabledKeyStyle.Render("s")
	}
	moveKey := StatusBarKeyStyle.Render("J/K")
	if s.filtered {
		moveKey = StatusBarDisabledKeyStyle.Render("J/K")
	}
	keys := []string{
		syncKey + ": sync",
		moveKey + ": move",
		StatusBarKeyStyle.Render("/") + ": filter",
		StatusBarKeyStyle.Render("q") + ": quit",
	}
	return strings.Join(keys, " · ")
}

// View renders the status bar.
func (s StatusBar) View() string {
	left := s.left()
	right := s.shortcuts()

	available := s.width - 2 // StatusBarStyle padding
	gap := available - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		// Drop the shortcuts before truncating the notice.
		right = ""
		gap = 1
		left = ansi.Truncate(left, max(available-1, 0), "…")
	}

	return StatusBarStyle.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}
