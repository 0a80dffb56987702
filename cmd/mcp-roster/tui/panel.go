package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/ruminaider/mcp-roster/internal/notify"
	"github.com/ruminaider/mcp-roster/internal/servers"
	"github.com/ruminaider/mcp-roster/internal/sync"
)

// saveKey is the notice key for persistence errors.
const saveKey = "save"

// PersistFunc writes the collection after the panel changes it.
type PersistFunc func() error

// Model is the Bubble Tea model for the server panel.
type Model struct {
	ctx     context.Context
	manager *servers.Manager
	orch    *sync.Orchestrator
	board   *notify.Board
	persist PersistFunc
	title   string

	entries []servers.Entry // collection order
	rows    []row           // what is shown, after filtering
	cursor  int

	filter    textinput.Model
	filtering bool // filter input has focus

	overlay Overlay
	status  StatusBar
	width   int
	height  int

	Quitting bool
}

// row is a visible entry plus the name characters matched by the filter.
type row struct {
	index   int // position in entries
	matched []int
}

// NewModel creates a panel over the manager. persist is called after every
// reorder and after a sync adds servers.
func NewModel(ctx context.Context, manager *servers.Manager, orch *sync.Orchestrator, board *notify.Board, persist PersistFunc) Model {
	fi := textinput.New()
	fi.Prompt = FilterPromptStyle.Render("/ ")
	fi.Placeholder = "filter by name"
	fi.CharLimit = 64

	m := Model{
		ctx:     ctx,
		manager: manager,
		orch:    orch,
		board:   board,
		persist: persist,
		title:   "MCP servers",
		filter:  fi,
		status:  NewStatusBar(),
		width:   80,
		height:  24,
	}
	m.status.SetWidth(m.width)
	m.reload()
	if sel, ok := manager.Selected(); ok {
		m.focus(sel.ID)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// reload re-reads the collection and reapplies the filter.
func (m *Model) reload() {
	m.entries = m.manager.Entries()
	m.applyFilter()
	m.status.Update(m.board, len(m.entries), m.orch.InProgress(), m.filterActive())
}

// entrySource adapts entries for fuzzy matching on names.
type entrySource []servers.Entry

func (s entrySource) String(i int) string { return s[i].Name }
func (s entrySource) Len() int            { return len(s) }

func (m *Model) applyFilter() {
	pattern := strings.TrimSpace(m.filter.Value())
	m.rows = nil
	if pattern == "" {
		for i := range m.entries {
			m.rows = append(m.rows, row{index: i})
		}
	} else {
		for _, match := range fuzzy.FindFrom(pattern, entrySource(m.entries)) {
			m.rows = append(m.rows, row{index: match.Index, matched: match.MatchedIndexes})
		}
	}
	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
}

func (m Model) filterActive() bool {
	return strings.TrimSpace(m.filter.Value()) != ""
}

// focus moves the cursor onto the row showing id, if visible.
func (m *Model) focus(id string) {
	for i, r := range m.rows {
		if m.entries[r.index].ID == id {
			m.cursor = i
			return
		}
	}
}

// current returns the entry under the cursor.
func (m Model) current() (servers.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return servers.Entry{}, false
	}
	return m.entries[m.rows[m.cursor].index], true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.status.SetWidth(msg.Width)
		if m.overlay.Active() {
			m.overlay.SetWidth(OverlayMaxWidth(msg.Width))
		}
		return m, nil

	case SyncResultMsg:
		return m.completeSync(msg)

	case OverlayCloseMsg:
		return m.submitToken(msg)
	}

	if m.overlay.Active() {
		var cmd tea.Cmd
		m.overlay, cmd = m.overlay.Update(msg)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.filtering {
		return m.updateFilter(key)
	}

	switch key.String() {
	case "ctrl+c", "q":
		m.Quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case "shift+up", "K":
		m.move(-1)

	case "shift+down", "J":
		m.move(1)

	case "enter", " ":
		if e, ok := m.current(); ok {
			if err := m.manager.SetSelected(e.ID); err != nil {
				m.board.Error(err.Error(), saveKey)
			}
		}

	case "s":
		return m.startSync()

	case "/":
		m.filtering = true
		return m, m.filter.Focus()

	case "esc":
		if m.filterActive() {
			m.filter.SetValue("")
			m.reload()
		} else {
			m.manager.ClearSelected()
		}
	}

	m.status.Update(m.board, len(m.entries), m.orch.InProgress(), m.filterActive())
	return m, nil
}

func (m Model) updateFilter(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.filter.SetValue("")
		m.filter.Blur()
		m.filtering = false
		m.reload()
		return m, nil
	case "enter", "down", "up":
		m.filter.Blur()
		m.filtering = false
		m.status.Update(m.board, len(m.entries), m.orch.InProgress(), m.filterActive())
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(key)
	m.cursor = 0
	m.reload()
	return m, cmd
}

// move shifts the entry under the cursor by delta positions. Reordering is
// only possible on the unfiltered list.
func (m *Model) move(delta int) {
	if m.filterActive() {
		return
	}
	from := m.cursor
	to := from + delta
	if to < 0 || to >= len(m.entries) {
		return
	}
	order, err := servers.Move(m.entries, from, to)
	if err != nil {
		return
	}
	if err := m.manager.Reorder(order); err != nil {
		m.board.Error(err.Error(), saveKey)
		return
	}
	m.cursor = to
	m.save()
	m.reload()
}

func (m *Model) save() {
	if m.persist == nil {
		return
	}
	if err := m.persist(); err != nil {
		m.board.Error(fmt.Sprintf("Saving failed: %v", err), saveKey)
		return
	}
	m.board.Dismiss(saveKey)
}

// startSync handles the sync key. While a sync is in flight the key does
// nothing.
func (m Model) startSync() (tea.Model, tea.Cmd) {
	if m.orch.InProgress() {
		return m, nil
	}
	start, err := m.orch.Begin()
	if err != nil {
		m.board.Error(err.Error(), sync.NotificationKey)
		m.reload()
		return m, nil
	}
	return m.follow(start)
}

// submitToken handles the token prompt closing.
func (m Model) submitToken(msg OverlayCloseMsg) (tea.Model, tea.Cmd) {
	if !msg.Confirmed {
		m.orch.CancelPrompt()
		m.reload()
		return m, nil
	}
	start, err := m.orch.SubmitToken(msg.Result)
	if err != nil {
		m.board.Error(err.Error(), sync.NotificationKey)
		m.orch.CancelPrompt()
		m.reload()
		return m, nil
	}
	return m.follow(start)
}

// follow acts on the step the orchestrator asked for.
func (m Model) follow(start sync.Start) (tea.Model, tea.Cmd) {
	switch start.Step {
	case sync.StepPrompt:
		m.openPrompt("")
		m.reload()
		return m, textinput.Blink
	case sync.StepFetch:
		m.reload()
		return m, m.fetch(start.Token)
	}
	m.reload()
	return m, nil
}

func (m *Model) openPrompt(reason string) {
	m.overlay = NewTokenOverlay("Sync token", reason)
	m.overlay.SetWidth(OverlayMaxWidth(m.width))
}

// fetch runs the provider call off the update loop.
func (m Model) fetch(token string) tea.Cmd {
	ctx, orch := m.ctx, m.orch
	return func() tea.Msg {
		return SyncResultMsg{Result: orch.Fetch(ctx, token)}
	}
}

func (m Model) completeSync(msg SyncResultMsg) (tea.Model, tea.Cmd) {
	rep, err := m.orch.Complete(msg.Result)
	if err != nil {
		// Keep whatever the sync managed to add before failing.
		if len(rep.Added) > 0 {
			m.save()
		}
		m.reload()
		return m, nil
	}

	switch rep.Status {
	case sync.StatusUnauthorized:
		m.openPrompt(sync.UnauthorizedMessage)
		m.reload()
		return m, textinput.Blink
	case sync.StatusAdded:
		m.save()
		m.reload()
		if len(rep.Added) > 0 {
			m.focus(rep.Added[0].ID)
		}
		return m, nil
	}
	m.reload()
	return m, nil
}
