package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// picker is a multi-select list: space toggles, enter confirms, esc cancels.
// Every item starts selected.
type picker struct {
	title     string
	items     []string
	selected  []bool
	cursor    int
	cancelled bool
}

func newPicker(title string, items []string) picker {
	selected := make([]bool, len(items))
	for i := range selected {
		selected[i] = true
	}
	return picker{title: title, items: items, selected: selected}
}

func (p picker) Init() tea.Cmd { return nil }

func (p picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "ctrl+c", "q", "esc":
		p.cancelled = true
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.items)-1 {
			p.cursor++
		}
	case " ", "x":
		if len(p.items) > 0 {
			p.selected[p.cursor] = !p.selected[p.cursor]
		}
	case "a":
		all := !p.allSelected()
		for i := range p.selected {
			p.selected[i] = all
		}
	case "enter":
		return p, tea.Quit
	}
	return p, nil
}

func (p picker) allSelected() bool {
	for _, s := range p.selected {
		if !s {
			return false
		}
	}
	return true
}

func (p picker) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s\n", p.title)
	b.WriteString("  space: toggle · a: all/none · enter: confirm · esc: cancel\n\n")
	for i, item := range p.items {
		cursor := "  "
		if p.cursor == i {
			cursor = "> "
		}
		check := "[ ]"
		if p.selected[i] {
			check = "[x]"
		}
		fmt.Fprintf(&b, "  %s%s %s\n", cursor, check, item)
	}
	return b.String()
}

// Selected returns the chosen items in list order, or nil if cancelled.
func (p picker) Selected() []string {
	if p.cancelled {
		return nil
	}
	result := []string{}
	for i, item := range p.items {
		if p.selected[i] {
			result = append(result, item)
		}
	}
	return result
}

// runPicker runs the picker and returns the chosen items.
func runPicker(title string, items []string) ([]string, error) {
	model, err := tea.NewProgram(newPicker(title, items)).Run()
	if err != nil {
		return nil, err
	}
	return model.(picker).Selected(), nil
}
