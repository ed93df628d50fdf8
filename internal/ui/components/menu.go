package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/easypractice/internal/ui/theme"
)

// MenuItem represents a single item in a navigation menu.
type MenuItem struct {
	Label    string
	Hint     string // dim text after the label
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical navigation menu. Selection skips disabled items.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a new menu with the first enabled item selected.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items}
	m.Selected = m.next(-1, 1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// next returns the first enabled index after from in direction dir, or -1.
func (m Menu) next(from, dir int) int {
	for i := from + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			return i
		}
	}
	return -1
}

// Current returns the selected item, or nil for an empty menu.
func (m Menu) Current() *MenuItem {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return nil
	}
	return &m.Items[m.Selected]
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if i := m.next(m.Selected, -1); i >= 0 {
			m.Selected = i
		}
	case "down", "j":
		if i := m.next(m.Selected, 1); i >= 0 {
			m.Selected = i
		}
	case "enter":
		if item := m.Current(); item != nil && item.Action != nil && !item.Disabled {
			return m, item.Action()
		}
	}

	return m, nil
}

// View renders the menu.
func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		var line string
		switch {
		case item.Disabled:
			line = theme.Disabled.Render("    " + item.Label)
		case i == m.Selected:
			line = theme.Selected.Render("  ▸ " + item.Label)
		default:
			line = theme.Unselected.Render("    " + item.Label)
		}
		if item.Hint != "" {
			line += "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(item.Hint)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
