package home

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/easypractice/internal/catalog"
	"github.com/abhisek/easypractice/internal/queue"
	"github.com/abhisek/easypractice/internal/router"
	"github.com/abhisek/easypractice/internal/screen"
	"github.com/abhisek/easypractice/internal/screens/free"
	"github.com/abhisek/easypractice/internal/screens/history"
	sessionscreen "github.com/abhisek/easypractice/internal/screens/session"
	"github.com/abhisek/easypractice/internal/screens/struggled"
	"github.com/abhisek/easypractice/internal/ui/components"
	"github.com/abhisek/easypractice/internal/ui/layout"
	"github.com/abhisek/easypractice/internal/ui/theme"
)

// CoverageChangedMsg is emitted when the user picks another coverage.
type CoverageChangedMsg struct {
	Coverage int
}

type setEntry struct {
	Key   string
	Name  string
	Items int
}

type setsLoadedMsg struct {
	Sets []setEntry
	Err  error
}

// HomeScreen lists the enabled item sets and starts sessions.
type HomeScreen struct {
	env      screen.Env
	coverage int
	sets     []setEntry
	menu     components.Menu
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(env screen.Env) *HomeScreen {
	coverage := env.Coverage
	if !slices.Contains(queue.CoverageOptions, coverage) {
		coverage = queue.DefaultCoverage
	}
	h := &HomeScreen{env: env, coverage: coverage}
	h.menu = h.buildMenu()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadSets()
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
		{Key: "←→", Description: "Coverage"},
		{Key: "F", Description: "Free practice"},
	}
}

// loadSets reads the enabled sets sorted by display name, with item counts.
func (h *HomeScreen) loadSets() tea.Cmd {
	env := h.env
	return func() tea.Msg {
		ctx := context.Background()
		all, err := env.Catalog.ItemSets(ctx)
		if err != nil {
			return setsLoadedMsg{Err: err}
		}
		enabled := catalog.EnabledSets(all)
		catalog.SortByName(enabled, env.Language)

		entries := make([]setEntry, 0, len(enabled))
		for _, s := range enabled {
			items, err := env.Catalog.ItemsForKey(ctx, s.Key)
			if err != nil {
				return setsLoadedMsg{Err: err}
			}
			entries = append(entries, setEntry{
				Key:   s.Key,
				Name:  s.Name.Resolve(env.Language),
				Items: len(items),
			})
		}
		return setsLoadedMsg{Sets: entries}
	}
}

func (h *HomeScreen) buildMenu() components.Menu {
	items := make([]components.MenuItem, 0, len(h.sets)+3)
	for _, s := range h.sets {
		hint := fmt.Sprintf("%d items", s.Items)
		if s.Items == 1 {
			hint = "1 item"
		}
		items = append(items, components.MenuItem{
			Label:    s.Name,
			Hint:     hint,
			Disabled: s.Items == 0,
			Action: func() tea.Cmd {
				return router.Push(sessionscreen.New(h.env, s.Key, s.Name, h.coverage))
			},
		})
	}
	items = append(items,
		components.MenuItem{Label: "Struggled items", Action: func() tea.Cmd {
			return router.Push(struggled.New(h.env))
		}},
		components.MenuItem{Label: "History", Action: func() tea.Cmd {
			return router.Push(history.New(h.env))
		}},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	)
	return components.NewMenu(items)
}

// selectedSet returns the set under the cursor, if the cursor is on one.
func (h *HomeScreen) selectedSet() (setEntry, bool) {
	if h.menu.Selected < 0 || h.menu.Selected >= len(h.sets) {
		return setEntry{}, false
	}
	return h.sets[h.menu.Selected], true
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case setsLoadedMsg:
		h.loaded = true
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		selected := h.menu.Selected
		h.sets = msg.Sets
		h.menu = h.buildMenu()
		if selected < len(h.menu.Items) && !h.menu.Items[selected].Disabled {
			h.menu.Selected = selected
		}
		return h, nil

	case router.RefreshMsg:
		return h, h.loadSets()

	case tea.KeyMsg:
		switch msg.String() {
		case "left":
			return h, h.shiftCoverage(-1)
		case "right":
			return h, h.shiftCoverage(1)
		case "f", "F":
			if s, ok := h.selectedSet(); ok && s.Items > 0 {
				return h, router.Push(free.New(h.env, s.Key, s.Name))
			}
			return h, nil
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// shiftCoverage moves to the neighbouring coverage option, without wrapping.
func (h *HomeScreen) shiftCoverage(dir int) tea.Cmd {
	i := slices.Index(queue.CoverageOptions, h.coverage) + dir
	if i < 0 || i >= len(queue.CoverageOptions) {
		return nil
	}
	h.coverage = queue.CoverageOptions[i]
	coverage := h.coverage
	return func() tea.Msg { return CoverageChangedMsg{Coverage: coverage} }
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Centered(theme.Title, width, "Pick a set to practice"))
	b.WriteString("\n")
	b.WriteString(theme.Centered(theme.Subtitle, width, h.coverageLine()))
	b.WriteString("\n\n")

	switch {
	case h.errMsg != "":
		b.WriteString(theme.Centered(theme.Incorrect, width, "Error: "+h.errMsg))
		b.WriteString("\n\n")
	case h.loaded && len(h.sets) == 0:
		b.WriteString(theme.Centered(theme.Hint, width,
			"No enabled sets. Run `easypractice sync` or `easypractice import FILE`."))
		b.WriteString("\n\n")
	}

	menuWidth := min(width-4, 60)
	menu := lipgloss.NewStyle().Width(menuWidth).Render(h.menu.View())
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, menu))
	return b.String()
}

func (h *HomeScreen) coverageLine() string {
	parts := make([]string, len(queue.CoverageOptions))
	for i, c := range queue.CoverageOptions {
		label := fmt.Sprintf("%d%%", c)
		if c == h.coverage {
			label = "[" + label + "]"
		}
		parts[i] = label
	}
	return "Coverage  " + strings.Join(parts, "  ")
}
