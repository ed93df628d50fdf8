// Package struggled lists the items with the highest failure rates.
package struggled

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/easypractice/internal/router"
	"github.com/abhisek/easypractice/internal/screen"
	"github.com/abhisek/easypractice/internal/store"
	"github.com/abhisek/easypractice/internal/ui/layout"
	"github.com/abhisek/easypractice/internal/ui/theme"
)

// Limit is how many items the screen shows.
const Limit = 20

type loadedMsg struct {
	Items []store.StruggledItem
	Err   error
}

// StruggledScreen shows items ordered by priority, highest first.
type StruggledScreen struct {
	env    screen.Env
	items  []store.StruggledItem
	loaded bool
	errMsg string
}

var _ screen.Screen = (*StruggledScreen)(nil)
var _ screen.KeyHintProvider = (*StruggledScreen)(nil)

// New creates a new StruggledScreen.
func New(env screen.Env) *StruggledScreen {
	return &StruggledScreen{env: env}
}

func (s *StruggledScreen) Init() tea.Cmd {
	stats := s.env.Stats
	return func() tea.Msg {
		items, err := stats.Struggled(context.Background(), Limit, "")
		return loadedMsg{Items: items, Err: err}
	}
}

func (s *StruggledScreen) Title() string {
	return "Struggled items"
}

func (s *StruggledScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (s *StruggledScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.items = msg.Items
		}
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return s, router.Pop
		}
	}
	return s, nil
}

func (s *StruggledScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return theme.Centered(lipgloss.NewStyle().Foreground(theme.Error), width, "\n\nError: "+s.errMsg)
	case !s.loaded:
		return theme.Centered(theme.Subtitle, width, "\n\nLoading...")
	case len(s.items) == 0:
		return theme.Centered(theme.Hint, width, "\n\nNothing failed yet. Keep it up!")
	}

	var b strings.Builder
	header := fmt.Sprintf("%-28s %-14s %8s %6s", "Prompt", "Answer", "Failed", "Prio")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(header)))
	b.WriteString("\n")
	b.WriteString(layout.Divider(width, 60))
	b.WriteString("\n")

	for _, it := range s.items {
		line := fmt.Sprintf("%-28s %-14s %4d/%-3d %6.0f",
			clip(it.Item.Prompt, 28), clip(it.Item.Answer, 14),
			it.Stats.FailCount, it.Stats.TotalAttempts, it.Stats.Priority)
		style := theme.Body
		if it.Stats.Priority >= 80 {
			style = theme.Incorrect
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

func clip(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
