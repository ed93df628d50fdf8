package history

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/easypractice/internal/config"
	"github.com/abhisek/easypractice/internal/router"
	"github.com/abhisek/easypractice/internal/screen"
	"github.com/abhisek/easypractice/internal/screens/summary"
	"github.com/abhisek/easypractice/internal/store"
	"github.com/abhisek/easypractice/internal/ui/layout"
	"github.com/abhisek/easypractice/internal/ui/theme"
)

type historyLoadedMsg struct {
	Records []store.SessionRecord
	Names   map[string]string // set key → display name
	Err     error
}

// HistoryScreen lists past sessions, newest first.
type HistoryScreen struct {
	env      screen.Env
	limit    int
	records  []store.SessionRecord
	names    map[string]string
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(env screen.Env) *HistoryScreen {
	limit := env.HistoryLimit
	if !slices.Contains(config.HistoryLimits, limit) {
		limit = config.HistoryLimits[0]
	}
	return &HistoryScreen{
		env:      env,
		limit:    limit,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	env, limit := s.env, s.limit
	return func() tea.Msg {
		ctx := context.Background()

		records, err := env.Sessions.History(ctx, "", limit)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		// Names are cosmetic; fall back to keys if the catalog is unreadable.
		names := make(map[string]string)
		if sets, err := env.Catalog.ItemSets(ctx); err == nil {
			for _, set := range sets {
				names[set.Key] = set.Name.Resolve(env.Language)
			}
		}
		return historyLoadedMsg{Records: records, Names: names}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Tab", Description: fmt.Sprintf("Show %d", s.nextLimit())},
		{Key: "Esc", Description: "Back"},
	}
}

// nextLimit returns the page size after the current one, wrapping around.
func (s *HistoryScreen) nextLimit() int {
	i := slices.Index(config.HistoryLimits, s.limit)
	return config.HistoryLimits[(i+1)%len(config.HistoryLimits)]
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.records = msg.Records
			s.names = msg.Names
			s.selected = min(s.selected, max(len(s.records)-1, 0))
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, router.Pop
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		case "tab":
			s.limit = s.nextLimit()
			return s, s.Init()
		}
	}
	return s, nil
}

func (s *HistoryScreen) name(key string) string {
	if n := s.names[key]; n != "" {
		return n
	}
	return key
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return theme.Centered(lipgloss.NewStyle().Foreground(theme.Error), width,
			fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return theme.Centered(theme.Subtitle, width, "\n\n  Loading history...")
	}
	if len(s.records) == 0 {
		return theme.Centered(theme.Hint, width, "\n\n  No sessions yet. Start practicing!")
	}

	var b strings.Builder
	b.WriteString(theme.Centered(theme.Subtitle, width,
		fmt.Sprintf("Last %d session(s), showing up to %d", len(s.records), s.limit)))
	b.WriteString("\n\n")

	for i, rec := range s.records {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}

		line := fmt.Sprintf("%s%s  %-20s  %s  %d items  %d%%",
			prefix,
			rec.StartedAt.Local().Format("Jan 02 15:04"),
			truncate(s.name(rec.ItemSetKey), 20),
			summary.FormatDuration(int(rec.Duration.Seconds())),
			rec.TotalItems,
			rec.Accuracy)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := fmt.Sprintf("    passed %d, failed %d, ended %s",
				rec.PassCount, rec.FailCount, rec.EndedAt.Local().Format("Jan 02 15:04:05"))
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
