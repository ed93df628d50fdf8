// Package free implements open-ended practice over one set key.
package free

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/easypractice/internal/answer"
	"github.com/abhisek/easypractice/internal/queue"
	"github.com/abhisek/easypractice/internal/router"
	"github.com/abhisek/easypractice/internal/screen"
	"github.com/abhisek/easypractice/internal/session"
	"github.com/abhisek/easypractice/internal/store"
	"github.com/abhisek/easypractice/internal/ui/components"
	"github.com/abhisek/easypractice/internal/ui/layout"
	"github.com/abhisek/easypractice/internal/ui/theme"
)

type itemMsg struct {
	Item *store.Item
	Err  error
}

// FreeScreen serves one item at a time until the user leaves.
type FreeScreen struct {
	practice *session.FreePractice
	name     string
	input    components.AnswerInput

	loaded bool
	errMsg string

	// set after an answer
	answered *store.Item
	given    string
	pass     bool
	stats    *store.Statistics
}

var _ screen.Screen = (*FreeScreen)(nil)
var _ screen.KeyHintProvider = (*FreeScreen)(nil)

// New creates a free practice screen for key.
func New(env screen.Env, key, name string) *FreeScreen {
	limit := env.RecentLimit
	if limit <= 0 {
		limit = queue.DefaultRecentLimit
	}
	return newWithPractice(session.NewFreePractice(env.Selector, env.Stats, key, limit), name)
}

func newWithPractice(p *session.FreePractice, name string) *FreeScreen {
	return &FreeScreen{
		practice: p,
		name:     name,
		input:    components.NewAnswerInput("Type your answer...", 64),
	}
}

func (s *FreeScreen) Init() tea.Cmd {
	return tea.Batch(s.next(), s.input.Init())
}

func (s *FreeScreen) next() tea.Cmd {
	p := s.practice
	return func() tea.Msg {
		item, err := p.Next(context.Background())
		return itemMsg{Item: item, Err: err}
	}
}

func (s *FreeScreen) Title() string {
	return "Free practice: " + s.name
}

func (s *FreeScreen) KeyHints() []layout.KeyHint {
	if s.answered != nil {
		return []layout.KeyHint{
			{Key: "any key", Description: "Next"},
			{Key: "Esc", Description: "Stop"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Stop"},
	}
}

func (s *FreeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case itemMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		return s, nil

	case tea.KeyMsg:
		if s.errMsg != "" {
			return s, router.Pop
		}
		if s.answered != nil {
			s.answered = nil
			s.stats = nil
			s.input.Reset()
			return s, s.next()
		}
		if msg.String() == "enter" {
			return s.submit()
		}
	}

	if s.practice.Current() != nil {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *FreeScreen) submit() (screen.Screen, tea.Cmd) {
	item := s.practice.Current()
	given := s.input.Value()
	if item == nil || given == "" {
		return s, nil
	}

	pass := answer.Check(item.Answer, given)
	result := store.ResultFail
	if pass {
		result = store.ResultPass
	}
	st, err := s.practice.Submit(context.Background(), result)
	if err != nil {
		s.errMsg = err.Error()
		return s, nil
	}

	s.input.Mark(pass)
	s.answered, s.given, s.pass, s.stats = item, given, pass, st
	return s, nil
}

func (s *FreeScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return theme.Centered(lipgloss.NewStyle().Foreground(theme.Error), width,
			fmt.Sprintf("\n\n\nError: %s\n\nPress any key to go back.", s.errMsg))
	case !s.loaded:
		return theme.Centered(theme.Subtitle, width, "\n\n\nPicking an item...")
	case s.answered == nil && s.practice.Current() == nil:
		return theme.Centered(theme.Subtitle, width, "\n\n\nThis set has no items to practice.")
	}

	pass, fail := s.practice.Counts()
	var b strings.Builder
	b.WriteString(theme.Centered(theme.Subtitle, width, fmt.Sprintf("✓ %d   ✗ %d", pass, fail)))
	b.WriteString("\n")
	b.WriteString(layout.Divider(width, 60))
	b.WriteString("\n\n")

	if s.answered != nil {
		b.WriteString(s.renderFeedback(width))
		return b.String()
	}

	item := s.practice.Current()
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Prompt.Render(item.Prompt)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, "Answer: "+s.input.View()))
	return b.String()
}

func (s *FreeScreen) renderFeedback(width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Prompt.Render(s.answered.Prompt)))
	b.WriteString("\n\n")
	if s.pass {
		b.WriteString(theme.Centered(theme.Correct, width, "Correct!"))
	} else {
		b.WriteString(theme.Centered(theme.Incorrect, width, "Not quite"))
		b.WriteString("\n")
		b.WriteString(theme.Centered(theme.Subtitle, width, "Answer: "+s.answered.Answer))
	}
	b.WriteString("\n")
	if s.stats != nil && s.stats.TotalAttempts > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Centered(theme.Hint, width, fmt.Sprintf(
			"%d attempts, %.0f%% failed, priority %.0f",
			s.stats.TotalAttempts, s.stats.FailureRate*100, s.stats.Priority)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(theme.Centered(theme.Hint, width, "Press any key for the next item..."))
	return b.String()
}
