package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/easypractice/internal/router"
	"github.com/abhisek/easypractice/internal/screen"
	"github.com/abhisek/easypractice/internal/session"
	"github.com/abhisek/easypractice/internal/ui/layout"
	"github.com/abhisek/easypractice/internal/ui/theme"
)

// SummaryScreen displays the result of a finished session.
type SummaryScreen struct {
	summary *session.Summary
	name    string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.EscapeHandler = (*SummaryScreen)(nil)

// New creates a new SummaryScreen for the set called name.
func New(summary *session.Summary, name string) *SummaryScreen {
	return &SummaryScreen{summary: summary, name: name}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

// HandlesEscape makes Esc return home rather than pop one level.
func (s *SummaryScreen) HandlesEscape() bool {
	return true
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

// FormatDuration renders whole seconds as m:ss.
func FormatDuration(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}

	var b strings.Builder

	heading := "Session complete!"
	if sum.EndedEarly {
		heading = "Session ended early"
	}
	b.WriteString(theme.Centered(theme.Title, width, heading))
	b.WriteString("\n")
	if s.name != "" {
		b.WriteString(theme.Centered(theme.Subtitle, width, s.name))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(theme.Centered(theme.Subtitle, width,
		"Duration: "+FormatDuration(int(sum.Duration.Seconds()))))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Items: %d        Passed: %d        Failed: %d",
		sum.Completed, sum.Pass, sum.Fail)
	b.WriteString(theme.Centered(theme.Body, width, statsLine))
	b.WriteString("\n\n")
	b.WriteString(layout.Divider(width, 50))
	b.WriteString("\n\n")

	b.WriteString(theme.Centered(accuracyStyle(sum.Accuracy), width, fmt.Sprintf("Accuracy %d%%", sum.Accuracy)))
	b.WriteString("\n")

	if sum.Record == nil {
		b.WriteString("\n")
		b.WriteString(theme.Centered(theme.Warning, width, "This session was not saved to history."))
	}
	return b.String()
}

func accuracyStyle(pct int) lipgloss.Style {
	switch {
	case pct >= 80:
		return theme.Correct
	case pct >= 50:
		return theme.Warning
	default:
		return theme.Incorrect
	}
}
