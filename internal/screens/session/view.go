package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/easypractice/internal/ui/components"
	"github.com/abhisek/easypractice/internal/ui/layout"
	"github.com/abhisek/easypractice/internal/ui/theme"
)

// renderQuestion renders the progress line, the prompt and the input.
func (s *SessionScreen) renderQuestion(width int) string {
	item := s.ctrl.Current()
	if item == nil {
		return renderLoading(width)
	}
	p := s.ctrl.Progress()

	var b strings.Builder

	bar := components.NewProgressBar("Progress", p.Completed, p.Total, min(width-4, 60))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n")

	score := lipgloss.NewStyle().Foreground(theme.Success).Render(fmt.Sprintf("✓ %d", p.Pass)) +
		"   " +
		lipgloss.NewStyle().Foreground(theme.Error).Render(fmt.Sprintf("✗ %d", p.Fail))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, score))
	b.WriteString("\n")
	b.WriteString(layout.Divider(width, 60))
	b.WriteString("\n\n")

	prompt := theme.Prompt.Render(item.Prompt)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, prompt))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, "Answer: "+s.input.View()))
	return b.String()
}

// renderFeedback shows whether the answer passed and the expected answer.
func (s *SessionScreen) renderFeedback(width int) string {
	f := s.feedback
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Prompt.Render(f.Item.Prompt)))
	b.WriteString("\n\n")

	if f.Pass {
		b.WriteString(theme.Centered(theme.Correct, width, "Correct!"))
	} else {
		b.WriteString(theme.Centered(theme.Incorrect, width, "Not quite"))
		b.WriteString("\n")
		b.WriteString(theme.Centered(theme.Body, width, fmt.Sprintf("You said: %s", f.Given)))
		b.WriteString("\n")
		b.WriteString(theme.Centered(theme.Subtitle, width, fmt.Sprintf("Answer: %s", f.Item.Answer)))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.Centered(theme.Hint, width, "Press any key to continue..."))
	return b.String()
}

func renderQuitConfirm(width, completed int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(theme.Centered(theme.Body.Bold(true), width, "End session early?"))
	b.WriteString("\n")
	note := fmt.Sprintf("%d answered item(s) will be saved.", completed)
	if completed == 0 {
		note = "Nothing answered yet, so nothing will be saved."
	}
	b.WriteString(theme.Centered(theme.Subtitle, width, note))
	b.WriteString("\n\n")
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Success), width, "[Y] Yes, end session"))
	b.WriteString("\n")
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Primary), width, "[N] No, keep going"))
	return b.String()
}

func renderLoading(width int) string {
	return theme.Centered(theme.Subtitle, width, "\n\n\nPreparing your session...")
}

func renderEmpty(width, coverage int) string {
	return theme.Centered(theme.Subtitle, width, fmt.Sprintf(
		"\n\n\nNothing to practice at %d%% coverage.\n\nPress any key to go back.", coverage))
}

func renderError(width int, errMsg string) string {
	return theme.Centered(lipgloss.NewStyle().Foreground(theme.Error), width,
		fmt.Sprintf("\n\n\nError: %s\n\nPress any key to go back.", errMsg))
}
