package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/easypractice/internal/ui/theme"
)

// AnswerInput wraps bubbles/textinput and remembers whether the last
// submitted value was accepted.
type AnswerInput struct {
	Model     textinput.Model
	submitted bool
	valid     bool
}

// NewAnswerInput creates a focused input limited to limit characters.
func NewAnswerInput(placeholder string, limit int) AnswerInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if limit > 0 {
		ti.CharLimit = limit
	}
	ti.Focus()
	return AnswerInput{Model: ti}
}

// Init returns the initial command.
func (a AnswerInput) Init() tea.Cmd {
	return a.Model.Focus()
}

// Update forwards messages until the value is submitted.
func (a AnswerInput) Update(msg tea.Msg) (AnswerInput, tea.Cmd) {
	if a.submitted {
		return a, nil
	}
	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}

// View renders the input with a mark once submitted.
func (a AnswerInput) View() string {
	view := a.Model.View()
	if a.submitted {
		if a.valid {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

// Value returns the current input value.
func (a AnswerInput) Value() string {
	return a.Model.Value()
}

// Submitted reports whether Mark was called since the last Reset.
func (a AnswerInput) Submitted() bool {
	return a.submitted
}

// Mark freezes the input and records whether the answer was accepted.
func (a *AnswerInput) Mark(valid bool) {
	a.submitted = true
	a.valid = valid
}

// Reset clears the value and unfreezes the input.
func (a *AnswerInput) Reset() {
	a.Model.SetValue("")
	a.submitted = false
	a.valid = false
}
