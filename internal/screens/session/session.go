package session

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/easypractice/internal/answer"
	"github.com/abhisek/easypractice/internal/router"
	"github.com/abhisek/easypractice/internal/screen"
	"github.com/abhisek/easypractice/internal/screens/summary"
	sess "github.com/abhisek/easypractice/internal/session"
	"github.com/abhisek/easypractice/internal/store"
	"github.com/abhisek/easypractice/internal/ui/components"
	"github.com/abhisek/easypractice/internal/ui/layout"
)

// sessionStartedMsg is sent once the queue is built.
type sessionStartedMsg struct {
	OK  bool
	Err error
}

// SessionScreen runs one queue-driven session over a set key.
type SessionScreen struct {
	ctrl     *sess.Controller
	key      string
	name     string
	coverage int

	input    components.AnswerInput
	started  bool
	empty    bool
	errMsg   string
	confirm  bool // showing the end-early dialog
	feedback *feedback
}

// feedback describes the answer just submitted.
type feedback struct {
	Item  store.Item
	Given string
	Pass  bool
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.EscapeHandler = (*SessionScreen)(nil)

// New creates a session screen for key at the given coverage.
func New(env screen.Env, key, name string, coverage int) *SessionScreen {
	return newWithController(
		sess.NewController(env.Builder, env.Catalog, env.Stats, env.Sessions),
		key, name, coverage,
	)
}

func newWithController(ctrl *sess.Controller, key, name string, coverage int) *SessionScreen {
	return &SessionScreen{
		ctrl:     ctrl,
		key:      key,
		name:     name,
		coverage: coverage,
		input:    components.NewAnswerInput("Type your answer...", 64),
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	ctrl, key, coverage := s.ctrl, s.key, s.coverage
	return tea.Batch(
		func() tea.Msg {
			ok, err := ctrl.Start(context.Background(), key, coverage)
			return sessionStartedMsg{OK: ok, Err: err}
		},
		s.input.Init(),
	)
}

func (s *SessionScreen) Title() string {
	return s.name
}

// HandlesEscape keeps Esc for the end-early dialog while a session runs.
func (s *SessionScreen) HandlesEscape() bool {
	return s.feedback != nil || s.ctrl.Phase() == sess.PhaseActive
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.confirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	case s.feedback != nil:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	case s.ctrl.Phase() == sess.PhaseActive:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "End early"},
		}
	}
	return nil
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionStartedMsg:
		s.started = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else if !msg.OK {
			s.empty = true
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.ctrl.Phase() == sess.PhaseActive && s.feedback == nil && !s.confirm {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	// Errors and empty queues: any key goes back.
	if s.errMsg != "" || s.empty {
		return s, router.Pop
	}
	if !s.started {
		return s, nil
	}

	if s.confirm {
		switch key {
		case "y", "Y":
			s.confirm = false
			return s.endEarly()
		case "n", "N", "esc":
			s.confirm = false
		}
		return s, nil
	}

	if s.feedback != nil {
		s.feedback = nil
		s.input.Reset()
		if s.ctrl.Phase() == sess.PhaseComplete {
			return s, s.showSummary(s.ctrl.Summary())
		}
		return s, nil
	}

	switch key {
	case "esc":
		s.confirm = true
		return s, nil
	case "enter":
		return s.submit()
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// submit grades the typed answer and records it.
func (s *SessionScreen) submit() (screen.Screen, tea.Cmd) {
	item := s.ctrl.Current()
	given := s.input.Value()
	if item == nil || given == "" {
		return s, nil
	}

	pass := answer.Check(item.Answer, given)
	result := store.ResultFail
	if pass {
		result = store.ResultPass
	}
	if err := s.ctrl.Submit(context.Background(), result); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}

	s.input.Mark(pass)
	s.feedback = &feedback{Item: *item, Given: given, Pass: pass}
	return s, nil
}

func (s *SessionScreen) endEarly() (screen.Screen, tea.Cmd) {
	sum, err := s.ctrl.EndEarly(context.Background())
	if err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	if sum == nil {
		return s, router.Pop
	}
	return s, s.showSummary(sum)
}

func (s *SessionScreen) showSummary(sum *sess.Summary) tea.Cmd {
	if sum == nil {
		return router.Pop
	}
	return router.Replace(summary.New(sum, s.name))
}

func (s *SessionScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case !s.started:
		return renderLoading(width)
	case s.empty:
		return renderEmpty(width, s.coverage)
	case s.confirm:
		return renderQuitConfirm(width, s.ctrl.Progress().Completed)
	case s.feedback != nil:
		return s.renderFeedback(width)
	}
	return s.renderQuestion(width)
}
