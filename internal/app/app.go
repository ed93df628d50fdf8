package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/easypractice/internal/logger"
	"github.com/abhisek/easypractice/internal/router"
	"github.com/abhisek/easypractice/internal/screen"
	"github.com/abhisek/easypractice/internal/screens/home"
	"github.com/abhisek/easypractice/internal/ui/layout"
)

// Options carries the dependencies the TUI needs.
type Options struct {
	Env    screen.Env
	Logger *logger.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	status layout.Status
	log    *logger.Logger
	width  int
	height int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options) AppModel {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return AppModel{
		router: router.New(home.New(opts.Env)),
		status: layout.Status{Language: opts.Env.Language, Coverage: opts.Env.Coverage},
		log:    log,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case home.CoverageChangedMsg:
		m.status.Coverage = msg.Coverage

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, router.Pop
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	header := layout.RenderHeader(active.Title(), m.status, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		if hints := p.KeyHints(); len(hints) > 0 {
			return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
		}
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := newAppModel(opts)
	m.log.Info("tui started", "language", opts.Env.Language, "coverage", opts.Env.Coverage)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		m.log.Error("tui failed", "error", err)
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
