package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/sensei/internal/content"
	"github.com/abhisek/sensei/internal/quiz"
	"github.com/abhisek/sensei/internal/router"
	"github.com/abhisek/sensei/internal/screens/home"
	"github.com/abhisek/sensei/internal/screens/learn"
	"github.com/abhisek/sensei/internal/session"
	"github.com/abhisek/sensei/internal/store"
	"github.com/abhisek/sensei/internal/ui/layout"
)

// Deps are the wired collaborators the TUI runs on.
type Deps struct {
	Store     *store.Store
	Library   *content.Library
	Coord     *session.Coordinator
	Generator quiz.Generator
	Evaluator quiz.Evaluator
	Answerer  learn.Answerer
}

// exitHandler is implemented by screens that need cleanup (ending a
// learning session) before being popped. A non-nil error means durable
// state was not saved; it is reported on stderr once the TUI exits.
type exitHandler interface {
	OnExit() error
}

// appModel is the root Bubble Tea model: it owns the router, the
// window size, and the header/footer frame.
type appModel struct {
	router  *router.Router
	deps    Deps
	width   int
	height  int
	exitErr error
}

func newAppModel(deps Deps) appModel {
	homeScreen := home.New(deps.Library, deps.Store, deps.Coord, deps.Generator, deps.Evaluator, deps.Answerer)
	return appModel{
		router: router.New(homeScreen),
		deps:   deps,
	}
}

func (m appModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if h, ok := m.router.Active().(exitHandler); ok {
				if err := h.OnExit(); err != nil {
					m.exitErr = err
				}
			}
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				if h, ok := m.router.Active().(exitHandler); ok {
					if err := h.OnExit(); err != nil {
						m.exitErr = err
					}
				}
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m appModel) View() tea.View {
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
	title := ""
	if active != nil {
		title = active.Title()
	}

	streak := 0
	if s, err := m.deps.Coord.Streak().Current(context.Background()); err == nil && s != nil {
		streak = s.CurrentStreak
	}
	header := layout.RenderHeader(title, streak, m.width)

	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if hp, ok := active.(interface{ KeyHints() []layout.KeyHint }); ok {
		hints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		hints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the TUI.
func Run(deps Deps) error {
	p := tea.NewProgram(newAppModel(deps))
	final, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	// Cleanup failures from popped screens are held until the alt
	// screen is gone, where a warning is actually readable.
	if m, ok := final.(appModel); ok && m.exitErr != nil {
		fmt.Fprintln(os.Stderr, "warning:", m.exitErr)
	}
	return nil
}
