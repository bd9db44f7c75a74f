package learn

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/sensei/internal/content"
	"github.com/abhisek/sensei/internal/quiz"
	"github.com/abhisek/sensei/internal/router"
	"github.com/abhisek/sensei/internal/screen"
	"github.com/abhisek/sensei/internal/screens/quizrun"
	"github.com/abhisek/sensei/internal/session"
	"github.com/abhisek/sensei/internal/ui/components"
	"github.com/abhisek/sensei/internal/ui/layout"
	"github.com/abhisek/sensei/internal/ui/theme"
)

// Answerer answers a learner's free-form question about the concept
// they are studying.
type Answerer interface {
	AnswerQuestion(ctx context.Context, module *content.Module, concept *content.Concept, question string) (string, error)
}

type sessionStartedMsg struct {
	sess *session.Session
	err  error
}

type movedMsg struct {
	atBoundary bool
	err        error
}

type answeredMsg struct {
	question string
	answer   string
	err      error
}

// Model is the concept study screen: it walks the course one concept
// at a time, persists the position on every move, and fields questions
// about the current concept.
type Model struct {
	coord     *session.Coordinator
	tree      *content.Tree
	generator quiz.Generator
	evaluator quiz.Evaluator
	answerer  Answerer

	sess   *session.Session
	notice string
	err    error

	asking     bool
	thinking   bool
	input      components.TextInput
	qaQuestion string
	qaAnswer   string
}

func New(coord *session.Coordinator, tree *content.Tree, gen quiz.Generator, eval quiz.Evaluator, ans Answerer) *Model {
	return &Model{coord: coord, tree: tree, generator: gen, evaluator: eval, answerer: ans}
}

func (m *Model) Init() tea.Cmd {
	return func() tea.Msg {
		sess, err := m.coord.Start(context.Background(), m.tree)
		return sessionStartedMsg{sess: sess, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionStartedMsg:
		m.sess, m.err = msg.sess, msg.err
		return m, nil

	case movedMsg:
		m.err = msg.err
		m.qaQuestion, m.qaAnswer = "", ""
		if msg.atBoundary {
			m.notice = "No more concepts in that direction."
		} else {
			m.notice = ""
		}
		return m, nil

	case answeredMsg:
		m.thinking = false
		if msg.err != nil {
			m.notice = fmt.Sprintf("Couldn't get an answer: %v", msg.err)
			return m, nil
		}
		m.qaQuestion = msg.question
		m.qaAnswer = msg.answer
		m.notice = ""
		return m, nil

	case tea.KeyMsg:
		if m.sess == nil {
			return m, nil
		}
		if m.asking {
			return m.handleAskKey(msg)
		}
		switch msg.String() {
		case "right", "l", "n", "enter":
			return m, m.move(true)
		case "left", "h", "p":
			return m, m.move(false)
		case "a":
			if m.answerer == nil {
				m.notice = "Connect an LLM provider to ask questions."
				return m, nil
			}
			m.asking = true
			m.notice = ""
			m.input = components.NewTextInput("Ask about this concept...", 500)
			return m, nil
		case "q":
			pos := m.sess.Nav.Current()
			qs := quizrun.New(m.coord, m.tree, pos.Module, m.generator, m.evaluator)
			return m, func() tea.Msg { return router.PushScreenMsg{Screen: qs} }
		}
	}
	return m, nil
}

func (m *Model) handleAskKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if msg.String() == "enter" {
		question := strings.TrimSpace(m.input.Value())
		m.asking = false
		if question == "" {
			return m, nil
		}
		m.thinking = true
		return m, m.ask(question)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask answers the question via the LLM and records that asking lowers
// confidence in the current concept.
func (m *Model) ask(question string) tea.Cmd {
	pos := m.sess.Nav.Current()
	module := m.tree.Module(pos.Module)
	concept := m.tree.Concept(pos.Module, pos.Concept)
	return func() tea.Msg {
		ctx := context.Background()
		answer, err := m.answerer.AnswerQuestion(ctx, module, concept, question)
		if err != nil {
			return answeredMsg{question: question, err: err}
		}
		if err := m.coord.RecordQuestionAsked(ctx, m.tree.ID, concept.ID); err != nil {
			return answeredMsg{question: question, err: err}
		}
		return answeredMsg{question: question, answer: answer}
	}
}

func (m *Model) move(forward bool) tea.Cmd {
	return func() tea.Msg {
		var ok bool
		var err error
		if forward {
			_, ok, err = m.coord.Advance(context.Background(), m.sess)
		} else {
			_, ok, err = m.coord.Retreat(context.Background(), m.sess)
		}
		return movedMsg{atBoundary: !ok, err: err}
	}
}

// OnExit closes the learning session when the screen is popped. A
// failed write here would otherwise lose the session row and the day's
// activity, so the error is returned for the shell to surface.
func (m *Model) OnExit() error {
	if m.sess == nil {
		return nil
	}
	err := m.coord.End(context.Background(), m.sess)
	m.sess = nil
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (m *Model) View(width, height int) string {
	if m.err != nil {
		return theme.Incorrect.Render(fmt.Sprintf("  Error: %v", m.err))
	}
	if m.sess == nil {
		return theme.Hint.Render("  Opening course...")
	}

	pos := m.sess.Nav.Current()
	module := m.tree.Module(pos.Module)
	concept := m.tree.Concept(pos.Module, pos.Concept)

	header := theme.Title.Render(fmt.Sprintf("%s — %s", module.Title, concept.Title))
	location := theme.Subtitle.Render(fmt.Sprintf(
		"Module %d/%d · Concept %d/%d",
		pos.Module+1, len(m.tree.Modules),
		pos.Concept+1, len(module.Concepts),
	))

	body := theme.Body.
		Width(min(width-8, 100)).
		Render(concept.Content)

	bar := components.NewProgressBar("Course", m.sess.Nav.ProgressFraction(m.tree), true, min(width-8, 60)).View()

	parts := []string{header, location, "", body, "", bar}

	switch {
	case m.asking:
		parts = append(parts, "", theme.Subtitle.Render("Your question"), m.input.View(),
			theme.Hint.Render("Enter to send · Enter on empty to cancel"))
	case m.thinking:
		parts = append(parts, "", theme.Hint.Render("Thinking..."))
	case m.qaAnswer != "":
		answer := theme.Body.Width(min(width-8, 100)).Render(m.qaAnswer)
		parts = append(parts, "", theme.Subtitle.Render("You asked: "+m.qaQuestion), answer)
	}

	if m.notice != "" {
		parts = append(parts, "", theme.Hint.Render(m.notice))
	}

	card := theme.Card.Width(min(width-4, 110)).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (m *Model) Title() string {
	return m.tree.Title
}

func (m *Model) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←/→", Description: "Previous/Next"},
		{Key: "a", Description: "Ask"},
		{Key: "q", Description: "Quiz this module"},
		{Key: "Esc", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}
