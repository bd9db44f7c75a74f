package quizrun

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/sensei/internal/content"
	"github.com/abhisek/sensei/internal/quiz"
	"github.com/abhisek/sensei/internal/router"
	"github.com/abhisek/sensei/internal/screen"
	"github.com/abhisek/sensei/internal/session"
	"github.com/abhisek/sensei/internal/ui/components"
	"github.com/abhisek/sensei/internal/ui/layout"
	"github.com/abhisek/sensei/internal/ui/theme"
)

type phase int

const (
	phaseLoading phase = iota
	phaseAsking
	phaseGrading
	phaseDone
	phaseFailed
)

type quizReadyMsg struct {
	q   *quiz.Quiz
	err error
}

type gradedMsg struct {
	result *quiz.Result
	err    error
}

// Model runs one quiz attempt: generation, question-by-question
// answering, then grading and persistence.
type Model struct {
	coord     *session.Coordinator
	tree      *content.Tree
	moduleIdx int
	engine    *quiz.Engine

	phase   phase
	current int
	err     error
	result  *quiz.Result

	choice components.MultiChoice
	input  components.TextInput
}

func New(coord *session.Coordinator, tree *content.Tree, moduleIdx int, gen quiz.Generator, eval quiz.Evaluator) *Model {
	return &Model{
		coord:     coord,
		tree:      tree,
		moduleIdx: moduleIdx,
		engine:    quiz.NewEngine(quiz.DefaultConfig(), gen, eval),
	}
}

func (m *Model) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		weak, _ := m.coord.Mastery().WeakConcepts(ctx, m.tree.ID)
		q, err := m.engine.Generate(ctx, m.tree, m.moduleIdx, quiz.DefaultQuestionCount, weak)
		return quizReadyMsg{q: q, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case quizReadyMsg:
		if msg.err != nil {
			m.phase = phaseFailed
			m.err = msg.err
			return m, nil
		}
		m.phase = phaseAsking
		m.prepareQuestion()
		return m, nil

	case gradedMsg:
		if msg.err != nil {
			// The attempt stays open; the learner can retry grading.
			m.phase = phaseFailed
			m.err = msg.err
			return m, nil
		}
		m.phase = phaseDone
		m.result = msg.result
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch m.phase {
	case phaseAsking:
		return m.handleAnswerKey(msg)

	case phaseDone:
		if msg.String() == "enter" {
			m.engine.End()
			return m, func() tea.Msg { return router.PopScreenMsg{} }
		}

	case phaseFailed:
		switch msg.String() {
		case "r":
			if m.engine.State() == quiz.StateActive {
				// Grading failed; try the evaluator again.
				m.phase = phaseGrading
				return m, m.grade()
			}
			m.phase = phaseLoading
			return m, m.Init()
		case "enter":
			return m, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return m, nil
}

func (m *Model) handleAnswerKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	question := &m.engine.ActiveQuiz().Questions[m.current]

	if isChoiceQuestion(question.Type) {
		m.choice, _ = m.choice.Update(msg)
		if m.choice.Submitted {
			_, err := m.engine.SubmitAnswer(question.ID, m.choice.Value())
			if err != nil {
				m.err = err
			}
			return m, m.nextQuestion()
		}
		return m, nil
	}

	if msg.String() == "enter" {
		answer := m.input.Value()
		result, err := m.engine.SubmitAnswer(question.ID, answer)
		if err != nil {
			// Empty answers are rejected; keep the prompt open.
			return m, nil
		}
		m.input.Submit(result.IsCorrect, result.IsPending)
		return m, m.nextQuestion()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// nextQuestion advances past the current question after a short look
// at the marked answer, grading once all are answered.
func (m *Model) nextQuestion() tea.Cmd {
	m.current++
	if m.current >= len(m.engine.ActiveQuiz().Questions) {
		m.phase = phaseGrading
		return m.grade()
	}
	m.prepareQuestion()
	return nil
}

func (m *Model) prepareQuestion() {
	question := &m.engine.ActiveQuiz().Questions[m.current]
	if isChoiceQuestion(question.Type) {
		options := question.Options
		correct := 0
		for i, opt := range options {
			if opt == question.CorrectAnswer {
				correct = i
			}
		}
		if question.Type == quiz.TrueFalse && len(options) == 0 {
			options = []string{"True", "False"}
			if question.CorrectAnswer == "false" || question.CorrectAnswer == "False" {
				correct = 1
			}
		}
		m.choice = components.NewMultiChoice(question.Text, options, correct)
	} else {
		m.input = components.NewTextInput("Type your answer...", 500)
	}
}

func (m *Model) grade() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		result, err := m.engine.ComputeResult(ctx)
		if err != nil {
			return gradedMsg{err: err}
		}
		if err := m.coord.RecordQuizResult(ctx, result, m.engine.ActiveQuiz().Questions, m.engine.Results()); err != nil {
			return gradedMsg{err: err}
		}
		return gradedMsg{result: result}
	}
}

func isChoiceQuestion(t quiz.QuestionType) bool {
	return t == quiz.MultipleChoice || t == quiz.TrueFalse
}

func (m *Model) View(width, height int) string {
	var body string

	switch m.phase {
	case phaseLoading:
		body = theme.Hint.Render("Writing your quiz...")

	case phaseAsking:
		q := m.engine.ActiveQuiz()
		counter := theme.Subtitle.Render(fmt.Sprintf("Question %d of %d", m.current+1, len(q.Questions)))
		var widget string
		if isChoiceQuestion(q.Questions[m.current].Type) {
			widget = m.choice.View()
		} else {
			widget = theme.Body.Bold(true).Render(q.Questions[m.current].Text) + "\n\n" + m.input.View()
		}
		body = lipgloss.JoinVertical(lipgloss.Left, counter, "", widget)

	case phaseGrading:
		body = theme.Hint.Render("Grading your answers...")

	case phaseDone:
		body = m.resultView()

	case phaseFailed:
		body = theme.Incorrect.Render(fmt.Sprintf("Quiz error: %v", m.err)) +
			"\n\n" + theme.Hint.Render("r to retry · Enter to go back")
	}

	card := theme.Card.Width(min(width-4, 100)).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (m *Model) resultView() string {
	r := m.result

	verdict := theme.Correct.Render("Passed!")
	if !r.Passed {
		verdict = theme.Incorrect.Render("Not passed yet")
	}

	lines := []string{
		theme.Title.Render(fmt.Sprintf("%s quiz complete", r.ModuleTitle)),
		"",
		fmt.Sprintf("Score: %.0f%%  (%d/%d correct)   %s", r.Score*100, r.CorrectCount, r.TotalQuestions, verdict),
		"",
		theme.Body.Render(r.Feedback),
	}
	if len(r.WeakConcepts) > 0 {
		lines = append(lines, "", theme.Hint.Render(fmt.Sprintf("Worth revisiting: %d concept(s)", len(r.WeakConcepts))))
	}
	lines = append(lines, "", theme.Hint.Render("Enter to continue"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) Title() string {
	return "Quiz"
}

func (m *Model) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}
