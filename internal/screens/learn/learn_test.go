package learn

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/sensei/internal/content"
	"github.com/abhisek/sensei/internal/quiz"
	"github.com/abhisek/sensei/internal/session"
	"github.com/abhisek/sensei/internal/store"
)

type cannedAnswerer struct {
	answer string
	err    error
	asked  string
}

func (a *cannedAnswerer) AnswerQuestion(_ context.Context, _ *content.Module, _ *content.Concept, question string) (string, error) {
	a.asked = question
	return a.answer, a.err
}

func testTree() *content.Tree {
	return &content.Tree{
		ID:    "course-learn",
		Title: "Intro to Algebra",
		Modules: []content.Module{
			{ID: "m1", Title: "Basics", Concepts: []content.Concept{
				{ID: "c1", Title: "Variables", Content: "A variable names a value."},
				{ID: "c2", Title: "Expressions"},
			}},
		},
	}
}

func openTestModel(t *testing.T, ans Answerer) (*Model, *store.Store) {
	t.Helper()
	s, err := store.Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	m := New(session.New(s), testTree(), quiz.NewFallbackGenerator(), nil, ans)
	m.Update(m.Init()())
	if m.sess == nil {
		t.Fatalf("session not started: %v", m.err)
	}
	return m, s
}

func TestAskAnswersAndLowersMastery(t *testing.T) {
	ans := &cannedAnswerer{answer: "It binds a name to a value."}
	m, s := openTestModel(t, ans)
	ctx := context.Background()

	msg := m.ask("What does a variable do?")()
	am, ok := msg.(answeredMsg)
	if !ok {
		t.Fatalf("got %T, want answeredMsg", msg)
	}
	if am.err != nil {
		t.Fatalf("ask: %v", am.err)
	}
	if ans.asked != "What does a variable do?" {
		t.Errorf("answerer got question %q", ans.asked)
	}

	m.Update(am)
	if m.qaAnswer != "It binds a name to a value." {
		t.Errorf("answer not shown, qaAnswer = %q", m.qaAnswer)
	}

	// Asking marks the current concept shaky.
	rec, err := s.MasteryRepo().Get(ctx, "course-learn", "c1")
	if err != nil {
		t.Fatalf("get mastery: %v", err)
	}
	if rec == nil || rec.MasteryLevel != 0.3 || rec.QuestionsAsked != 1 {
		t.Errorf("mastery = %+v, want level 0.3 with one question asked", rec)
	}
}

func TestAskFailureShowsNotice(t *testing.T) {
	ans := &cannedAnswerer{err: errors.New("model unreachable")}
	m, _ := openTestModel(t, ans)

	m.Update(m.ask("why?")())
	if !strings.Contains(m.notice, "model unreachable") {
		t.Errorf("notice = %q, want the failure surfaced", m.notice)
	}
	if m.qaAnswer != "" {
		t.Errorf("qaAnswer = %q, want empty on failure", m.qaAnswer)
	}
}

func TestMoveClearsAnswer(t *testing.T) {
	ans := &cannedAnswerer{answer: "yes"}
	m, _ := openTestModel(t, ans)

	m.Update(m.ask("?")())
	m.Update(m.move(true)())
	if m.qaAnswer != "" || m.qaQuestion != "" {
		t.Error("answer for the previous concept survived a move")
	}
}

func TestOnExitReturnsSaveError(t *testing.T) {
	m, s := openTestModel(t, nil)

	// With the store gone, ending the session cannot persist anything.
	s.Close()
	if err := m.OnExit(); err == nil {
		t.Error("expected an error when the session cannot be saved")
	}
	if m.sess != nil {
		t.Error("session not cleared after exit")
	}
}

func TestOnExitWithoutSessionIsNil(t *testing.T) {
	m := New(nil, testTree(), nil, nil, nil)
	if err := m.OnExit(); err != nil {
		t.Errorf("OnExit on idle screen = %v, want nil", err)
	}
}
