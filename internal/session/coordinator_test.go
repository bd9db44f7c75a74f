package session

import (
	"context"
	"testing"
	"time"

	"github.com/abhisek/sensei/internal/content"
	"github.com/abhisek/sensei/internal/quiz"
	"github.com/abhisek/sensei/internal/store"
)

func testTree() *content.Tree {
	return &content.Tree{
		ID:    "course-1",
		Title: "Intro to Algebra",
		Modules: []content.Module{
			{ID: "m1", Title: "Basics", Concepts: []content.Concept{
				{ID: "c1", Title: "Variables"},
				{ID: "c2", Title: "Expressions"},
			}},
			{ID: "m2", Title: "Equations", Concepts: []content.Concept{
				{ID: "c3", Title: "Linear equations"},
			}},
		},
	}
}

func openTestCoordinator(t *testing.T) (*Coordinator, *store.Store) {
	t.Helper()
	s, err := store.Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s), s
}

func TestStartFreshCourseWritesProgress(t *testing.T) {
	c, s := openTestCoordinator(t)
	ctx := context.Background()

	sess, err := c.Start(ctx, testTree())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if pos := sess.Nav.Current(); pos.Module != 0 || pos.Concept != 0 {
		t.Errorf("fresh start position = %v, want 0:0", pos)
	}

	p, err := s.ProgressRepo().Get(ctx, "course-1")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if p == nil {
		t.Fatal("expected progress row after start")
	}
	if p.TotalConcepts != 3 || p.TotalModules != 2 {
		t.Errorf("progress totals = %+v", p)
	}
}

func TestResumeFromStoredPosition(t *testing.T) {
	c, s := openTestCoordinator(t)
	ctx := context.Background()

	_ = s.ProgressRepo().Save(ctx, &store.Progress{
		CourseID: "course-1", ModuleIdx: 1, ConceptIdx: 0,
		LastAccessed: time.Now(),
	})

	sess, err := c.Start(ctx, testTree())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if pos := sess.Nav.Current(); pos.Module != 1 || pos.Concept != 0 {
		t.Errorf("resumed position = %v, want 1:0", pos)
	}
}

func TestResumeClampsCorruptPosition(t *testing.T) {
	c, s := openTestCoordinator(t)
	ctx := context.Background()

	_ = s.ProgressRepo().Save(ctx, &store.Progress{
		CourseID: "course-1", ModuleIdx: 9, ConceptIdx: 9,
		LastAccessed: time.Now(),
	})

	sess, err := c.Start(ctx, testTree())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if pos := sess.Nav.Current(); pos.Module != 0 || pos.Concept != 0 {
		t.Errorf("clamped position = %v, want 0:0", pos)
	}
}

func TestAdvancePersistsPosition(t *testing.T) {
	c, s := openTestCoordinator(t)
	ctx := context.Background()

	sess, _ := c.Start(ctx, testTree())
	pos, ok, err := c.Advance(ctx, sess)
	if err != nil || !ok {
		t.Fatalf("advance: ok=%v err=%v", ok, err)
	}
	if pos.Module != 0 || pos.Concept != 1 {
		t.Errorf("position = %v, want 0:1", pos)
	}

	p, _ := s.ProgressRepo().Get(ctx, "course-1")
	if p.ModuleIdx != 0 || p.ConceptIdx != 1 {
		t.Errorf("stored position = %d:%d, want 0:1", p.ModuleIdx, p.ConceptIdx)
	}
	if p.ConceptsCompleted != 2 {
		t.Errorf("concepts completed = %d, want 2", p.ConceptsCompleted)
	}
}

func TestRetreatPersistsPosition(t *testing.T) {
	c, s := openTestCoordinator(t)
	ctx := context.Background()

	sess, _ := c.Start(ctx, testTree())
	_, _, _ = c.Advance(ctx, sess)
	pos, ok, err := c.Retreat(ctx, sess)
	if err != nil || !ok {
		t.Fatalf("retreat: ok=%v err=%v", ok, err)
	}
	if pos.Module != 0 || pos.Concept != 0 {
		t.Errorf("position = %v, want 0:0", pos)
	}

	p, _ := s.ProgressRepo().Get(ctx, "course-1")
	if p.ModuleIdx != 0 || p.ConceptIdx != 0 {
		t.Errorf("stored position = %d:%d, want 0:0", p.ModuleIdx, p.ConceptIdx)
	}
}

func TestEndAccumulatesTimeAndActivity(t *testing.T) {
	c, s := openTestCoordinator(t)
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := start
	c.WithClock(func() time.Time { return clock })

	sess, err := c.Start(ctx, testTree())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	_, _, _ = c.Advance(ctx, sess)

	clock = start.Add(30 * time.Minute)
	if err := c.End(ctx, sess); err != nil {
		t.Fatalf("end: %v", err)
	}

	p, _ := s.ProgressRepo().Get(ctx, "course-1")
	if p.TimeSpentMinutes != 30 {
		t.Errorf("time spent = %d, want 30", p.TimeSpentMinutes)
	}

	streak, err := c.Streak().Current(ctx)
	if err != nil {
		t.Fatalf("streak: %v", err)
	}
	if streak.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1 after a session", streak.CurrentStreak)
	}

	sessions, _ := s.SessionRepo().ByCourse(ctx, "course-1", 10)
	if len(sessions) != 1 {
		t.Fatalf("got %d session rows, want 1", len(sessions))
	}
	if sessions[0].DurationMinutes != 30 || sessions[0].ConceptsCovered != 1 {
		t.Errorf("session row = %+v", sessions[0])
	}
	if sessions[0].EndedAt == nil {
		t.Error("session not closed")
	}
}

func TestEndSecondSessionAddsTime(t *testing.T) {
	c, s := openTestCoordinator(t)
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := start
	c.WithClock(func() time.Time { return clock })

	sess, _ := c.Start(ctx, testTree())
	clock = start.Add(20 * time.Minute)
	_ = c.End(ctx, sess)

	sess, _ = c.Start(ctx, testTree())
	clock = clock.Add(10 * time.Minute)
	_ = c.End(ctx, sess)

	p, _ := s.ProgressRepo().Get(ctx, "course-1")
	if p.TimeSpentMinutes != 30 {
		t.Errorf("time spent = %d, want 30 across two sessions", p.TimeSpentMinutes)
	}
}

func TestRecordQuizResult(t *testing.T) {
	c, s := openTestCoordinator(t)
	ctx := context.Background()

	questions := []quiz.Question{
		{ID: "q1", ConceptID: "c1", Type: quiz.MultipleChoice},
		{ID: "q2", ConceptID: "c2", Type: quiz.MultipleChoice},
	}
	answers := []quiz.AnswerResult{
		{QuestionID: "q1", IsCorrect: true},
		{QuestionID: "q2", IsCorrect: false},
	}
	result := &quiz.Result{
		QuizID: "quiz-1", CourseID: "course-1", ModuleID: "m1",
		ModuleTitle: "Basics", Score: 0.5, CorrectCount: 1,
		TotalQuestions: 2, WeakConcepts: []string{"c2"},
		Feedback: "keep going", CompletedAt: time.Now().UTC(),
	}

	if err := c.RecordQuizResult(ctx, result, questions, answers); err != nil {
		t.Fatalf("record: %v", err)
	}

	hist, _ := s.QuizResultRepo().ByCourse(ctx, "course-1")
	if len(hist) != 1 || hist[0].Score != 0.5 {
		t.Errorf("history = %+v", hist)
	}

	m1, _ := c.Mastery().Get(ctx, "course-1", "c1")
	m2, _ := c.Mastery().Get(ctx, "course-1", "c2")
	if m1 == nil || m1.MasteryLevel != 0.8 {
		t.Errorf("c1 mastery = %+v, want 0.8", m1)
	}
	if m2 == nil || m2.MasteryLevel != 0.3 {
		t.Errorf("c2 mastery = %+v, want 0.3", m2)
	}

	a, _ := c.Streak().ActivityOn(ctx, truncateDay(time.Now()))
	if a == nil || a.QuizzesTaken != 1 {
		t.Errorf("activity = %+v, want one quiz taken", a)
	}
}

func TestRecordQuestionAsked(t *testing.T) {
	c, _ := openTestCoordinator(t)
	ctx := context.Background()

	if err := c.RecordQuestionAsked(ctx, "course-1", "c1"); err != nil {
		t.Fatalf("record: %v", err)
	}

	rec, err := c.Mastery().Get(ctx, "course-1", "c1")
	if err != nil {
		t.Fatalf("get mastery: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a mastery record")
	}
	if rec.MasteryLevel != 0.3 {
		t.Errorf("mastery = %v, want 0.3 after asking", rec.MasteryLevel)
	}
	if rec.QuestionsAsked != 1 || rec.TimesReviewed != 1 {
		t.Errorf("counters = asked %d / reviewed %d, want 1/1", rec.QuestionsAsked, rec.TimesReviewed)
	}

	// Asking again keeps counting; the level stays low.
	_ = c.RecordQuestionAsked(ctx, "course-1", "c1")
	rec, _ = c.Mastery().Get(ctx, "course-1", "c1")
	if rec.QuestionsAsked != 2 || rec.MasteryLevel != 0.3 {
		t.Errorf("after second ask = %+v, want asked 2 at 0.3", rec)
	}
}

func TestRemoveCourseCascades(t *testing.T) {
	c, s := openTestCoordinator(t)
	ctx := context.Background()

	sess, _ := c.Start(ctx, testTree())
	_ = c.End(ctx, sess)
	_ = c.RecordQuizResult(ctx, &quiz.Result{
		QuizID: "quiz-1", CourseID: "course-1", ModuleID: "m1",
		TotalQuestions: 1, CompletedAt: time.Now().UTC(),
	}, []quiz.Question{{ID: "q1", ConceptID: "c1"}}, nil)

	if err := c.RemoveCourse(ctx, "course-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if p, _ := s.ProgressRepo().Get(ctx, "course-1"); p != nil {
		t.Error("progress survived removal")
	}
	if hist, _ := s.QuizResultRepo().ByCourse(ctx, "course-1"); len(hist) != 0 {
		t.Error("quiz history survived removal")
	}
	if recs, _ := s.MasteryRepo().ByCourse(ctx, "course-1"); len(recs) != 0 {
		t.Error("mastery survived removal")
	}
	if sessions, _ := s.SessionRepo().ByCourse(ctx, "course-1", 10); len(sessions) != 0 {
		t.Error("sessions survived removal")
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
