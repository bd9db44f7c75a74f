package mastery

import (
	"context"
	"testing"
	"time"

	"github.com/abhisek/sensei/internal/quiz"
	"github.com/abhisek/sensei/internal/store"
)

func openTestTracker(t *testing.T) (*Tracker, store.MasteryRepo) {
	t.Helper()
	s, err := store.Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	repo := s.MasteryRepo()
	return NewTracker(repo), repo
}

func questionsForConcept(conceptID string, ids ...string) []quiz.Question {
	var qs []quiz.Question
	for _, id := range ids {
		qs = append(qs, quiz.Question{ID: id, ConceptID: conceptID, Type: quiz.MultipleChoice})
	}
	return qs
}

func correctResult(questionID string) quiz.AnswerResult {
	return quiz.AnswerResult{QuestionID: questionID, IsCorrect: true}
}

func wrongResult(questionID string) quiz.AnswerResult {
	return quiz.AnswerResult{QuestionID: questionID, IsCorrect: false}
}

func TestOptimisticORAcrossDuplicateConcepts(t *testing.T) {
	// q1 answered correctly, q2 unanswered: concept gets the high
	// level.
	tracker, _ := openTestTracker(t)
	ctx := context.Background()

	qs := questionsForConcept("c1", "q1", "q2")
	results := []quiz.AnswerResult{correctResult("q1")}

	if err := tracker.UpdateFromQuiz(ctx, "course-1", qs, results); err != nil {
		t.Fatalf("update: %v", err)
	}

	rec, err := tracker.Get(ctx, "course-1", "c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec == nil || rec.MasteryLevel != LevelHigh {
		t.Errorf("mastery = %+v, want level %v", rec, LevelHigh)
	}
}

func TestAllWrongOrUnansweredGetsLowLevel(t *testing.T) {
	tracker, _ := openTestTracker(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		results []quiz.AnswerResult
	}{
		{"all wrong", []quiz.AnswerResult{wrongResult("q1"), wrongResult("q2")}},
		{"all unanswered", nil},
		{"wrong and unanswered", []quiz.AnswerResult{wrongResult("q1")}},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courseID := "course-low-" + string(rune('a'+i))
			qs := questionsForConcept("c1", "q1", "q2")
			if err := tracker.UpdateFromQuiz(ctx, courseID, qs, tt.results); err != nil {
				t.Fatalf("update: %v", err)
			}
			rec, err := tracker.Get(ctx, courseID, "c1")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if rec == nil || rec.MasteryLevel != LevelLow {
				t.Errorf("mastery = %+v, want level %v", rec, LevelLow)
			}
		})
	}
}

func TestPendingAnswersAreNotCorrect(t *testing.T) {
	tracker, _ := openTestTracker(t)
	ctx := context.Background()

	qs := questionsForConcept("c1", "q1")
	results := []quiz.AnswerResult{{QuestionID: "q1", IsCorrect: true, IsPending: true}}

	if err := tracker.UpdateFromQuiz(ctx, "course-1", qs, results); err != nil {
		t.Fatalf("update: %v", err)
	}
	rec, _ := tracker.Get(ctx, "course-1", "c1")
	if rec.MasteryLevel != LevelLow {
		t.Errorf("pending counted as correct: level = %v", rec.MasteryLevel)
	}
}

func TestQuestionsWithoutConceptAreSkipped(t *testing.T) {
	tracker, repo := openTestTracker(t)
	ctx := context.Background()

	qs := []quiz.Question{{ID: "q1", ConceptID: ""}}
	if err := tracker.UpdateFromQuiz(ctx, "course-1", qs, []quiz.AnswerResult{correctResult("q1")}); err != nil {
		t.Fatalf("update: %v", err)
	}

	records, err := repo.ByCourse(ctx, "course-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %+v", records)
	}
}

func TestQuizPathDoesNotIncrementQuestionsAsked(t *testing.T) {
	tracker, _ := openTestTracker(t)
	ctx := context.Background()

	qs := questionsForConcept("c1", "q1")
	_ = tracker.UpdateFromQuiz(ctx, "course-1", qs, []quiz.AnswerResult{correctResult("q1")})

	rec, _ := tracker.Get(ctx, "course-1", "c1")
	if rec.QuestionsAsked != 0 {
		t.Errorf("questionsAsked = %d, want 0 on the quiz path", rec.QuestionsAsked)
	}
	if rec.TimesReviewed != 1 {
		t.Errorf("timesReviewed = %d, want 1", rec.TimesReviewed)
	}
}

func TestUpdateFromQuestion(t *testing.T) {
	tracker, _ := openTestTracker(t)
	ctx := context.Background()

	if err := tracker.UpdateFromQuestion(ctx, "course-1", "c1", LevelLow, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := tracker.UpdateFromQuestion(ctx, "course-1", "c1", LevelLow, 1); err != nil {
		t.Fatalf("update: %v", err)
	}

	rec, _ := tracker.Get(ctx, "course-1", "c1")
	if rec.QuestionsAsked != 2 {
		t.Errorf("questionsAsked = %d, want 2", rec.QuestionsAsked)
	}
	if rec.TimesReviewed != 2 {
		t.Errorf("timesReviewed = %d, want 2", rec.TimesReviewed)
	}
	if rec.MasteryLevel != LevelLow {
		t.Errorf("masteryLevel = %v, want %v", rec.MasteryLevel, LevelLow)
	}

	if err := tracker.UpdateFromQuestion(ctx, "course-1", "", LevelLow, 1); err == nil {
		t.Error("expected error for empty concept id")
	}
}

func TestMasteryOverwritesNotAverages(t *testing.T) {
	tracker, _ := openTestTracker(t)
	ctx := context.Background()

	qs := questionsForConcept("c1", "q1")
	_ = tracker.UpdateFromQuiz(ctx, "course-1", qs, nil) // low
	_ = tracker.UpdateFromQuiz(ctx, "course-1", qs, []quiz.AnswerResult{correctResult("q1")})

	rec, _ := tracker.Get(ctx, "course-1", "c1")
	if rec.MasteryLevel != LevelHigh {
		t.Errorf("masteryLevel = %v, want overwrite to %v", rec.MasteryLevel, LevelHigh)
	}
}

func TestWeakConcepts(t *testing.T) {
	tracker, _ := openTestTracker(t)
	ctx := context.Background()

	_ = tracker.UpdateFromQuestion(ctx, "course-1", "shaky", LevelLow, 0)
	_ = tracker.UpdateFromQuestion(ctx, "course-1", "solid", LevelHigh, 0)

	weak, err := tracker.WeakConcepts(ctx, "course-1")
	if err != nil {
		t.Fatalf("weak concepts: %v", err)
	}
	if len(weak) != 1 || weak[0] != "shaky" {
		t.Errorf("weak = %v, want [shaky]", weak)
	}
}

func TestClockInjection(t *testing.T) {
	tracker, _ := openTestTracker(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker.WithClock(func() time.Time { return fixed })
	ctx := context.Background()

	_ = tracker.UpdateFromQuestion(ctx, "course-1", "c1", LevelLow, 0)
	rec, _ := tracker.Get(ctx, "course-1", "c1")
	if !rec.LastReviewedAt.Equal(fixed) {
		t.Errorf("lastReviewedAt = %v, want %v", rec.LastReviewedAt, fixed)
	}
}
