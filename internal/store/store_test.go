package store

import (
	"context"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db handle")
	}
}

func TestProgressRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	got, err := repo.Get(ctx, "course-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil progress before save")
	}

	p := &Progress{
		CourseID:          "course-1",
		Completion:        0.5,
		ModulesCompleted:  1,
		TotalModules:      2,
		ConceptsCompleted: 3,
		TotalConcepts:     6,
		TimeSpentMinutes:  42,
		ModuleIdx:         1,
		ConceptIdx:        0,
		LastAccessed:      time.Now().UTC().Truncate(time.Second),
	}
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err = repo.Get(ctx, "course-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Completion != 0.5 || got.ModuleIdx != 1 || got.TimeSpentMinutes != 42 {
		t.Errorf("round trip mismatch: %+v", got)
	}

	// Upsert overwrites in place.
	p.Completion = 1.0
	p.ConceptIdx = 2
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("resave: %v", err)
	}
	got, _ = repo.Get(ctx, "course-1")
	if got.Completion != 1.0 || got.ConceptIdx != 2 {
		t.Errorf("upsert did not overwrite: %+v", got)
	}

	if err := repo.Delete(ctx, "course-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = repo.Get(ctx, "course-1")
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestQuizResultHistoryOrder(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuizResultRepo()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := repo.Append(ctx, &QuizResultRecord{
			QuizID:         "quiz",
			CourseID:       "course-1",
			ModuleID:       "mod",
			Score:          float64(i) / 10,
			TotalQuestions: 5,
			WeakConcepts:   []string{"c1"},
			CompletedAt:    base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	hist, err := repo.ByCourse(ctx, "course-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 3 {
		t.Fatalf("got %d rows, want 3", len(hist))
	}
	if !hist[0].CompletedAt.After(hist[1].CompletedAt) {
		t.Error("history not newest first")
	}
	if len(hist[0].WeakConcepts) != 1 || hist[0].WeakConcepts[0] != "c1" {
		t.Errorf("weak concepts = %v", hist[0].WeakConcepts)
	}

	recent, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("recent limit ignored: got %d rows", len(recent))
	}

	if err := repo.DeleteByCourse(ctx, "course-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	hist, _ = repo.ByCourse(ctx, "course-1")
	if len(hist) != 0 {
		t.Error("expected empty history after delete")
	}
}

func TestMasteryApplyAccumulates(t *testing.T) {
	s := openTestStore(t)
	repo := s.MasteryRepo()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	rec, err := repo.Get(ctx, "course-1", "c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec != nil {
		t.Fatal("expected absent mastery before apply")
	}

	if err := repo.Apply(ctx, "course-1", "c1", 0.3, 1, now); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := repo.Apply(ctx, "course-1", "c1", 0.8, 0, now.Add(time.Minute)); err != nil {
		t.Fatalf("apply: %v", err)
	}

	rec, err = repo.Get(ctx, "course-1", "c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.MasteryLevel != 0.8 {
		t.Errorf("mastery level = %v, want 0.8 (overwrite, not blend)", rec.MasteryLevel)
	}
	if rec.QuestionsAsked != 1 {
		t.Errorf("questions asked = %d, want 1 (additive)", rec.QuestionsAsked)
	}
	if rec.TimesReviewed != 2 {
		t.Errorf("times reviewed = %d, want 2 (one per apply)", rec.TimesReviewed)
	}
}

func TestActivityUpsertAdds(t *testing.T) {
	s := openTestStore(t)
	repo := s.ActivityRepo()
	ctx := context.Background()
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if err := repo.AddActivity(ctx, day, 10, 1, 0); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := repo.AddActivity(ctx, day, 5, 0, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	a, err := repo.GetActivity(ctx, day)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if a.MinutesLearned != 15 || a.ConceptsCompleted != 1 || a.QuizzesTaken != 1 {
		t.Errorf("activity = %+v, want additive accumulation", a)
	}
}

func TestActivityHistoryNewestFirst(t *testing.T) {
	s := openTestStore(t)
	repo := s.ActivityRepo()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		day := time.Date(2026, 3, 1+i, 0, 0, 0, 0, time.UTC)
		if err := repo.AddActivity(ctx, day, 10, 0, 0); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	hist, err := repo.History(ctx, 3)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 3 {
		t.Fatalf("got %d rows, want 3", len(hist))
	}
	if !hist[0].Date.After(hist[1].Date) || !hist[1].Date.After(hist[2].Date) {
		t.Error("history not newest first")
	}
}

func TestStreakSingleton(t *testing.T) {
	s := openTestStore(t)
	repo := s.ActivityRepo()
	ctx := context.Background()

	streak, err := repo.GetStreak(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if streak.CurrentStreak != 0 || streak.LongestStreak != 0 || streak.LastActivityDate != nil {
		t.Errorf("initial streak = %+v, want zeros/nil", streak)
	}

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	streak.CurrentStreak = 3
	streak.LongestStreak = 7
	streak.LastActivityDate = &day
	if err := repo.SaveStreak(ctx, streak); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.GetStreak(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentStreak != 3 || got.LongestStreak != 7 {
		t.Errorf("streak = %+v", got)
	}
	if got.LastActivityDate == nil || !got.LastActivityDate.Equal(day) {
		t.Errorf("last activity date = %v, want %v", got.LastActivityDate, day)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	id, err := repo.Start(ctx, "course-1", start)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := repo.End(ctx, id, start.Add(25*time.Minute), 25, 4); err != nil {
		t.Fatalf("end: %v", err)
	}

	sessions, err := repo.ByCourse(ctx, "course-1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	rec := sessions[0]
	if rec.DurationMinutes != 25 || rec.ConceptsCovered != 4 || rec.EndedAt == nil {
		t.Errorf("session = %+v", rec)
	}
}

func TestLLMEventRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider:    "mock",
		Model:       "mock",
		Purpose:     "quiz-gen",
		InputTokens: 100,
		Success:     true,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 10})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 || events[0].Purpose != "quiz-gen" || !events[0].Success {
		t.Errorf("events = %+v", events)
	}

	e, err := repo.GetLLMEvent(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || e.InputTokens != 100 {
		t.Errorf("event = %+v", e)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown event id")
	}
}

func TestLearningStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_ = s.ProgressRepo().Save(ctx, &Progress{
		CourseID: "course-1", TotalConcepts: 10,
		TimeSpentMinutes: 90, LastAccessed: now,
	})
	_ = s.MasteryRepo().Apply(ctx, "course-1", "c1", 0.8, 0, now)
	_ = s.MasteryRepo().Apply(ctx, "course-1", "c2", 0.3, 0, now)

	stats, err := s.LearningStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalCourses != 1 || stats.TotalConcepts != 10 {
		t.Errorf("course stats = %+v", stats)
	}
	if stats.ConceptsMastered != 1 {
		t.Errorf("concepts mastered = %d, want 1 (only >= 0.7 counts)", stats.ConceptsMastered)
	}
	if stats.HoursLearned != 1.5 {
		t.Errorf("hours learned = %v, want 1.5", stats.HoursLearned)
	}
}
