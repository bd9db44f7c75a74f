package streak

import (
	"context"
	"testing"
	"time"

	"github.com/abhisek/sensei/internal/store"
)

func openTestTracker(t *testing.T) *Tracker {
	t.Helper()
	s, err := store.Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewTracker(s.ActivityRepo())
}

func fixedClock(day time.Time) func() time.Time {
	return func() time.Time { return day }
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 30, 0, 0, time.UTC)
}

func TestFirstActivityStartsStreak(t *testing.T) {
	tracker := openTestTracker(t)
	tracker.WithClock(fixedClock(day(2026, 3, 1)))
	ctx := context.Background()

	if err := tracker.RecordActivity(ctx, 10, 1, 0); err != nil {
		t.Fatalf("record: %v", err)
	}

	streak, err := tracker.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if streak.CurrentStreak != 1 || streak.LongestStreak != 1 {
		t.Errorf("streak = %+v, want 1/1", streak)
	}
	if streak.LastActivityDate == nil {
		t.Fatal("last activity date not set")
	}
}

func TestSameDayDoesNotDoubleCount(t *testing.T) {
	tracker := openTestTracker(t)
	tracker.WithClock(fixedClock(day(2026, 3, 1)))
	ctx := context.Background()

	_ = tracker.RecordActivity(ctx, 10, 1, 0)
	if err := tracker.RecordActivity(ctx, 5, 0, 1); err != nil {
		t.Fatalf("record: %v", err)
	}

	streak, _ := tracker.Current(ctx)
	if streak.CurrentStreak != 1 {
		t.Errorf("current streak = %d, want 1 after two same-day sessions", streak.CurrentStreak)
	}

	// The activity amounts still accumulate.
	a, err := tracker.ActivityOn(ctx, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	if a == nil || a.MinutesLearned != 15 || a.ConceptsCompleted != 1 || a.QuizzesTaken != 1 {
		t.Errorf("activity = %+v, want additive totals", a)
	}
}

func TestConsecutiveDaysExtendStreak(t *testing.T) {
	tracker := openTestTracker(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		tracker.WithClock(fixedClock(day(2026, 3, 1+i)))
		if err := tracker.RecordActivity(ctx, 10, 0, 0); err != nil {
			t.Fatalf("record day %d: %v", i, err)
		}
	}

	streak, _ := tracker.Current(ctx)
	if streak.CurrentStreak != 3 || streak.LongestStreak != 3 {
		t.Errorf("streak = %+v, want 3/3", streak)
	}
}

func TestGapResetsCurrentKeepsLongest(t *testing.T) {
	tracker := openTestTracker(t)
	ctx := context.Background()

	tracker.WithClock(fixedClock(day(2026, 3, 1)))
	_ = tracker.RecordActivity(ctx, 10, 0, 0)
	tracker.WithClock(fixedClock(day(2026, 3, 2)))
	_ = tracker.RecordActivity(ctx, 10, 0, 0)

	// Two-day gap.
	tracker.WithClock(fixedClock(day(2026, 3, 5)))
	if err := tracker.RecordActivity(ctx, 10, 0, 0); err != nil {
		t.Fatalf("record: %v", err)
	}

	streak, _ := tracker.Current(ctx)
	if streak.CurrentStreak != 1 {
		t.Errorf("current streak = %d, want reset to 1", streak.CurrentStreak)
	}
	if streak.LongestStreak != 2 {
		t.Errorf("longest streak = %d, want 2 preserved", streak.LongestStreak)
	}
}

func TestFutureLastActivityResets(t *testing.T) {
	tracker := openTestTracker(t)
	ctx := context.Background()

	// Record with a clock ahead of "real" time, then roll back.
	tracker.WithClock(fixedClock(day(2026, 3, 10)))
	_ = tracker.RecordActivity(ctx, 10, 0, 0)

	tracker.WithClock(fixedClock(day(2026, 3, 5)))
	if err := tracker.RecordActivity(ctx, 10, 0, 0); err != nil {
		t.Fatalf("record: %v", err)
	}

	streak, _ := tracker.Current(ctx)
	if streak.CurrentStreak != 1 {
		t.Errorf("current streak = %d, want reset to 1 on clock rollback", streak.CurrentStreak)
	}
}

func TestCurrentReturnsStoredCounters(t *testing.T) {
	tracker := openTestTracker(t)
	ctx := context.Background()

	tracker.WithClock(fixedClock(day(2026, 3, 1)))
	_ = tracker.RecordActivity(ctx, 10, 0, 0)
	tracker.WithClock(fixedClock(day(2026, 3, 2)))
	_ = tracker.RecordActivity(ctx, 10, 0, 0)

	// A lapsed streak reads back unchanged; reads never rewrite or
	// reinterpret the stored row, so every view reports the same count.
	tracker.WithClock(fixedClock(day(2026, 3, 9)))
	streak, err := tracker.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if streak.CurrentStreak != 2 || streak.LongestStreak != 2 {
		t.Errorf("streak = %+v, want stored 2/2 after lapse", streak)
	}

	// The lapse is applied by the next recorded activity, not by reads.
	if err := tracker.RecordActivity(ctx, 10, 0, 0); err != nil {
		t.Fatalf("record: %v", err)
	}
	streak, _ = tracker.Current(ctx)
	if streak.CurrentStreak != 1 || streak.LongestStreak != 2 {
		t.Errorf("streak = %+v, want 1/2 after activity past a gap", streak)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	tracker := openTestTracker(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		tracker.WithClock(fixedClock(day(2026, 3, 1+i)))
		_ = tracker.RecordActivity(ctx, 10, 0, 0)
	}

	hist, err := tracker.History(ctx, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("got %d rows, want 2", len(hist))
	}
	if !hist[0].Date.After(hist[1].Date) {
		t.Error("history not newest first")
	}
}
