package streak

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/sensei/internal/store"
)

// Tracker maintains the calendar-day learning streak and the daily
// activity log behind it. Streak arithmetic works on local calendar
// days, not 24-hour windows: two sessions five minutes apart across
// midnight count as consecutive days.
type Tracker struct {
	repo store.ActivityRepo
	now  func() time.Time
}

func NewTracker(repo store.ActivityRepo) *Tracker {
	return &Tracker{repo: repo, now: time.Now}
}

// WithClock overrides the clock. Test hook.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// today truncates the tracker's clock to a calendar date.
func (t *Tracker) today() time.Time {
	y, m, d := t.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RecordActivity logs learning activity for today and advances the
// streak. Activity amounts add onto today's row; recording twice in
// one day never double-counts the streak itself. A gap of more than
// one calendar day resets the current streak to 1, as does a stored
// last-activity date in the future (clock rollback).
func (t *Tracker) RecordActivity(ctx context.Context, minutes, conceptsCompleted, quizzesTaken int) error {
	today := t.today()

	if err := t.repo.AddActivity(ctx, today, minutes, conceptsCompleted, quizzesTaken); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}

	streak, err := t.repo.GetStreak(ctx)
	if err != nil {
		return fmt.Errorf("load streak: %w", err)
	}

	switch {
	case streak.LastActivityDate == nil:
		streak.CurrentStreak = 1
	case sameDay(*streak.LastActivityDate, today):
		// Already counted today.
	case sameDay(*streak.LastActivityDate, today.AddDate(0, 0, -1)):
		streak.CurrentStreak++
	default:
		// Gap, or a last-activity date in the future.
		streak.CurrentStreak = 1
	}
	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	streak.LastActivityDate = &today

	if err := t.repo.SaveStreak(ctx, streak); err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	return nil
}

// Current returns the stored streak counters as-is. A lapsed streak
// keeps its stored count until the next RecordActivity resets it;
// every reader sees the same numbers.
func (t *Tracker) Current(ctx context.Context) (*store.Streak, error) {
	return t.repo.GetStreak(ctx)
}

// ActivityOn returns the activity row for a calendar day, or nil.
func (t *Tracker) ActivityOn(ctx context.Context, day time.Time) (*store.DailyActivity, error) {
	return t.repo.GetActivity(ctx, day)
}

// History returns the most recent activity rows, newest first.
func (t *Tracker) History(ctx context.Context, limit int) ([]store.DailyActivity, error) {
	return t.repo.History(ctx, limit)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
