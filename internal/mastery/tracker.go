package mastery

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/sensei/internal/quiz"
	"github.com/abhisek/sensei/internal/store"
)

// Mastery levels written after a quiz attempt. The level is an
// overwrite, not a running average: the latest attempt wins.
const (
	LevelHigh = 0.8
	LevelLow  = 0.3
)

// Tracker folds per-question correctness into durable per-concept
// mastery records.
type Tracker struct {
	repo store.MasteryRepo
	now  func() time.Time
}

// NewTracker creates a tracker backed by the given repository.
func NewTracker(repo store.MasteryRepo) *Tracker {
	return &Tracker{repo: repo, now: time.Now}
}

// WithClock overrides the clock. Test hook.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// UpdateFromQuiz applies one quiz attempt's results. A concept
// covered by several questions is marked high if ANY of them was
// answered correctly (optimistic OR); a concept whose questions were
// all wrong or unanswered gets the low level; unanswered is never
// treated as correct. The quiz path does not touch questionsAsked;
// only the Q&A path increments it.
func (t *Tracker) UpdateFromQuiz(ctx context.Context, courseID string, questions []quiz.Question, results []quiz.AnswerResult) error {
	correctlyAnswered := make(map[string]bool)
	for _, r := range results {
		if r.IsCorrect && !r.IsPending {
			correctlyAnswered[r.QuestionID] = true
		}
	}

	conceptWasCorrect := make(map[string]bool)
	var order []string
	for _, q := range questions {
		if q.ConceptID == "" {
			continue
		}
		if _, seen := conceptWasCorrect[q.ConceptID]; !seen {
			order = append(order, q.ConceptID)
		}
		if correctlyAnswered[q.ID] {
			conceptWasCorrect[q.ConceptID] = true
		} else if !conceptWasCorrect[q.ConceptID] {
			conceptWasCorrect[q.ConceptID] = false
		}
	}

	now := t.now()
	for _, conceptID := range order {
		level := LevelLow
		if conceptWasCorrect[conceptID] {
			level = LevelHigh
		}
		if err := t.repo.Apply(ctx, courseID, conceptID, level, 0, now); err != nil {
			return fmt.Errorf("update mastery for %s: %w", conceptID, err)
		}
	}
	return nil
}

// UpdateFromQuestion applies a single-concept update from the Q&A
// flow: asking a clarifying question lowers confidence and counts
// toward questionsAsked.
func (t *Tracker) UpdateFromQuestion(ctx context.Context, courseID, conceptID string, masteryLevel float64, questionsAskedDelta int) error {
	if conceptID == "" {
		return fmt.Errorf("concept id is empty")
	}
	return t.repo.Apply(ctx, courseID, conceptID, masteryLevel, questionsAskedDelta, t.now())
}

// Get returns the mastery record for a concept, or nil if it has
// never been reviewed.
func (t *Tracker) Get(ctx context.Context, courseID, conceptID string) (*store.MasteryRecord, error) {
	return t.repo.Get(ctx, courseID, conceptID)
}

// ByCourse returns all mastery records for a course.
func (t *Tracker) ByCourse(ctx context.Context, courseID string) ([]store.MasteryRecord, error) {
	return t.repo.ByCourse(ctx, courseID)
}

// DeleteByCourse removes all mastery records for a course.
func (t *Tracker) DeleteByCourse(ctx context.Context, courseID string) error {
	return t.repo.DeleteByCourse(ctx, courseID)
}

// WeakConcepts returns concept ids with mastery below LevelHigh,
// used to bias quiz generation toward shaky ground.
func (t *Tracker) WeakConcepts(ctx context.Context, courseID string) ([]string, error) {
	records, err := t.repo.ByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	var weak []string
	for _, rec := range records {
		if rec.MasteryLevel < LevelHigh {
			weak = append(weak, rec.ConceptID)
		}
	}
	return weak, nil
}
