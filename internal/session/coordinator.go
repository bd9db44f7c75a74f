package session

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/sensei/internal/content"
	"github.com/abhisek/sensei/internal/mastery"
	"github.com/abhisek/sensei/internal/nav"
	"github.com/abhisek/sensei/internal/quiz"
	"github.com/abhisek/sensei/internal/store"
	"github.com/abhisek/sensei/internal/streak"
)

// Coordinator orchestrates a learning session: it resumes navigation
// from stored progress, persists every position change, and folds
// session time and quiz outcomes into activity, streak, and mastery
// records on the way out.
type Coordinator struct {
	progress store.ProgressRepo
	results  store.QuizResultRepo
	sessions store.SessionRepo
	streak   *streak.Tracker
	mastery  *mastery.Tracker
	now      func() time.Time
}

// New creates a coordinator over the store's repositories.
func New(s *store.Store) *Coordinator {
	return &Coordinator{
		progress: s.ProgressRepo(),
		results:  s.QuizResultRepo(),
		sessions: s.SessionRepo(),
		streak:   streak.NewTracker(s.ActivityRepo()),
		mastery:  mastery.NewTracker(s.MasteryRepo()),
		now:      time.Now,
	}
}

// WithClock overrides the clock on the coordinator and its trackers.
// Test hook.
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	c.streak.WithClock(now)
	c.mastery.WithClock(now)
	return c
}

// Streak exposes the streak tracker for read-only views.
func (c *Coordinator) Streak() *streak.Tracker { return c.streak }

// Mastery exposes the mastery tracker for read-only views.
func (c *Coordinator) Mastery() *mastery.Tracker { return c.mastery }

// Session is one live learning session over a course.
type Session struct {
	Tree *content.Tree
	Nav  *nav.State

	id              int64
	startedAt       time.Time
	conceptsCovered int
}

// StartedAt returns the session start time.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Start opens a session on a course, resuming from stored progress.
// A stored position that no longer fits the course (the content was
// edited, or the row is corrupt) falls back to the first concept. A
// course with no stored progress starts fresh and gets a progress row
// written immediately.
func (c *Coordinator) Start(ctx context.Context, tree *content.Tree) (*Session, error) {
	stored := nav.Position{}
	p, err := c.progress.Get(ctx, tree.ID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if p != nil {
		stored = nav.Position{Module: p.ModuleIdx, Concept: p.ConceptIdx}
	}

	state, err := nav.Resume(tree, stored)
	if err != nil {
		return nil, err
	}

	sess := &Session{Tree: tree, Nav: state, startedAt: c.now()}
	if err := c.saveProgress(ctx, sess, 0); err != nil {
		return nil, err
	}

	sess.id, err = c.sessions.Start(ctx, tree.ID, sess.startedAt)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return sess, nil
}

// Advance moves forward one concept and persists the new position.
// ok is false at the end of the course.
func (c *Coordinator) Advance(ctx context.Context, sess *Session) (nav.Position, bool, error) {
	pos, ok := sess.Nav.Advance(sess.Tree)
	if !ok {
		return pos, false, nil
	}
	sess.conceptsCovered++
	if err := c.saveProgress(ctx, sess, 0); err != nil {
		return pos, true, err
	}
	return pos, true, nil
}

// Retreat moves back one concept and persists the new position.
// ok is false at the start of the course.
func (c *Coordinator) Retreat(ctx context.Context, sess *Session) (nav.Position, bool, error) {
	pos, ok := sess.Nav.Retreat(sess.Tree)
	if !ok {
		return pos, false, nil
	}
	if err := c.saveProgress(ctx, sess, 0); err != nil {
		return pos, true, err
	}
	return pos, true, nil
}

// End closes the session: it adds the elapsed time to the course's
// progress row, logs the day's activity for the streak, and closes
// the session row. Safe to call once per session.
func (c *Coordinator) End(ctx context.Context, sess *Session) error {
	ended := c.now()
	minutes := int(ended.Sub(sess.startedAt).Minutes())
	if minutes < 0 {
		minutes = 0
	}

	if err := c.saveProgress(ctx, sess, minutes); err != nil {
		return err
	}
	if err := c.streak.RecordActivity(ctx, minutes, sess.conceptsCovered, 0); err != nil {
		return err
	}
	if err := c.sessions.End(ctx, sess.id, ended, minutes, sess.conceptsCovered); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// RecordQuizResult persists a completed quiz attempt: the history row,
// per-concept mastery from the individual answers, and a quiz tick on
// today's activity.
func (c *Coordinator) RecordQuizResult(ctx context.Context, result *quiz.Result, questions []quiz.Question, answers []quiz.AnswerResult) error {
	_, err := c.results.Append(ctx, &store.QuizResultRecord{
		QuizID:         result.QuizID,
		CourseID:       result.CourseID,
		ModuleID:       result.ModuleID,
		ModuleTitle:    result.ModuleTitle,
		Score:          result.Score,
		CorrectCount:   result.CorrectCount,
		TotalQuestions: result.TotalQuestions,
		WeakConcepts:   result.WeakConcepts,
		Feedback:       result.Feedback,
		Passed:         result.Passed,
		CompletedAt:    result.CompletedAt,
	})
	if err != nil {
		return fmt.Errorf("save quiz result: %w", err)
	}

	if err := c.mastery.UpdateFromQuiz(ctx, result.CourseID, questions, answers); err != nil {
		return err
	}
	return c.streak.RecordActivity(ctx, 0, 0, 1)
}

// RecordQuestionAsked notes that the learner asked a clarifying
// question about a concept. Asking signals incomplete understanding:
// mastery drops to the low level and questionsAsked increments.
func (c *Coordinator) RecordQuestionAsked(ctx context.Context, courseID, conceptID string) error {
	return c.mastery.UpdateFromQuestion(ctx, courseID, conceptID, mastery.LevelLow, 1)
}

// RemoveCourse deletes everything stored for a course: progress, quiz
// history, mastery, and session rows. Activity and streak records are
// global and stay.
func (c *Coordinator) RemoveCourse(ctx context.Context, courseID string) error {
	if err := c.progress.Delete(ctx, courseID); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	if err := c.results.DeleteByCourse(ctx, courseID); err != nil {
		return fmt.Errorf("delete quiz history: %w", err)
	}
	if err := c.mastery.DeleteByCourse(ctx, courseID); err != nil {
		return fmt.Errorf("delete mastery: %w", err)
	}
	if err := c.sessions.DeleteByCourse(ctx, courseID); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

// saveProgress writes the full progress snapshot for the session's
// current position, adding extraMinutes onto the stored time.
func (c *Coordinator) saveProgress(ctx context.Context, sess *Session, extraMinutes int) error {
	prev, err := c.progress.Get(ctx, sess.Tree.ID)
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}
	minutes := extraMinutes
	if prev != nil {
		minutes += prev.TimeSpentMinutes
	}

	pos := sess.Nav.Current()
	p := &store.Progress{
		CourseID:          sess.Tree.ID,
		Completion:        sess.Nav.ProgressFraction(sess.Tree),
		ModulesCompleted:  sess.Nav.ModulesCompleted(sess.Tree),
		TotalModules:      len(sess.Tree.Modules),
		ConceptsCompleted: sess.Nav.ConceptsCompleted(sess.Tree),
		TotalConcepts:     sess.Tree.TotalConcepts(),
		TimeSpentMinutes:  minutes,
		ModuleIdx:         pos.Module,
		ConceptIdx:        pos.Concept,
		LastAccessed:      c.now(),
	}
	if err := c.progress.Save(ctx, p); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}
