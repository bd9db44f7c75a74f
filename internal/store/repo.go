package store

import (
	"context"
	"time"
)

// timeFormat is the canonical timestamp encoding for all tables.
const timeFormat = time.RFC3339

// dateFormat is the calendar-date encoding used by daily_activity
// and learning_streak.
const dateFormat = "2006-01-02"

// Progress is the durable per-course progress record.
type Progress struct {
	CourseID          string
	Completion        float64
	ModulesCompleted  int
	TotalModules      int
	ConceptsCompleted int
	TotalConcepts     int
	TimeSpentMinutes  int
	ModuleIdx         int
	ConceptIdx        int
	LastAccessed      time.Time
}

// ProgressRepo persists per-course progress.
type ProgressRepo interface {
	// Get returns the progress for a course, or nil if none exists.
	Get(ctx context.Context, courseID string) (*Progress, error)

	// Save upserts the progress record atomically by course id.
	Save(ctx context.Context, p *Progress) error

	// All returns progress for every course, newest access first.
	All(ctx context.Context) ([]Progress, error)

	// Delete removes the progress record for a course.
	Delete(ctx context.Context, courseID string) error
}

// QuizResultRecord is one row of quiz history. Append-only.
type QuizResultRecord struct {
	ID             int64
	QuizID         string
	CourseID       string
	ModuleID       string
	ModuleTitle    string
	Score          float64
	CorrectCount   int
	TotalQuestions int
	WeakConcepts   []string
	Feedback       string
	Passed         bool
	CompletedAt    time.Time
}

// QuizResultRepo persists quiz attempt history.
type QuizResultRepo interface {
	// Append writes a completed attempt. Records are never mutated.
	Append(ctx context.Context, r *QuizResultRecord) (int64, error)

	// ByCourse returns a course's history, newest first.
	ByCourse(ctx context.Context, courseID string) ([]QuizResultRecord, error)

	// Recent returns history across courses, newest first, at most
	// limit rows.
	Recent(ctx context.Context, limit int) ([]QuizResultRecord, error)

	// DeleteByCourse removes all history rows for a course.
	DeleteByCourse(ctx context.Context, courseID string) error
}

// MasteryRecord is the durable mastery estimate for one
// (course, concept) pair.
type MasteryRecord struct {
	CourseID       string
	ConceptID      string
	MasteryLevel   float64
	QuestionsAsked int
	TimesReviewed  int
	LastReviewedAt time.Time
}

// MasteryRepo persists concept mastery.
type MasteryRepo interface {
	// Apply upserts one concept's mastery in a single atomic
	// statement: masteryLevel overwrites, questionsAsked adds the
	// delta, timesReviewed increments by one.
	Apply(ctx context.Context, courseID, conceptID string, masteryLevel float64, questionsAskedDelta int, now time.Time) error

	// Get returns the record, or nil if the concept was never
	// reviewed.
	Get(ctx context.Context, courseID, conceptID string) (*MasteryRecord, error)

	// ByCourse returns all mastery records for a course.
	ByCourse(ctx context.Context, courseID string) ([]MasteryRecord, error)

	// DeleteByCourse removes all mastery rows for a course.
	DeleteByCourse(ctx context.Context, courseID string) error
}

// DailyActivity accumulates one calendar day's learning activity.
type DailyActivity struct {
	Date              time.Time // calendar date, midnight local
	MinutesLearned    int
	ConceptsCompleted int
	QuizzesTaken      int
}

// Streak is the singleton engagement-streak record.
type Streak struct {
	CurrentStreak    int
	LongestStreak    int
	LastActivityDate *time.Time // nil before any activity
}

// ActivityRepo persists daily activity and the streak singleton.
type ActivityRepo interface {
	// AddActivity adds deltas into the row for the given date in one
	// atomic upsert.
	AddActivity(ctx context.Context, date time.Time, minutes, concepts, quizzes int) error

	// GetActivity returns the row for a date, or nil if absent.
	GetActivity(ctx context.Context, date time.Time) (*DailyActivity, error)

	// History returns up to days rows, newest date first.
	History(ctx context.Context, days int) ([]DailyActivity, error)

	// GetStreak returns the singleton streak record.
	GetStreak(ctx context.Context) (*Streak, error)

	// SaveStreak overwrites the singleton streak record.
	SaveStreak(ctx context.Context, s *Streak) error
}

// SessionRecord is one learning session row.
type SessionRecord struct {
	ID              int64
	CourseID        string
	StartedAt       time.Time
	EndedAt         *time.Time
	DurationMinutes int
	ConceptsCovered int
}

// SessionRepo persists learning session history.
type SessionRepo interface {
	// Start inserts a session row and returns its id.
	Start(ctx context.Context, courseID string, startedAt time.Time) (int64, error)

	// End closes a session row with its duration and coverage.
	End(ctx context.Context, id int64, endedAt time.Time, durationMinutes, conceptsCovered int) error

	// ByCourse returns a course's sessions, newest first, at most
	// limit rows.
	ByCourse(ctx context.Context, courseID string, limit int) ([]SessionRecord, error)

	// DeleteByCourse removes all session rows for a course.
	DeleteByCourse(ctx context.Context, courseID string) error
}

// QueryOpts configures event queries.
type QueryOpts struct {
	Limit int // max results (0 = unlimited)
}

// LLMRequestEventData captures one LLM API call.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event by id, or nil if absent.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)
}
