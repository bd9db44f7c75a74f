package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type activityRepo struct {
	db *sql.DB
}

func (r *activityRepo) AddActivity(ctx context.Context, date time.Time, minutes, concepts, quizzes int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_activity (date, minutes_learned, concepts_completed, quizzes_taken)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			minutes_learned = daily_activity.minutes_learned + excluded.minutes_learned,
			concepts_completed = daily_activity.concepts_completed + excluded.concepts_completed,
			quizzes_taken = daily_activity.quizzes_taken + excluded.quizzes_taken`,
		date.Format(dateFormat), minutes, concepts, quizzes)
	if err != nil {
		return fmt.Errorf("add activity: %w", err)
	}
	return nil
}

func (r *activityRepo) GetActivity(ctx context.Context, date time.Time) (*DailyActivity, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT date, minutes_learned, concepts_completed, quizzes_taken
		FROM daily_activity WHERE date = ?`, date.Format(dateFormat))

	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return a, nil
}

func (r *activityRepo) History(ctx context.Context, days int) ([]DailyActivity, error) {
	if days <= 0 {
		days = 30
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, minutes_learned, concepts_completed, quizzes_taken
		FROM daily_activity ORDER BY date DESC LIMIT ?`, days)
	if err != nil {
		return nil, fmt.Errorf("activity history: %w", err)
	}
	defer rows.Close()

	var out []DailyActivity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *activityRepo) GetStreak(ctx context.Context) (*Streak, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT current_streak, longest_streak, last_activity_date
		FROM learning_streak WHERE id = 1`)

	var s Streak
	var last sql.NullString
	if err := row.Scan(&s.CurrentStreak, &s.LongestStreak, &last); err != nil {
		return nil, fmt.Errorf("get streak: %w", err)
	}
	if last.Valid {
		t, err := time.Parse(dateFormat, last.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_activity_date: %w", err)
		}
		s.LastActivityDate = &t
	}
	return &s, nil
}

func (r *activityRepo) SaveStreak(ctx context.Context, s *Streak) error {
	var last any
	if s.LastActivityDate != nil {
		last = s.LastActivityDate.Format(dateFormat)
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE learning_streak
		SET current_streak = ?, longest_streak = ?, last_activity_date = ?
		WHERE id = 1`,
		s.CurrentStreak, s.LongestStreak, last)
	if err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	return nil
}

func scanActivity(row rowScanner) (*DailyActivity, error) {
	var a DailyActivity
	var date string
	err := row.Scan(&date, &a.MinutesLearned, &a.ConceptsCompleted, &a.QuizzesTaken)
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(dateFormat, date)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	a.Date = t
	return &a, nil
}
