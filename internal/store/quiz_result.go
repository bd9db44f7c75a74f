package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type quizResultRepo struct {
	db *sql.DB
}

func (r *quizResultRepo) Append(ctx context.Context, rec *QuizResultRecord) (int64, error) {
	weak, err := json.Marshal(rec.WeakConcepts)
	if err != nil {
		return 0, fmt.Errorf("encode weak concepts: %w", err)
	}
	if rec.WeakConcepts == nil {
		weak = []byte("[]")
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO quiz_results (
			quiz_id, course_id, module_id, module_title, score,
			correct_count, total_questions, weak_concepts, feedback,
			passed, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.QuizID, rec.CourseID, rec.ModuleID, rec.ModuleTitle,
		rec.Score, rec.CorrectCount, rec.TotalQuestions, string(weak),
		rec.Feedback, boolToInt(rec.Passed),
		rec.CompletedAt.Format(timeFormat))
	if err != nil {
		return 0, fmt.Errorf("append quiz result: %w", err)
	}
	return res.LastInsertId()
}

func (r *quizResultRepo) ByCourse(ctx context.Context, courseID string) ([]QuizResultRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, quiz_id, course_id, module_id, module_title, score,
		       correct_count, total_questions, weak_concepts, feedback,
		       passed, completed_at
		FROM quiz_results WHERE course_id = ?
		ORDER BY completed_at DESC, id DESC`, courseID)
	if err != nil {
		return nil, fmt.Errorf("quiz history: %w", err)
	}
	defer rows.Close()
	return collectQuizResults(rows)
}

func (r *quizResultRepo) Recent(ctx context.Context, limit int) ([]QuizResultRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, quiz_id, course_id, module_id, module_title, score,
		       correct_count, total_questions, weak_concepts, feedback,
		       passed, completed_at
		FROM quiz_results
		ORDER BY completed_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent quiz history: %w", err)
	}
	defer rows.Close()
	return collectQuizResults(rows)
}

func (r *quizResultRepo) DeleteByCourse(ctx context.Context, courseID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM quiz_results WHERE course_id = ?`, courseID)
	if err != nil {
		return fmt.Errorf("delete quiz results: %w", err)
	}
	return nil
}

func collectQuizResults(rows *sql.Rows) ([]QuizResultRecord, error) {
	var out []QuizResultRecord
	for rows.Next() {
		var rec QuizResultRecord
		var weak, completedAt string
		var passed int
		err := rows.Scan(&rec.ID, &rec.QuizID, &rec.CourseID,
			&rec.ModuleID, &rec.ModuleTitle, &rec.Score,
			&rec.CorrectCount, &rec.TotalQuestions, &weak,
			&rec.Feedback, &passed, &completedAt)
		if err != nil {
			return nil, fmt.Errorf("scan quiz result: %w", err)
		}
		if err := json.Unmarshal([]byte(weak), &rec.WeakConcepts); err != nil {
			return nil, fmt.Errorf("decode weak concepts: %w", err)
		}
		rec.Passed = passed != 0
		t, err := time.Parse(timeFormat, completedAt)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		rec.CompletedAt = t
		out = append(out, rec)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
