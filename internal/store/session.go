package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) Start(ctx context.Context, courseID string, startedAt time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO learning_sessions (course_id, started_at)
		VALUES (?, ?)`,
		courseID, startedAt.Format(timeFormat))
	if err != nil {
		return 0, fmt.Errorf("start session: %w", err)
	}
	return res.LastInsertId()
}

func (r *sessionRepo) End(ctx context.Context, id int64, endedAt time.Time, durationMinutes, conceptsCovered int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE learning_sessions
		SET ended_at = ?, duration_minutes = ?, concepts_covered = ?
		WHERE id = ?`,
		endedAt.Format(timeFormat), durationMinutes, conceptsCovered, id)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

func (r *sessionRepo) ByCourse(ctx context.Context, courseID string, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, course_id, started_at, ended_at, duration_minutes, concepts_covered
		FROM learning_sessions WHERE course_id = ?
		ORDER BY started_at DESC, id DESC LIMIT ?`, courseID, limit)
	if err != nil {
		return nil, fmt.Errorf("session history: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var started string
		var ended sql.NullString
		err := rows.Scan(&rec.ID, &rec.CourseID, &started, &ended,
			&rec.DurationMinutes, &rec.ConceptsCovered)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		t, err := time.Parse(timeFormat, started)
		if err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		rec.StartedAt = t
		if ended.Valid {
			e, err := time.Parse(timeFormat, ended.String)
			if err != nil {
				return nil, fmt.Errorf("parse ended_at: %w", err)
			}
			rec.EndedAt = &e
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *sessionRepo) DeleteByCourse(ctx context.Context, courseID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM learning_sessions WHERE course_id = ?`, courseID)
	if err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}
