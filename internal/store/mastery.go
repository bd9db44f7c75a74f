package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type masteryRepo struct {
	db *sql.DB
}

// Apply performs the whole read-modify-write for one concept in a
// single upsert, so concurrent updates to different concepts never
// lose increments.
func (r *masteryRepo) Apply(ctx context.Context, courseID, conceptID string, masteryLevel float64, questionsAskedDelta int, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO concept_mastery (
			course_id, concept_id, mastery_level, questions_asked,
			times_reviewed, last_reviewed
		) VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT(course_id, concept_id) DO UPDATE SET
			mastery_level = excluded.mastery_level,
			questions_asked = concept_mastery.questions_asked + ?,
			times_reviewed = concept_mastery.times_reviewed + 1,
			last_reviewed = excluded.last_reviewed`,
		courseID, conceptID, masteryLevel, questionsAskedDelta,
		now.Format(timeFormat), questionsAskedDelta)
	if err != nil {
		return fmt.Errorf("apply mastery: %w", err)
	}
	return nil
}

func (r *masteryRepo) Get(ctx context.Context, courseID, conceptID string) (*MasteryRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT course_id, concept_id, mastery_level, questions_asked,
		       times_reviewed, last_reviewed
		FROM concept_mastery WHERE course_id = ? AND concept_id = ?`,
		courseID, conceptID)

	rec, err := scanMastery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mastery: %w", err)
	}
	return rec, nil
}

func (r *masteryRepo) ByCourse(ctx context.Context, courseID string) ([]MasteryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT course_id, concept_id, mastery_level, questions_asked,
		       times_reviewed, last_reviewed
		FROM concept_mastery WHERE course_id = ?
		ORDER BY concept_id`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list mastery: %w", err)
	}
	defer rows.Close()

	var out []MasteryRecord
	for rows.Next() {
		rec, err := scanMastery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mastery: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *masteryRepo) DeleteByCourse(ctx context.Context, courseID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM concept_mastery WHERE course_id = ?`, courseID)
	if err != nil {
		return fmt.Errorf("delete mastery: %w", err)
	}
	return nil
}

func scanMastery(row rowScanner) (*MasteryRecord, error) {
	var rec MasteryRecord
	var lastReviewed string
	err := row.Scan(&rec.CourseID, &rec.ConceptID, &rec.MasteryLevel,
		&rec.QuestionsAsked, &rec.TimesReviewed, &lastReviewed)
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(timeFormat, lastReviewed)
	if err != nil {
		return nil, fmt.Errorf("parse last_reviewed: %w", err)
	}
	rec.LastReviewedAt = t
	return &rec, nil
}
