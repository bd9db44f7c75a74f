package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type progressRepo struct {
	db *sql.DB
}

func (r *progressRepo) Get(ctx context.Context, courseID string) (*Progress, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT course_id, completion_percentage, modules_completed,
		       total_modules, concepts_completed, total_concepts,
		       time_spent_minutes, current_module_idx,
		       current_concept_idx, last_accessed
		FROM user_progress WHERE course_id = ?`, courseID)

	p, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return p, nil
}

func (r *progressRepo) Save(ctx context.Context, p *Progress) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_progress (
			course_id, completion_percentage, modules_completed,
			total_modules, concepts_completed, total_concepts,
			time_spent_minutes, current_module_idx,
			current_concept_idx, last_accessed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(course_id) DO UPDATE SET
			completion_percentage = excluded.completion_percentage,
			modules_completed = excluded.modules_completed,
			total_modules = excluded.total_modules,
			concepts_completed = excluded.concepts_completed,
			total_concepts = excluded.total_concepts,
			time_spent_minutes = excluded.time_spent_minutes,
			current_module_idx = excluded.current_module_idx,
			current_concept_idx = excluded.current_concept_idx,
			last_accessed = excluded.last_accessed`,
		p.CourseID, p.Completion, p.ModulesCompleted,
		p.TotalModules, p.ConceptsCompleted, p.TotalConcepts,
		p.TimeSpentMinutes, p.ModuleIdx, p.ConceptIdx,
		p.LastAccessed.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (r *progressRepo) All(ctx context.Context) ([]Progress, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT course_id, completion_percentage, modules_completed,
		       total_modules, concepts_completed, total_concepts,
		       time_spent_minutes, current_module_idx,
		       current_concept_idx, last_accessed
		FROM user_progress ORDER BY last_accessed DESC`)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var out []Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *progressRepo) Delete(ctx context.Context, courseID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_progress WHERE course_id = ?`, courseID)
	if err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (*Progress, error) {
	var p Progress
	var lastAccessed string
	err := row.Scan(&p.CourseID, &p.Completion, &p.ModulesCompleted,
		&p.TotalModules, &p.ConceptsCompleted, &p.TotalConcepts,
		&p.TimeSpentMinutes, &p.ModuleIdx, &p.ConceptIdx, &lastAccessed)
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(timeFormat, lastAccessed)
	if err != nil {
		return nil, fmt.Errorf("parse last_accessed: %w", err)
	}
	p.LastAccessed = t
	return &p, nil
}
