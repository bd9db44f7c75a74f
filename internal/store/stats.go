package store

import (
	"context"
	"fmt"
)

// masteredThreshold is the mastery level at or above which a concept
// counts as mastered in aggregate stats.
const masteredThreshold = 0.7

// LearningStats aggregates progress across all courses.
type LearningStats struct {
	TotalCourses     int
	ConceptsMastered int
	TotalConcepts    int
	HoursLearned     float64
	CurrentStreak    int
	LongestStreak    int
}

// LearningStats computes aggregate statistics for the stats view.
func (s *Store) LearningStats(ctx context.Context) (*LearningStats, error) {
	var stats LearningStats

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total_concepts), 0),
		       COALESCE(SUM(time_spent_minutes), 0)
		FROM user_progress`)
	var minutes int
	if err := row.Scan(&stats.TotalCourses, &stats.TotalConcepts, &minutes); err != nil {
		return nil, fmt.Errorf("progress stats: %w", err)
	}
	stats.HoursLearned = float64(minutes) / 60.0

	row = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM concept_mastery WHERE mastery_level >= ?`,
		masteredThreshold)
	if err := row.Scan(&stats.ConceptsMastered); err != nil {
		return nil, fmt.Errorf("mastery stats: %w", err)
	}

	streak, err := s.ActivityRepo().GetStreak(ctx)
	if err != nil {
		return nil, err
	}
	stats.CurrentStreak = streak.CurrentStreak
	stats.LongestStreak = streak.LongestStreak

	return &stats, nil
}
