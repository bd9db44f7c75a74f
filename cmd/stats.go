package cmd

import (
	"context"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/sensei/internal/mastery"
	"github.com/abhisek/sensei/internal/streak"
	"github.com/abhisek/sensei/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		ctx := context.Background()
		stats, err := st.LearningStats(ctx)
		if err != nil {
			return err
		}

		heading := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary)
		dim := lipgloss.NewStyle().Foreground(theme.TextDim)

		fmt.Println(heading.Render("Learning Stats"))
		fmt.Println(strings.Repeat("─", 48))
		fmt.Printf("Courses:           %d\n", stats.TotalCourses)
		fmt.Printf("Concepts mastered: %d / %d\n", stats.ConceptsMastered, stats.TotalConcepts)
		fmt.Printf("Hours learned:     %.1f\n", stats.HoursLearned)

		tracker := streak.NewTracker(st.ActivityRepo())
		s, err := tracker.Current(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Current streak:    %d day(s)\n", s.CurrentStreak)
		fmt.Printf("Longest streak:    %d day(s)\n", s.LongestStreak)

		hist, err := tracker.History(ctx, 7)
		if err != nil {
			return err
		}
		if len(hist) > 0 {
			fmt.Println()
			fmt.Println(heading.Render("Last 7 Active Days"))
			fmt.Println(strings.Repeat("─", 48))
			for _, day := range hist {
				fmt.Printf("%s  %3d min  %2d concepts  %2d quizzes\n",
					day.Date.Format("2006-01-02"),
					day.MinutesLearned, day.ConceptsCompleted, day.QuizzesTaken)
			}
		}

		// Per-course weak spots.
		courseID, _ := cmd.Flags().GetString("course")
		if courseID != "" {
			tracker := mastery.NewTracker(st.MasteryRepo())
			records, err := tracker.ByCourse(ctx, courseID)
			if err != nil {
				return err
			}
			fmt.Println()
			fmt.Println(heading.Render("Mastery: " + courseID))
			fmt.Println(strings.Repeat("─", 48))
			if len(records) == 0 {
				fmt.Println(dim.Render("No mastery data yet; take a quiz first."))
			}
			for _, r := range records {
				marker := theme.Correct.Render("●")
				if r.MasteryLevel < mastery.LevelHigh {
					marker = theme.Incorrect.Render("●")
				}
				fmt.Printf("%s %-32s %.0f%%  (reviewed %dx)\n",
					marker, r.ConceptID, r.MasteryLevel*100, r.TimesReviewed)
			}

			history, err := st.QuizResultRepo().ByCourse(ctx, courseID)
			if err != nil {
				return err
			}
			if len(history) > 0 {
				fmt.Println()
				fmt.Println(heading.Render("Recent Quizzes"))
				fmt.Println(strings.Repeat("─", 48))
				if len(history) > 5 {
					history = history[:5]
				}
				for _, q := range history {
					verdict := theme.Correct.Render("pass")
					if !q.Passed {
						verdict = theme.Incorrect.Render("fail")
					}
					fmt.Printf("%s  %-28s %3.0f%%  %d/%d  %s\n",
						q.CompletedAt.Local().Format("2006-01-02"),
						q.ModuleTitle, q.Score*100, q.CorrectCount, q.TotalQuestions, verdict)
				}
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().StringP("course", "c", "", "Show per-concept mastery for a course")
}
