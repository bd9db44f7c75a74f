package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/sensei/internal/session"
)

var resetCmd = &cobra.Command{
	Use:   "reset <course-id>",
	Short: "Delete all stored progress for a course",
	Long:  "Deletes the course's progress, quiz history, mastery records, and sessions. The course document itself stays installed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		if err := session.New(st).RemoveCourse(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Reset progress for course %s.\n", args[0])
		return nil
	},
}
