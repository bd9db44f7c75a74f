package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/sensei/internal/content"
	"github.com/abhisek/sensei/internal/session"
	"github.com/abhisek/sensei/internal/store"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Manage the course library",
}

var coursesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}

		ids, err := lib.List()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No courses installed. Add one with: sensei courses add <file.json>")
			return nil
		}

		st, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		ctx := context.Background()
		fmt.Printf("%-24s  %-40s  %8s  %8s\n", "ID", "Title", "Concepts", "Done")
		for _, id := range ids {
			tree, err := lib.Load(id)
			if err != nil {
				fmt.Printf("%-24s  (unreadable: %v)\n", id, err)
				continue
			}
			done := "-"
			if p, err := st.ProgressRepo().Get(ctx, id); err == nil && p != nil {
				done = fmt.Sprintf("%.0f%%", p.Completion*100)
			}
			fmt.Printf("%-24s  %-40s  %8d  %8s\n", tree.ID, tree.Title, tree.TotalConcepts(), done)
		}
		return nil
	},
}

var coursesAddCmd = &cobra.Command{
	Use:   "add <file.json>",
	Short: "Validate and install a course document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read course file: %w", err)
		}

		lib, err := openLibrary()
		if err != nil {
			return err
		}
		tree, err := lib.Add(data)
		if err != nil {
			return fmt.Errorf("add course: %w", err)
		}

		fmt.Printf("Installed %q (%s): %d modules, %d concepts\n",
			tree.Title, tree.ID, len(tree.Modules), tree.TotalConcepts())
		return nil
	},
}

var coursesRemoveCmd = &cobra.Command{
	Use:   "remove <course-id>",
	Short: "Remove a course and all its stored progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		lib, err := openLibrary()
		if err != nil {
			return err
		}
		if err := lib.Remove(id); err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		if err := session.New(st).RemoveCourse(context.Background(), id); err != nil {
			return fmt.Errorf("remove course data: %w", err)
		}
		fmt.Printf("Removed course %s and its progress.\n", id)
		return nil
	},
}

func openLibrary() (*content.Library, error) {
	dir, err := store.DefaultCourseDir()
	if err != nil {
		return nil, fmt.Errorf("resolve course dir: %w", err)
	}
	return content.NewLibrary(dir)
}

func init() {
	coursesCmd.AddCommand(coursesListCmd)
	coursesCmd.AddCommand(coursesAddCmd)
	coursesCmd.AddCommand(coursesRemoveCmd)
}
