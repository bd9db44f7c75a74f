package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/sensei/internal/app"
	"github.com/abhisek/sensei/internal/content"
	"github.com/abhisek/sensei/internal/evaluator"
	"github.com/abhisek/sensei/internal/llm"
	"github.com/abhisek/sensei/internal/quiz"
	"github.com/abhisek/sensei/internal/session"
	"github.com/abhisek/sensei/internal/store"
)

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Open the study interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// runApp opens the store, wires the coordinator and LLM, and launches
// the TUI. Without an API key the deterministic quiz generator fills
// in; quizzes still work, just without authored questions.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()

	st, err := openStore(cmd)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	courseDir, err := store.DefaultCourseDir()
	if err != nil {
		return fmt.Errorf("resolve course dir: %w", err)
	}
	lib, err := content.NewLibrary(courseDir)
	if err != nil {
		return err
	}

	deps := app.Deps{
		Store:   st,
		Library: lib,
		Coord:   session.New(st),
	}

	provider, err := llm.NewProviderFromEnv(ctx, st.EventRepo())
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Falling back to built-in quiz questions.")
		deps.Generator = quiz.NewFallbackGenerator()
	} else {
		client := evaluator.NewClient(provider)
		deps.Generator = client
		deps.Evaluator = client
		deps.Answerer = client
	}

	return app.Run(deps)
}
