package quiz

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/sensei/internal/content"
)

// FallbackGenerator authors quizzes deterministically from module
// concepts, one question per concept up to the requested count, with
// weak concepts ordered first. Used in offline and test modes where
// no evaluator is configured.
type FallbackGenerator struct{}

// NewFallbackGenerator creates the deterministic generator.
func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{}
}

// GenerateQuiz implements Generator.
func (g *FallbackGenerator) GenerateQuiz(_ context.Context, module *content.Module, questionCount int, weakConceptHints []string) (*Quiz, error) {
	if len(module.Concepts) == 0 {
		return nil, fmt.Errorf("module %q has no concepts to quiz", module.Title)
	}

	concepts := orderByWeakness(module.Concepts, weakConceptHints)

	var questions []Question
	for i, c := range concepts {
		if len(questions) >= questionCount {
			break
		}
		questions = append(questions, Question{
			ID:   uuid.NewString(),
			Text: fmt.Sprintf("Which of the following best describes %q?", c.Title),
			Type: MultipleChoice,
			Options: []string{
				"A correct description of " + c.Title,
				"A plausible but incorrect description",
				"A related but different concept",
				"An unrelated concept",
			},
			CorrectAnswer: "A correct description of " + c.Title,
			Explanation:   fmt.Sprintf("%s refers to this specific concept in %s.", c.Title, module.Title),
			ConceptID:     c.ID,
			Difficulty:    2,
		})
		// Vary the second question to exercise true/false checking.
		if i == 0 && questionCount > len(concepts) {
			questions = append(questions, Question{
				ID:            uuid.NewString(),
				Text:          fmt.Sprintf("True or False: %s is covered in this module.", c.Title),
				Type:          TrueFalse,
				Options:       []string{"True", "False"},
				CorrectAnswer: "True",
				Explanation:   "Every concept listed in the module outline is covered by it.",
				ConceptID:     c.ID,
				Difficulty:    1,
			})
		}
	}

	return &Quiz{
		ID:          uuid.NewString(),
		ModuleID:    module.ID,
		ModuleTitle: module.Title,
		Questions:   questions,
		CreatedAt:   time.Now(),
	}, nil
}

// orderByWeakness puts concepts named in hints ahead of the rest,
// preserving relative order within each group.
func orderByWeakness(concepts []content.Concept, hints []string) []content.Concept {
	if len(hints) == 0 {
		return concepts
	}
	weak := make(map[string]bool, len(hints))
	for _, h := range hints {
		weak[h] = true
	}
	out := make([]content.Concept, 0, len(concepts))
	for _, c := range concepts {
		if weak[c.ID] {
			out = append(out, c)
		}
	}
	for _, c := range concepts {
		if !weak[c.ID] {
			out = append(out, c)
		}
	}
	return out
}
