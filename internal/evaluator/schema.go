package evaluator

import "github.com/abhisek/sensei/internal/llm"

// quizSchema constrains generated quizzes: every question carries its
// type, the concept it probes, and the reference answer.
var quizSchema = &llm.Schema{
	Name:        "quiz-questions",
	Description: "A set of quiz questions assessing one course module",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text": map[string]any{
							"type":        "string",
							"description": "The question text",
						},
						"type": map[string]any{
							"type": "string",
							"enum": []any{"multiple_choice", "true_false", "code", "open_ended"},
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Choices for multiple_choice questions",
						},
						"correct_answer": map[string]any{
							"type":        "string",
							"description": "The reference answer",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the answer is correct",
						},
						"concept_id": map[string]any{
							"type":        "string",
							"description": "Id of the concept this question assesses",
						},
						"difficulty": map[string]any{
							"type":    "integer",
							"minimum": 1,
							"maximum": 3,
						},
					},
					"required": []any{"text", "type", "correct_answer", "concept_id"},
				},
			},
		},
		"required": []any{"questions"},
	},
}

// answerSchema constrains answers to learner questions about a
// concept.
var answerSchema = &llm.Schema{
	Name:        "concept-answer",
	Description: "An answer to a learner's question about a concept",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "The answer, in plain prose",
			},
		},
		"required": []any{"answer"},
	},
}

// evaluationSchema constrains graded attempts with open-ended answers.
var evaluationSchema = &llm.Schema{
	Name:        "quiz-evaluation",
	Description: "Grading of a completed quiz attempt",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "number",
				"minimum":     0,
				"maximum":     1,
				"description": "Fraction of questions answered correctly",
			},
			"correct_count": map[string]any{
				"type":    "integer",
				"minimum": 0,
			},
			"weak_concepts": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Concept ids the learner struggled with",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Short encouraging feedback for the learner",
			},
		},
		"required": []any{"score", "correct_count", "feedback"},
	},
}
