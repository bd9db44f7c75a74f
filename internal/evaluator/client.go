package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/sensei/internal/content"
	"github.com/abhisek/sensei/internal/llm"
	"github.com/abhisek/sensei/internal/quiz"
)

const (
	generateMaxTokens = 4096
	evaluateMaxTokens = 1024
	answerMaxTokens   = 1024
)

// Client generates quizzes and grades attempts through an LLM
// provider. It implements both quiz.Generator and quiz.Evaluator.
type Client struct {
	provider llm.Provider
}

func NewClient(provider llm.Provider) *Client {
	return &Client{provider: provider}
}

// generatedQuestion is the wire shape of one model-authored question.
type generatedQuestion struct {
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	ConceptID     string   `json:"concept_id"`
	Difficulty    int      `json:"difficulty"`
}

// GenerateQuiz asks the model for questionCount questions over the
// module's concepts, biased toward the weak concept hints.
func (c *Client) GenerateQuiz(ctx context.Context, module *content.Module, questionCount int, weakConceptHints []string) (*quiz.Quiz, error) {
	ctx = llm.WithPurpose(ctx, "quiz-gen")

	resp, err := c.provider.Generate(ctx, llm.Request{
		System: generateSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: generatePrompt(module, questionCount, weakConceptHints)},
		},
		Schema:    quizSchema,
		MaxTokens: generateMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	var payload struct {
		Questions []generatedQuestion `json:"questions"`
	}
	if err := json.Unmarshal(resp.Content, &payload); err != nil {
		return nil, fmt.Errorf("decode quiz: %w", err)
	}
	if len(payload.Questions) == 0 {
		return nil, fmt.Errorf("model returned no questions")
	}

	known := make(map[string]bool, len(module.Concepts))
	for _, concept := range module.Concepts {
		known[concept.ID] = true
	}

	q := &quiz.Quiz{
		ID:          uuid.NewString(),
		ModuleID:    module.ID,
		ModuleTitle: module.Title,
		CreatedAt:   time.Now(),
	}
	for _, gq := range payload.Questions {
		conceptID := gq.ConceptID
		if !known[conceptID] {
			// A hallucinated concept id would poison mastery rows.
			conceptID = ""
		}
		q.Questions = append(q.Questions, quiz.Question{
			ID:            uuid.NewString(),
			Text:          gq.Text,
			Type:          quiz.ParseQuestionType(gq.Type),
			Options:       gq.Options,
			CorrectAnswer: gq.CorrectAnswer,
			Explanation:   gq.Explanation,
			ConceptID:     conceptID,
			Difficulty:    gq.Difficulty,
		})
	}
	return q, nil
}

// AnswerQuestion answers a learner's question about a concept.
func (c *Client) AnswerQuestion(ctx context.Context, module *content.Module, concept *content.Concept, question string) (string, error) {
	ctx = llm.WithPurpose(ctx, "concept-qa")

	resp, err := c.provider.Generate(ctx, llm.Request{
		System: answerSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: answerPrompt(module, concept, question)},
		},
		Schema:    answerSchema,
		MaxTokens: answerMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}

	var payload struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(resp.Content, &payload); err != nil {
		return "", fmt.Errorf("decode answer: %w", err)
	}
	if payload.Answer == "" {
		return "", fmt.Errorf("model returned an empty answer")
	}
	return payload.Answer, nil
}

// EvaluateAnswers grades an attempt that includes open-ended answers.
// Weak concepts in the response are filtered to ids that actually
// appear in the quiz.
func (c *Client) EvaluateAnswers(ctx context.Context, q *quiz.Quiz, submissions map[string]string) (*quiz.Result, error) {
	ctx = llm.WithPurpose(ctx, "quiz-eval")

	resp, err := c.provider.Generate(ctx, llm.Request{
		System: evaluateSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: evaluatePrompt(q, submissions)},
		},
		Schema:    evaluationSchema,
		MaxTokens: evaluateMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate answers: %w", err)
	}

	var payload struct {
		Score        float64  `json:"score"`
		CorrectCount int      `json:"correct_count"`
		WeakConcepts []string `json:"weak_concepts"`
		Feedback     string   `json:"feedback"`
	}
	if err := json.Unmarshal(resp.Content, &payload); err != nil {
		return nil, fmt.Errorf("decode evaluation: %w", err)
	}
	if payload.Score < 0 || payload.Score > 1 {
		return nil, fmt.Errorf("evaluation score %v out of range", payload.Score)
	}

	known := make(map[string]bool)
	for _, question := range q.Questions {
		if question.ConceptID != "" {
			known[question.ConceptID] = true
		}
	}
	var weak []string
	for _, id := range payload.WeakConcepts {
		if known[id] {
			weak = append(weak, id)
		}
	}

	return &quiz.Result{
		Score:        payload.Score,
		CorrectCount: payload.CorrectCount,
		WeakConcepts: weak,
		Feedback:     payload.Feedback,
	}, nil
}
