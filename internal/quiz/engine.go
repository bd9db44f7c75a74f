package quiz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/sensei/internal/content"
)

// DefaultPassThreshold is the minimum score that counts as a pass.
const DefaultPassThreshold = 0.8

// DefaultQuestionCount is the question count used when the caller
// does not specify one.
const DefaultQuestionCount = 5

// Config holds engine tunables.
type Config struct {
	PassThreshold float64
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{PassThreshold: DefaultPassThreshold}
}

// Generator authors quiz questions for a module. Implemented by the
// external evaluator client and by the deterministic fallback.
type Generator interface {
	GenerateQuiz(ctx context.Context, module *content.Module, questionCount int, weakConceptHints []string) (*Quiz, error)
}

// Evaluator judges attempts that contain pending open-ended answers
// and produces score plus feedback. Treated as an unreliable remote
// call: failures surface as ErrEvaluation and the attempt stays
// unresolved for retry.
type Evaluator interface {
	EvaluateAnswers(ctx context.Context, q *Quiz, submissions map[string]string) (*Result, error)
}

// EngineState is the quiz attempt lifecycle phase.
type EngineState int

const (
	StateInactive EngineState = iota
	StateActive
	StateCompleted
)

// Engine manages one quiz attempt at a time: generation, answer
// submission, and result computation. Per-session, single-threaded
// use; the host owns one engine per active course.
type Engine struct {
	cfg       Config
	generator Generator
	evaluator Evaluator

	state    EngineState
	quiz     *Quiz
	courseID string
	answers  map[string]string
	results  []AnswerResult
}

// NewEngine creates an engine with the given collaborators. The
// evaluator may be nil when only direct scoring is needed (no
// open-ended questions).
func NewEngine(cfg Config, gen Generator, eval Evaluator) *Engine {
	if cfg.PassThreshold == 0 {
		cfg.PassThreshold = DefaultPassThreshold
	}
	return &Engine{cfg: cfg, generator: gen, evaluator: eval}
}

// State returns the current lifecycle state.
func (e *Engine) State() EngineState {
	return e.state
}

// ActiveQuiz returns the current quiz, or nil when inactive.
func (e *Engine) ActiveQuiz() *Quiz {
	return e.quiz
}

// Generate builds a quiz for the module at moduleIdx and transitions
// the engine to Active, discarding any previous attempt state.
func (e *Engine) Generate(ctx context.Context, tree *content.Tree, moduleIdx, questionCount int, weakConceptHints []string) (*Quiz, error) {
	if moduleIdx < 0 || moduleIdx >= len(tree.Modules) {
		return nil, fmt.Errorf("%w: module index %d out of range", ErrInvalidInput, moduleIdx)
	}
	if questionCount <= 0 {
		questionCount = DefaultQuestionCount
	}

	module := tree.Module(moduleIdx)
	q, err := e.generator.GenerateQuiz(ctx, module, questionCount, weakConceptHints)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluation, err)
	}

	e.quiz = q
	e.courseID = tree.ID
	e.state = StateActive
	e.answers = make(map[string]string)
	e.results = nil
	return q, nil
}

// SubmitAnswer records an answer for a question in the active quiz.
// Duplicate submissions and empty answers are rejected, not silently
// accepted.
func (e *Engine) SubmitAnswer(questionID, answer string) (*AnswerResult, error) {
	if e.state != StateActive {
		return nil, fmt.Errorf("%w: no active quiz", ErrInvalidState)
	}

	q := e.quiz.Question(questionID)
	if q == nil {
		return nil, fmt.Errorf("%w: question %s", ErrNotFound, questionID)
	}
	if strings.TrimSpace(answer) == "" {
		return nil, fmt.Errorf("%w: answer is empty", ErrInvalidInput)
	}
	if _, dup := e.answers[questionID]; dup {
		return nil, fmt.Errorf("%w: question %s already answered", ErrInvalidInput, questionID)
	}

	e.answers[questionID] = answer

	correct, pending := checkAnswer(q, answer)
	result := AnswerResult{
		QuestionID:    questionID,
		UserAnswer:    answer,
		IsCorrect:     correct,
		IsPending:     pending,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	}
	e.results = append(e.results, result)
	return &result, nil
}

// Progress reports answered/remaining counts for the active attempt.
func (e *Engine) Progress() (Progress, error) {
	if e.state != StateActive {
		return Progress{}, fmt.Errorf("%w: no active quiz", ErrInvalidState)
	}
	total := len(e.quiz.Questions)
	answered := len(e.answers)
	p := Progress{Total: total, Answered: answered, Remaining: total - answered}
	if total > 0 {
		p.Completion = float64(answered) / float64(total)
	}
	return p, nil
}

// ComputeResult finalizes the attempt. When any submission is
// pending, scoring is delegated to the external evaluator; otherwise
// the score is computed locally. Unanswered questions count against
// the denominator. Transitions the engine to Completed; callers then
// Reset or End explicitly.
func (e *Engine) ComputeResult(ctx context.Context) (*Result, error) {
	if e.state != StateActive {
		return nil, fmt.Errorf("%w: no active quiz", ErrInvalidState)
	}

	var result *Result
	if e.hasPending() {
		if e.evaluator == nil {
			return nil, fmt.Errorf("%w: open-ended answers need an evaluator", ErrEvaluation)
		}
		r, err := e.evaluator.EvaluateAnswers(ctx, e.quiz, e.answers)
		if err != nil {
			// Attempt stays Active so the caller can retry.
			return nil, fmt.Errorf("%w: %v", ErrEvaluation, err)
		}
		result = r
	} else {
		result = e.computeDirect()
	}

	result.QuizID = e.quiz.ID
	result.CourseID = e.courseID
	result.ModuleID = e.quiz.ModuleID
	result.ModuleTitle = e.quiz.ModuleTitle
	result.TotalQuestions = len(e.quiz.Questions)
	result.Passed = result.Score >= e.cfg.PassThreshold
	result.CompletedAt = time.Now()

	e.state = StateCompleted
	return result, nil
}

// computeDirect scores the attempt locally: no pending answers exist.
func (e *Engine) computeDirect() *Result {
	total := len(e.quiz.Questions)
	correctCount := 0
	for _, r := range e.results {
		if r.IsCorrect && !r.IsPending {
			correctCount++
		}
	}

	score := 0.0
	if total > 0 {
		score = float64(correctCount) / float64(total)
	}

	return &Result{
		Score:        score,
		CorrectCount: correctCount,
		WeakConcepts: e.weakConcepts(),
		Feedback:     feedbackForScore(score, e.cfg.PassThreshold, len(e.weakConcepts())),
	}
}

// weakConcepts returns the distinct concept ids of answered-and-wrong
// questions. Pending submissions are excluded; unanswered questions
// do not flag their concept here (they do lower mastery, see the
// mastery tracker).
func (e *Engine) weakConcepts() []string {
	seen := make(map[string]bool)
	var weak []string
	for _, r := range e.results {
		if r.IsCorrect || r.IsPending {
			continue
		}
		q := e.quiz.Question(r.QuestionID)
		if q == nil || q.ConceptID == "" || seen[q.ConceptID] {
			continue
		}
		seen[q.ConceptID] = true
		weak = append(weak, q.ConceptID)
	}
	return weak
}

// Results returns the per-answer results recorded so far.
func (e *Engine) Results() []AnswerResult {
	out := make([]AnswerResult, len(e.results))
	copy(out, e.results)
	return out
}

// Submissions returns a copy of the submitted answers by question id.
func (e *Engine) Submissions() map[string]string {
	out := make(map[string]string, len(e.answers))
	for k, v := range e.answers {
		out[k] = v
	}
	return out
}

// Reset clears submissions but keeps the generated questions, so the
// learner can retry the same quiz. The engine returns to Active.
func (e *Engine) Reset() error {
	if e.quiz == nil {
		return fmt.Errorf("%w: nothing to reset", ErrInvalidState)
	}
	e.answers = make(map[string]string)
	e.results = nil
	e.state = StateActive
	return nil
}

// End discards the attempt entirely and returns to Inactive.
func (e *Engine) End() {
	e.quiz = nil
	e.courseID = ""
	e.answers = nil
	e.results = nil
	e.state = StateInactive
}

func (e *Engine) hasPending() bool {
	for _, r := range e.results {
		if r.IsPending {
			return true
		}
	}
	return false
}
