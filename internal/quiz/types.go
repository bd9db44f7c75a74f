package quiz

import (
	"errors"
	"time"
)

// Error kinds surfaced by the engine. Callers branch with errors.Is.
var (
	// ErrNotFound: an id (question, module) did not resolve.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput: empty answer, duplicate submission, or an
	// out-of-range module index. The operation is rejected.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState: the operation requires a different engine
	// state (e.g. submitting to an inactive quiz).
	ErrInvalidState = errors.New("invalid state")

	// ErrEvaluation: the external evaluator failed or timed out.
	// Retryable; the engine never substitutes a guessed score.
	ErrEvaluation = errors.New("evaluation failed")
)

// QuestionType is the closed set of quiz question kinds.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	Code           QuestionType = "code"
	OpenEnded      QuestionType = "open_ended"
)

// ParseQuestionType maps a raw string to a QuestionType. Unknown
// values fall back to MultipleChoice; this is the only place that
// fallback exists, so scoring logic can switch on the closed enum.
func ParseQuestionType(s string) QuestionType {
	switch QuestionType(s) {
	case MultipleChoice, TrueFalse, Code, OpenEnded:
		return QuestionType(s)
	default:
		return MultipleChoice
	}
}

// Question is a single quiz question. Immutable once generated.
type Question struct {
	ID            string       `json:"id"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation"`
	ConceptID     string       `json:"concept_id"`
	Difficulty    int          `json:"difficulty"`
}

// Quiz is one generated assessment for a module. Questions are fixed
// at generation time.
type Quiz struct {
	ID          string     `json:"id"`
	ModuleID    string     `json:"module_id"`
	ModuleTitle string     `json:"module_title"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Question returns the question with the given id, or nil.
func (q *Quiz) Question(id string) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i]
		}
	}
	return nil
}

// AnswerResult is the outcome of one answer submission. For
// open-ended questions IsPending is true and IsCorrect stays false
// until the external evaluator judges the attempt.
type AnswerResult struct {
	QuestionID    string `json:"question_id"`
	UserAnswer    string `json:"user_answer"`
	IsCorrect     bool   `json:"is_correct"`
	IsPending     bool   `json:"is_pending"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// Result is the final outcome of a completed quiz attempt. Written
// to history exactly once and never mutated.
type Result struct {
	QuizID         string    `json:"quiz_id"`
	CourseID       string    `json:"course_id"`
	ModuleID       string    `json:"module_id"`
	ModuleTitle    string    `json:"module_title"`
	Score          float64   `json:"score"`
	CorrectCount   int       `json:"correct_count"`
	TotalQuestions int       `json:"total_questions"`
	WeakConcepts   []string  `json:"weak_concepts"`
	Feedback       string    `json:"feedback"`
	Passed         bool      `json:"passed"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Progress summarizes how far an active attempt has gone.
type Progress struct {
	Total      int
	Answered   int
	Remaining  int
	Completion float64
}
