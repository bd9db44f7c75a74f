package evaluator

import (
	"fmt"
	"strings"

	"github.com/abhisek/sensei/internal/content"
	"github.com/abhisek/sensei/internal/quiz"
)

const generateSystemPrompt = `You are a tutor writing quiz questions for a learner working through a course.
Write clear, unambiguous questions that test understanding, not memorization of exact phrasing.
Every question must reference one of the provided concept ids.
Multiple choice questions need exactly four options with one correct answer.`

const answerSystemPrompt = `You are a tutor answering a learner's question about the concept they are currently studying.
Answer directly and concretely, grounded in the concept material provided.
Keep the answer short enough to read in a terminal; a few sentences, an example if it helps.`

const evaluateSystemPrompt = `You are a tutor grading a completed quiz attempt.
Score each answer on whether it demonstrates understanding; open-ended answers do not need to match the reference wording.
The score is the fraction of all questions answered correctly, counting unanswered questions as incorrect.`

// generatePrompt describes the module and its concepts, flagging the
// weak ones so the model leans on them.
func generatePrompt(module *content.Module, questionCount int, weakConceptHints []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write %d quiz questions for the module %q.\n\n", questionCount, module.Title)
	b.WriteString("Concepts in this module:\n")
	weak := make(map[string]bool, len(weakConceptHints))
	for _, id := range weakConceptHints {
		weak[id] = true
	}
	for _, c := range module.Concepts {
		marker := ""
		if weak[c.ID] {
			marker = " (the learner has struggled with this one; prioritize it)"
		}
		fmt.Fprintf(&b, "- %s: %s%s\n", c.ID, c.Title, marker)
		if c.Content != "" {
			fmt.Fprintf(&b, "  %s\n", firstLines(c.Content, 3))
		}
	}
	return b.String()
}

// answerPrompt gives the model the concept under study and the
// learner's question.
func answerPrompt(module *content.Module, concept *content.Concept, question string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "The learner is studying the concept %q in the module %q.\n", concept.Title, module.Title)
	if concept.Content != "" {
		fmt.Fprintf(&b, "\nConcept material:\n%s\n", concept.Content)
	}
	fmt.Fprintf(&b, "\nTheir question: %s\n", question)
	return b.String()
}

// evaluatePrompt lays out every question with its reference answer and
// what the learner submitted.
func evaluatePrompt(q *quiz.Quiz, submissions map[string]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Grade this attempt at the %q quiz (%d questions).\n\n", q.ModuleTitle, len(q.Questions))
	for i, question := range q.Questions {
		fmt.Fprintf(&b, "Question %d (concept %s, type %s):\n%s\n", i+1, question.ConceptID, question.Type, question.Text)
		fmt.Fprintf(&b, "Reference answer: %s\n", question.CorrectAnswer)
		if answer, ok := submissions[question.ID]; ok {
			fmt.Fprintf(&b, "Learner's answer: %s\n\n", answer)
		} else {
			b.WriteString("Learner's answer: (not answered)\n\n")
		}
	}
	return b.String()
}

// firstLines truncates multi-line content for the prompt.
func firstLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n") + " ..."
}
