package quiz

import "strings"

// checkAnswer applies the per-type correctness rule. For open-ended
// questions it reports pending=true and no local judgment is made.
func checkAnswer(q *Question, answer string) (correct, pending bool) {
	switch q.Type {
	case OpenEnded:
		return false, true
	case Code:
		return collapseWhitespace(answer) == collapseWhitespace(q.CorrectAnswer), false
	default:
		// multiple_choice and true_false: trim + case-insensitive.
		return normalize(answer) == normalize(q.CorrectAnswer), false
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// collapseWhitespace folds every run of whitespace (spaces, tabs,
// newlines) into a single space so code answers tolerate formatting
// differences. Matching is still exact text, not semantic.
func collapseWhitespace(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
