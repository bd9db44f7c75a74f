package quiz

import "fmt"

// feedbackForScore builds the direct-mode feedback text from score
// bands. Evaluator-mode feedback comes from the external evaluator
// instead.
func feedbackForScore(score, passThreshold float64, weakCount int) string {
	percentage := int(score * 100)

	var praise, recommendation string
	switch {
	case score >= 0.9:
		praise = "Excellent work!"
		recommendation = "You've mastered this module."
	case score >= passThreshold:
		praise = "Good job!"
		recommendation = "You can proceed to the next module."
	case score >= 0.6:
		praise = "Nice effort!"
		recommendation = "Review the concepts you missed before moving on."
	default:
		praise = "Keep practicing!"
		recommendation = "Consider reviewing this module before retaking the quiz."
	}

	feedback := fmt.Sprintf("%s You scored %d%%. %s", praise, percentage, recommendation)
	if weakCount > 0 {
		feedback += fmt.Sprintf(" Focus areas: %d concept(s) need review.", weakCount)
	}
	return feedback
}
