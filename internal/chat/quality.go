package chat

import (
	"regexp"
	"strings"
)

// FallbackAnswer replaces a low-quality completion. The model is not retried;
// the fallback is a cost-control decision as much as a quality one.
const FallbackAnswer = "I'm sorry, I couldn't put together a helpful answer to that. Could you try rephrasing your question? I can help with our CBD wellness products, pricing, ingredients and store policies."

// StreamErrorChunk is the in-band apology emitted when a stream fails mid-way.
const StreamErrorChunk = "I'm sorry, something went wrong while answering. Please try asking again."

// minAnswerLength is the shortest completion considered useful.
const minAnswerLength = 20

// Baseline bad-response heuristics. They are a starting classifier, not a
// compatibility surface; assessAnswer is the only consumer.
var (
	bareAcknowledgement = regexp.MustCompile(`(?i)^(yes|no|ok|okay|maybe)[.!]?$`)
	errorMarker         = regexp.MustCompile(`(?i)\berrors?\b|\berro\b`)
	apologyWithoutHelp  = regexp.MustCompile(`(?i)(sorry|apologi[sz]e)[^.!?]*\b(can't|cannot|unable|don't know|do not know)\b`)
)

// assessAnswer applies the quality gate. It returns the rejection reason and
// false when the answer should be replaced by FallbackAnswer.
func assessAnswer(answer string) (string, bool) {
	trimmed := strings.TrimSpace(answer)

	switch {
	case trimmed == "":
		return "empty", false
	case len(trimmed) <= 5:
		return "too short", false
	case bareAcknowledgement.MatchString(trimmed):
		return "bare acknowledgement", false
	case len(trimmed) < minAnswerLength:
		return "below minimum length", false
	case errorMarker.MatchString(trimmed):
		return "error marker", false
	case apologyWithoutHelp.MatchString(trimmed):
		return "apology without answer", false
	}

	return "", true
}
