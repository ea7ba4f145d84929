// Package policy validates and sanitizes caller input before any model call.
// The URL rejection is a deliberate anti-injection measure; loosening it means
// revisiting the threat model first.
package policy

import (
	"regexp"
	"strings"

	"github.com/zenberry/zenchat/internal/domain"
)

const (
	// MaxQuestionLength caps a sanitized question.
	MaxQuestionLength = 2000
	// MinQuestionLength is the minimum sanitized question length.
	MinQuestionLength = 2

	// spamRunLength is the repeated-character run that marks a question as spam.
	spamRunLength = 11
)

var urlPattern = regexp.MustCompile(`(?i)(https?://|www\.)\S+`)

// Policy enforces the conversation input rules.
type Policy struct{}

// New creates a Policy.
func New() *Policy {
	return &Policy{}
}

// Sanitize trims whitespace, strips literal angle brackets (primitive tag
// stripping, not full HTML sanitization) and cuts to MaxQuestionLength.
func (p *Policy) Sanitize(input string) string {
	out := strings.TrimSpace(input)
	out = strings.ReplaceAll(out, "<", "")
	out = strings.ReplaceAll(out, ">", "")
	if len(out) > MaxQuestionLength {
		out = out[:MaxQuestionLength]
	}
	return out
}

// Validate checks a sanitized question against the length, spam and content
// rules. It returns a ValidationError-coded DomainError on failure.
func (p *Policy) Validate(input string) error {
	if len(input) < MinQuestionLength {
		return domain.ErrQuestionTooShort
	}
	if len(input) > MaxQuestionLength {
		return domain.ErrQuestionTooLong
	}
	if hasRepeatedRun(input, spamRunLength) {
		return domain.ErrQuestionSpam
	}
	if urlPattern.MatchString(input) {
		return domain.ErrQuestionHasURL
	}
	return nil
}

// ValidateHistory reports whether every turn carries a known role. A bool is
// returned (not an error) so callers choose the error shape.
func (p *Policy) ValidateHistory(history []domain.ConversationTurn) bool {
	for _, turn := range history {
		if !domain.IsValidRole(turn.Role) {
			return false
		}
	}
	return true
}

// hasRepeatedRun reports whether s contains the same rune at least n times in
// a row. RE2 has no backreferences, so this is a plain scan.
func hasRepeatedRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run >= n {
			return true
		}
	}
	return false
}
