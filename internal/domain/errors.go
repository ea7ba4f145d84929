package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUpstream      = "UPSTREAM_ERROR"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeRateLimited   = "RATE_LIMITED"
)

// Validation errors
var (
	ErrQuestionTooShort = NewDomainError(ErrCodeValidation, "question is too short")
	ErrQuestionTooLong  = NewDomainError(ErrCodeValidation, "question is too long (max 2000 characters)")
	ErrQuestionSpam     = NewDomainError(ErrCodeValidation, "question looks like spam")
	ErrQuestionHasURL   = NewDomainError(ErrCodeValidation, "links are not allowed in questions")
	ErrInvalidHistory   = NewDomainError(ErrCodeValidation, "conversation history is malformed")
)

// Upstream errors
var (
	ErrCompletionEngine = NewDomainError(ErrCodeUpstream, "completion engine request failed")
	ErrCatalogFetch     = NewDomainError(ErrCodeUpstream, "catalog fetch failed")
	ErrDocumentFetch    = NewDomainError(ErrCodeUpstream, "knowledge document fetch failed")
)

// ErrChatFailed is the generic user-facing chat failure. Internal detail is
// logged server-side and never attached to this error.
var ErrChatFailed = NewDomainError(ErrCodeInternalError, "could not process your question, please try again")
