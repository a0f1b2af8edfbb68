package domain

import "errors"

var (
	// ErrUnauthorized is returned when an operation needs a principal and none was resolved.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden is returned when the principal's role does not allow the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrQuestionNotFound indicates the question id does not resolve.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidInput wraps every invariant violation on create/update/answer.
	ErrInvalidInput = errors.New("invalid input")
	// ErrOptionNotFound indicates a chosen option is not one of the question's options.
	ErrOptionNotFound = errors.New("option not found")
	// ErrDuplicateID is returned by stores asked to insert an id that is live or retired.
	ErrDuplicateID = errors.New("question id already used")

	// ErrQuizIncomplete guards the reveal transition until every question is answered.
	ErrQuizIncomplete = errors.New("not all questions answered")
	// ErrQuizRevealed is returned when answers change after results were shown.
	ErrQuizRevealed = errors.New("quiz already revealed")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountExists      = errors.New("account already exists")
	ErrTokenRevoked       = errors.New("token revoked")
)
