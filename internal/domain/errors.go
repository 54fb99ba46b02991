package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuestionSet is returned when an attempt is started with an empty or malformed question list.
	ErrInvalidQuestionSet = errors.New("invalid question set")
	// ErrPersistenceFailure marks a score that was computed locally but could not be saved.
	ErrPersistenceFailure = errors.New("failed to save score")
	// ErrAttemptSubmitted is returned by operations that are frozen after submission.
	ErrAttemptSubmitted = errors.New("attempt already submitted")
	// ErrNotLoggedIn indicates no session is stored locally.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrSessionExpired indicates the stored bearer token is past its expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrQuizNotFound indicates the quiz is not part of the user's catalog.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNoActiveQuiz indicates there is no cached quiz to resume.
	ErrNoActiveQuiz = errors.New("no active quiz")
	// ErrPasswordMismatch is returned when signup password and confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// ValidationErrors is a list of rejected fields.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return "validation failed: " + ve[0].Error()
	}
	return fmt.Sprintf("validation failed: %s (and %d more)", ve[0].Error(), len(ve)-1)
}
